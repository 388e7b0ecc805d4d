package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/internal/repo"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
)

// SoldItem is a sales aggregate for one menu item and size.
type SoldItem struct {
	ItemName     string          `json:"item_name"`
	VariantSize  string          `json:"variant_size"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Repository is the persistence surface for orders and members.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uint) (*models.Order, error)
	ListOrdersByDateRange(ctx context.Context, from, to time.Time) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status enums.OrderStatus) error
	CountAndSumOrders(ctx context.Context, from, to time.Time) (int64, decimal.Decimal, error)
	SoldItemTotals(ctx context.Context, from, to time.Time, search string) ([]SoldItem, error)

	FindMemberByPhone(ctx context.Context, phone string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]models.Member, error)
	CreateMember(ctx context.Context, member *models.Member) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a Repository over the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) FindOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByDateRange(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, id uint, status enums.OrderStatus) error {
	result := r.DB(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountAndSumOrders totals non-cancelled orders inside [from, to).
func (r *repository) CountAndSumOrders(ctx context.Context, from, to time.Time) (int64, decimal.Decimal, error) {
	type row struct {
		Orders int64
		Sales  decimal.NullDecimal
	}
	var agg row
	err := r.DB(ctx).Model(&models.Order{}).
		Select("COUNT(*) AS orders, SUM(total_amount) AS sales").
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status <> ?", enums.OrderStatusCancelled).
		Scan(&agg).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	sales := decimal.Zero
	if agg.Sales.Valid {
		sales = agg.Sales.Decimal
	}
	return agg.Orders, sales, nil
}

// SoldItemTotals aggregates order lines by item and size. search filters on
// the item name, case-insensitive; empty search matches everything.
func (r *repository) SoldItemTotals(ctx context.Context, from, to time.Time, search string) ([]SoldItem, error) {
	query := r.DB(ctx).Model(&models.OrderItem{}).
		Select("order_items.item_name, order_items.variant_size, SUM(order_items.quantity) AS quantity_sold, SUM(order_items.quantity * order_items.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Group("order_items.item_name, order_items.variant_size").
		Order("quantity_sold DESC")
	if search != "" {
		query = query.Where("order_items.item_name LIKE ?", "%"+search+"%")
	}

	var rows []SoldItem
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindMemberByPhone(ctx context.Context, phone string) (*models.Member, error) {
	var member models.Member
	if err := r.DB(ctx).First(&member, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context) ([]models.Member, error) {
	var rows []models.Member
	if err := r.DB(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateMember(ctx context.Context, member *models.Member) error {
	return r.DB(ctx).Create(member).Error
}
