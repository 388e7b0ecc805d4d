package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/internal/repo"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
)

// Repository is the persistence surface for raw items, recipes and the
// inventory ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListRawItems(ctx context.Context) ([]models.RawItem, error)
	FindRawItemByID(ctx context.Context, id uint) (*models.RawItem, error)
	CreateRawItem(ctx context.Context, item *models.RawItem) error
	UpdateRawItem(ctx context.Context, item *models.RawItem) error
	DeleteRawItem(ctx context.Context, id uint) error
	RawItemExists(ctx context.Context, name string, excludeID *uint) (bool, error)
	ListBelowThreshold(ctx context.Context) ([]models.RawItem, error)

	// AdjustStock shifts current_stock by delta and appends the matching
	// ledger entry in the caller's transaction scope.
	AdjustStock(ctx context.Context, rawItemID uint, delta decimal.Decimal, txType enums.TransactionType, orderID *uint, notes *string) error

	ListRecipeForVariant(ctx context.Context, variantID uint) ([]models.Recipe, error)
	ListRecipesForRawItem(ctx context.Context, rawItemID uint) ([]models.Recipe, error)
	UpsertRecipe(ctx context.Context, row *models.Recipe) error
	DeleteRecipe(ctx context.Context, variantID, rawItemID uint) error

	ListTransactions(ctx context.Context, rawItemID uint, limit int) ([]models.InventoryTransaction, error)
	SumLedger(ctx context.Context, rawItemID uint) (decimal.Decimal, error)
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

func (r *repository) ListRawItems(ctx context.Context) ([]models.RawItem, error) {
	var rows []models.RawItem
	if err := r.DB(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindRawItemByID(ctx context.Context, id uint) (*models.RawItem, error) {
	var item models.RawItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateRawItem(ctx context.Context, item *models.RawItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) UpdateRawItem(ctx context.Context, item *models.RawItem) error {
	return r.DB(ctx).Save(item).Error
}

func (r *repository) DeleteRawItem(ctx context.Context, id uint) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.RawItem{}).Error
}

func (r *repository) RawItemExists(ctx context.Context, name string, excludeID *uint) (bool, error) {
	query := r.DB(ctx).Model(&models.RawItem{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListBelowThreshold returns raw items whose stock dropped under their alert
// threshold. Items without a threshold never alert.
func (r *repository) ListBelowThreshold(ctx context.Context) ([]models.RawItem, error) {
	var rows []models.RawItem
	err := r.DB(ctx).
		Where("alert_threshold IS NOT NULL AND current_stock < alert_threshold").
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AdjustStock(ctx context.Context, rawItemID uint, delta decimal.Decimal, txType enums.TransactionType, orderID *uint, notes *string) error {
	db := r.DB(ctx)

	result := db.Model(&models.RawItem{}).
		Where("id = ?", rawItemID).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	entry := models.InventoryTransaction{
		RawItemID:       rawItemID,
		Amount:          delta,
		TransactionType: txType,
		OrderID:         orderID,
		Notes:           notes,
	}
	return db.Create(&entry).Error
}

func (r *repository) ListRecipeForVariant(ctx context.Context, variantID uint) ([]models.Recipe, error) {
	var rows []models.Recipe
	if err := r.DB(ctx).Where("variant_id = ?", variantID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRecipesForRawItem(ctx context.Context, rawItemID uint) ([]models.Recipe, error) {
	var rows []models.Recipe
	if err := r.DB(ctx).Where("raw_item_id = ?", rawItemID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpsertRecipe(ctx context.Context, row *models.Recipe) error {
	return r.DB(ctx).Save(row).Error
}

func (r *repository) DeleteRecipe(ctx context.Context, variantID, rawItemID uint) error {
	return r.DB(ctx).
		Where("variant_id = ? AND raw_item_id = ?", variantID, rawItemID).
		Delete(&models.Recipe{}).Error
}

func (r *repository) ListTransactions(ctx context.Context, rawItemID uint, limit int) ([]models.InventoryTransaction, error) {
	query := r.DB(ctx).
		Where("raw_item_id = ?", rawItemID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.InventoryTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumLedger folds every ledger entry for one raw item into a net amount.
func (r *repository) SumLedger(ctx context.Context, rawItemID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.DB(ctx).Model(&models.InventoryTransaction{}).
		Where("raw_item_id = ?", rawItemID).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
