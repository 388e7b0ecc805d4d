package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/internal/catalog"
	"github.com/omerfarooq187/pizza-pos-backend/internal/inventory"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/metrics"
)

// contactSentinel replaces blank contact fields when an order is finalized.
const contactSentinel = "N/A"

var halfPriceFactor = decimal.NewFromFloat(0.5)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// FinalizeResult carries the persisted order plus the advisory inventory
// output of the same transaction.
type FinalizeResult struct {
	Order     *models.Order              `json:"order"`
	Inventory *inventory.DeductionResult `json:"inventory,omitempty"`
}

// Service drives the register: draft editing, pricing and finalization.
type Service interface {
	StartDraft(ctx context.Context) *Draft
	GetDraft(ctx context.Context, draftID string) (*Draft, error)
	CancelDraft(ctx context.Context, draftID string) error
	AddItem(ctx context.Context, draftID string, itemID, variantID uint, quantity int) (*Draft, error)
	RemoveItem(ctx context.Context, draftID string, itemID uint, variantSize string) (*Draft, error)
	SetQuantity(ctx context.Context, draftID string, itemID uint, variantSize string, quantity int) (*Draft, error)
	SetMemberStatus(ctx context.Context, draftID string, isMember bool) (*Draft, error)
	SetContact(ctx context.Context, draftID string, name, phone, email string) (*Draft, error)
	Finalize(ctx context.Context, draftID string) (*FinalizeResult, error)

	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status enums.OrderStatus) error

	RegisterMember(ctx context.Context, name, phone string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]models.Member, error)
	LookupMember(ctx context.Context, phone string) (*models.Member, error)
}

type service struct {
	repo      Repository
	store     *DraftStore
	catalog   catalog.Service
	inventory inventory.Service
	tx        txRunner
	logg      *logger.Logger
	metrics   *metrics.POSMetrics
}

// NewService constructs the order service.
func NewService(repo Repository, store *DraftStore, cat catalog.Service, inv inventory.Service, tx txRunner, logg *logger.Logger, m *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		store:     store,
		catalog:   cat,
		inventory: inv,
		tx:        tx,
		logg:      logg,
		metrics:   m,
	}, nil
}

func (s *service) StartDraft(ctx context.Context) *Draft {
	draft := s.store.Create()
	s.logg.Debug(s.logg.WithField(ctx, "draft_id", draft.ID), "draft opened")
	return draft
}

func (s *service) GetDraft(ctx context.Context, draftID string) (*Draft, error) {
	draft := s.store.Get(draftID)
	if draft == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	return draft, nil
}

func (s *service) CancelDraft(ctx context.Context, draftID string) error {
	if s.store.Get(draftID) == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	s.store.Delete(draftID)
	return nil
}

func (s *service) AddItem(ctx context.Context, draftID string, itemID, variantID uint, quantity int) (*Draft, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "menu item is not available")
	}
	variant := variantOf(item, variantID)
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to item")
	}

	draft, err := s.store.Update(draftID, func(d *Draft) error {
		line, err := s.priceLine(ctx, item, variant, d.IsMember, quantity)
		if err != nil {
			return err
		}
		d.upsertLine(line)
		return nil
	})
	return draft, s.mapDraftErr(err)
}

func (s *service) RemoveItem(ctx context.Context, draftID string, itemID uint, variantSize string) (*Draft, error) {
	draft, err := s.store.Update(draftID, func(d *Draft) error {
		if !d.removeLine(itemID, variantSize) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
		}
		return nil
	})
	return draft, s.mapDraftErr(err)
}

func (s *service) SetQuantity(ctx context.Context, draftID string, itemID uint, variantSize string, quantity int) (*Draft, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	draft, err := s.store.Update(draftID, func(d *Draft) error {
		if !d.setQuantity(itemID, variantSize, quantity) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
		}
		return nil
	})
	return draft, s.mapDraftErr(err)
}

// SetMemberStatus reprices every line under the new status. Lines whose item
// or variant no longer resolves in the catalog are dropped from the draft.
func (s *service) SetMemberStatus(ctx context.Context, draftID string, isMember bool) (*Draft, error) {
	draft, err := s.store.Update(draftID, func(d *Draft) error {
		d.IsMember = isMember
		kept := d.Lines[:0]
		for _, line := range d.Lines {
			item, err := s.catalog.GetItem(ctx, line.ItemID)
			if err != nil {
				if pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
					s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
						"draft_id": d.ID,
						"item_id":  line.ItemID,
					}), "dropping draft line, item no longer on the menu")
					continue
				}
				return err
			}
			variant := variantOf(item, line.VariantID)
			if variant == nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"draft_id":   d.ID,
					"item_id":    line.ItemID,
					"variant_id": line.VariantID,
				}), "dropping draft line, variant no longer on the menu")
				continue
			}
			repriced, err := s.priceLine(ctx, item, variant, isMember, line.Quantity)
			if err != nil {
				return err
			}
			kept = append(kept, repriced)
		}
		d.Lines = kept
		d.recalcTotal()
		return nil
	})
	return draft, s.mapDraftErr(err)
}

func (s *service) SetContact(ctx context.Context, draftID string, name, phone, email string) (*Draft, error) {
	draft, err := s.store.Update(draftID, func(d *Draft) error {
		d.CustomerName = strings.TrimSpace(name)
		d.Phone = strings.TrimSpace(phone)
		d.Email = strings.TrimSpace(email)
		return nil
	})
	return draft, s.mapDraftErr(err)
}

// Finalize persists the draft as an order and deducts ingredient stock in
// the same transaction, so a failed deduction never leaves a half-written
// sale behind.
func (s *service) Finalize(ctx context.Context, draftID string) (*FinalizeResult, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if len(draft.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	order := &models.Order{
		CustomerName: orSentinel(draft.CustomerName),
		Phone:        orSentinel(draft.Phone),
		Email:        orSentinel(draft.Email),
		TotalAmount:  draft.Total,
		IsMember:     draft.IsMember,
		Status:       enums.OrderStatusActive,
	}

	if draft.IsMember && order.Phone != contactSentinel {
		member, err := s.repo.FindMemberByPhone(ctx, order.Phone)
		switch {
		case err == nil:
			order.MemberID = &member.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Member pricing was applied at the register; an unregistered
			// phone just leaves the order unlinked.
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup member")
		}
	}

	lines := make([]inventory.OrderLine, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ItemID:             line.ItemID,
			ItemName:           line.ItemName,
			VariantID:          line.VariantID,
			VariantSize:        line.VariantSize,
			Quantity:           line.Quantity,
			Price:              line.UnitPrice,
			MemberPriceApplied: line.MemberPriceApplied,
			DiscountApplied:    line.DiscountApplied,
		})
		lines = append(lines, inventory.OrderLine{
			ItemName:    line.ItemName,
			VariantID:   line.VariantID,
			VariantSize: line.VariantSize,
			Quantity:    line.Quantity,
		})
	}

	var deduction *inventory.DeductionResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return err
		}
		var innerErr error
		deduction, innerErr = s.inventory.DeductForOrder(ctx, tx, lines, order.ID)
		return innerErr
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order")
	}

	s.store.Delete(draftID)

	octx := s.logg.WithOrderID(ctx, order.ID)
	s.logg.Info(s.logg.WithField(octx, "total", order.TotalAmount.String()), "order finalized")
	if s.metrics != nil {
		s.metrics.IncOrdersCreated()
		total, _ := order.TotalAmount.Float64()
		s.metrics.AddSales(total)
	}

	return &FinalizeResult{Order: order, Inventory: deduction}, nil
}

func (s *service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uint, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return nil
}

func (s *service) RegisterMember(ctx context.Context, name, phone string) (*models.Member, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name is required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member phone is required")
	}

	member := &models.Member{Name: name, Phone: phone}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "members.phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
	}
	return member, nil
}

func (s *service) ListMembers(ctx context.Context) ([]models.Member, error) {
	rows, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return rows, nil
}

func (s *service) LookupMember(ctx context.Context, phone string) (*models.Member, error) {
	member, err := s.repo.FindMemberByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup member")
	}
	return member, nil
}

// priceLine computes the unit price for one draft line. Member pricing wins
// over item-level discounts: an eligible member pays the variant's member
// price, or half the list price when none is set.
func (s *service) priceLine(ctx context.Context, item *models.MenuItem, variant *models.ItemVariant, isMember bool, quantity int) (DraftLine, error) {
	base := variant.Price
	unit := base
	memberApplied := false

	if isMember {
		category, err := s.catalog.GetCategory(ctx, item.CategoryID)
		if err != nil {
			return DraftLine{}, err
		}
		if category.DiscountEligible {
			if variant.MemberPrice != nil {
				unit = *variant.MemberPrice
			} else {
				unit = base.Mul(halfPriceFactor)
			}
			memberApplied = true
		}
	}

	if !memberApplied && item.DiscountType != nil && item.DiscountValue != nil {
		switch *item.DiscountType {
		case enums.DiscountTypePercentage:
			unit = base.Sub(base.Mul(*item.DiscountValue).Div(decimal.NewFromInt(100)))
		case enums.DiscountTypeFixed:
			unit = base.Sub(*item.DiscountValue)
		}
		if unit.IsNegative() {
			unit = decimal.Zero
		}
	}

	unit = unit.Round(2)
	return DraftLine{
		ItemID:             item.ID,
		ItemName:           item.Name,
		VariantID:          variant.ID,
		VariantSize:        variant.Size,
		Quantity:           quantity,
		UnitPrice:          unit,
		MemberPriceApplied: memberApplied,
		DiscountApplied:    base.Sub(unit),
	}, nil
}

func (s *service) mapDraftErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDraftNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	return err
}

func variantOf(item *models.MenuItem, variantID uint) *models.ItemVariant {
	for i := range item.Variants {
		if item.Variants[i].ID == variantID {
			return &item.Variants[i]
		}
	}
	return nil
}

func orSentinel(value string) string {
	if strings.TrimSpace(value) == "" {
		return contactSentinel
	}
	return value
}
