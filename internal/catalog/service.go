package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes category and menu management operations.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	ListItemsByCategory(ctx context.Context, categoryID uint) ([]models.MenuItem, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	GetItem(ctx context.Context, id uint) (*models.MenuItem, error)
	CreateItem(ctx context.Context, input MenuItemInput) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, id uint, input MenuItemInput) (*models.MenuItem, error)
	DeleteItem(ctx context.Context, id uint) error
	ToggleItemActive(ctx context.Context, id uint) error
}

// CategoryInput carries the validated payload for category writes.
type CategoryInput struct {
	Name             string
	DiscountEligible bool
}

// VariantInput defines one size/price option of a menu item.
type VariantInput struct {
	Size        string
	Price       decimal.Decimal
	MemberPrice *decimal.Decimal
}

// MenuItemInput carries the validated payload for menu item writes.
type MenuItemInput struct {
	CategoryID    uint
	Name          string
	Description   *string
	IsActive      bool
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	Variants      []VariantInput
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	exists, err := s.repo.CategoryExists(ctx, name, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
	}

	category := &models.Category{Name: name, DiscountEligible: input.DiscountEligible}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "categories.name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	exists, err := s.repo.CategoryExists(ctx, name, &id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
	}

	category.Name = name
	category.DiscountEligible = input.DiscountEligible
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

// DeleteCategory blocks while menu items still reference the category so the
// menu never holds orphaned items.
func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	count, err := s.repo.CountItemsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category items")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has menu items").
			WithDetails(map[string]any{"menu_items": count})
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) ListItemsByCategory(ctx context.Context, categoryID uint) ([]models.MenuItem, error) {
	rows, err := s.repo.ListItemsByCategory(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	return rows, nil
}

func (s *service) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.repo.ListItemsWithVariants(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu")
	}
	return rows, nil
}

func (s *service) GetItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return item, nil
}

func (s *service) CreateItem(ctx context.Context, input MenuItemInput) (*models.MenuItem, error) {
	if err := s.validateItemInput(ctx, input, nil); err != nil {
		return nil, err
	}

	item := itemFromInput(input)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateItem(ctx, item)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uint, input MenuItemInput) (*models.MenuItem, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validateItemInput(ctx, input, &id); err != nil {
		return nil, err
	}

	item := itemFromInput(input)
	item.ID = id
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uint) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteItem(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu item")
	}
	return nil
}

func (s *service) ToggleItemActive(ctx context.Context, id uint) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	if err := s.repo.ToggleItemActive(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle menu item")
	}
	return nil
}

func (s *service) validateItemInput(ctx context.Context, input MenuItemInput, excludeID *uint) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if len(input.Variants) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "item needs at least one variant")
	}
	sizes := map[string]struct{}{}
	for _, variant := range input.Variants {
		size := strings.TrimSpace(variant.Size)
		if size == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant size is required")
		}
		if !variant.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price must be positive").
				WithDetails(map[string]any{"size": size})
		}
		if variant.MemberPrice != nil && variant.MemberPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "member price cannot be negative").
				WithDetails(map[string]any{"size": size})
		}
		if _, dup := sizes[size]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate variant size").
				WithDetails(map[string]any{"size": size})
		}
		sizes[size] = struct{}{}
	}
	if input.DiscountType != nil && !input.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
	}

	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	exists, err := s.repo.ItemExists(ctx, name, input.CategoryID, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check item name")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "item name already in use for this category")
	}
	return nil
}

func itemFromInput(input MenuItemInput) *models.MenuItem {
	variants := make([]models.ItemVariant, 0, len(input.Variants))
	for _, v := range input.Variants {
		variants = append(variants, models.ItemVariant{
			Size:        strings.TrimSpace(v.Size),
			Price:       v.Price,
			MemberPrice: v.MemberPrice,
		})
	}
	return &models.MenuItem{
		CategoryID:    input.CategoryID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		IsActive:      input.IsActive,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		Variants:      variants,
	}
}
