package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/internal/repo"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
)

// Repository defines persistence operations for categories, menu items, and
// their variants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
	CategoryExists(ctx context.Context, name string, excludeID *uint) (bool, error)
	CountItemsInCategory(ctx context.Context, categoryID uint) (int64, error)

	ListItemsByCategory(ctx context.Context, categoryID uint) ([]models.MenuItem, error)
	ListItemsWithVariants(ctx context.Context) ([]models.MenuItem, error)
	FindItemByID(ctx context.Context, id uint) (*models.MenuItem, error)
	FindVariantByID(ctx context.Context, id uint) (*models.ItemVariant, error)
	CreateItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, id uint) error
	ToggleItemActive(ctx context.Context, id uint) error
	ItemExists(ctx context.Context, name string, categoryID uint, excludeID *uint) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.DB(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

func (r *repository) CategoryExists(ctx context.Context, name string, excludeID *uint) (bool, error) {
	query := r.DB(ctx).Model(&models.Category{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountItemsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.MenuItem{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListItemsByCategory(ctx context.Context, categoryID uint) ([]models.MenuItem, error) {
	var rows []models.MenuItem
	err := r.DB(ctx).
		Preload("Variants").
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListItemsWithVariants(ctx context.Context) ([]models.MenuItem, error) {
	var rows []models.MenuItem
	err := r.DB(ctx).
		Preload("Variants").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindItemByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.DB(ctx).
		Preload("Variants").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindVariantByID(ctx context.Context, id uint) (*models.ItemVariant, error) {
	var variant models.ItemVariant
	if err := r.DB(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// CreateItem inserts the item and its variants in one statement scope.
func (r *repository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return r.DB(ctx).Create(item).Error
}

// UpdateItem saves the item row and replaces its variants wholesale, the way
// the menu editor submits them.
func (r *repository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	db := r.DB(ctx)
	variants := item.Variants
	item.Variants = nil

	if err := db.Omit("Variants").Save(item).Error; err != nil {
		return err
	}
	if err := db.Where("item_id = ?", item.ID).Delete(&models.ItemVariant{}).Error; err != nil {
		return err
	}
	for i := range variants {
		variants[i].ID = 0
		variants[i].ItemID = item.ID
	}
	if len(variants) > 0 {
		if err := db.Create(&variants).Error; err != nil {
			return err
		}
	}
	item.Variants = variants
	return nil
}

// DeleteItem removes variants first, then the item.
func (r *repository) DeleteItem(ctx context.Context, id uint) error {
	db := r.DB(ctx)
	if err := db.Where("item_id = ?", id).Delete(&models.ItemVariant{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.MenuItem{}).Error
}

func (r *repository) ToggleItemActive(ctx context.Context, id uint) error {
	return r.DB(ctx).
		Model(&models.MenuItem{}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active")).Error
}

func (r *repository) ItemExists(ctx context.Context, name string, categoryID uint, excludeID *uint) (bool, error) {
	query := r.DB(ctx).
		Model(&models.MenuItem{}).
		Where("name = ? AND category_id = ?", name, categoryID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
