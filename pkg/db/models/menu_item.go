package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
)

// MenuItem is a sellable dish belonging to one category. Pricing lives on
// its variants; DiscountType/DiscountValue express an item-level discount.
type MenuItem struct {
	ID            uint                `gorm:"column:id;primaryKey;autoIncrement"`
	CategoryID    uint                `gorm:"column:category_id;not null;uniqueIndex:uniq_menu_item_name_category,priority:2"`
	Name          string              `gorm:"column:name;size:100;not null;uniqueIndex:uniq_menu_item_name_category,priority:1"`
	Description   *string             `gorm:"column:description"`
	IsActive      bool                `gorm:"column:is_active;not null;default:true"`
	DiscountType  *enums.DiscountType `gorm:"column:discount_type;size:20"`
	DiscountValue *decimal.Decimal    `gorm:"column:discount_value;type:decimal(10,2)"`
	Variants      []ItemVariant       `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// ItemVariant is a purchasable size/price option of a menu item. MemberPrice
// is optional; absent values fall back to half price when member pricing
// applies.
type ItemVariant struct {
	ID          uint             `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID      uint             `gorm:"column:item_id;not null;index"`
	Size        string           `gorm:"column:size;size:20;not null"`
	Price       decimal.Decimal  `gorm:"column:price;type:decimal(10,2);not null"`
	MemberPrice *decimal.Decimal `gorm:"column:member_price;type:decimal(10,2)"`
}
