package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
)

// Order is a finalized sale. Rows are immutable after creation apart from
// Status; line prices are snapshots and are never recomputed.
type Order struct {
	ID           uint              `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerName string            `gorm:"column:customer_name;size:100;not null;default:N/A"`
	Phone        string            `gorm:"column:phone;size:20;not null;default:N/A"`
	Email        string            `gorm:"column:email;size:50;not null;default:N/A"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:decimal(10,2);not null"`
	MemberID     *uint             `gorm:"column:member_id"`
	IsMember     bool              `gorm:"column:is_member;not null;default:false"`
	Status       enums.OrderStatus `gorm:"column:status;size:20;not null;default:active"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}

// OrderItem is one line of an order. Price is the unit price captured at
// order time.
type OrderItem struct {
	ID                 uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID            uint            `gorm:"column:order_id;not null;index"`
	ItemID             uint            `gorm:"column:item_id;not null"`
	ItemName           string          `gorm:"column:item_name;size:100;not null"`
	VariantID          uint            `gorm:"column:variant_id;not null"`
	VariantSize        string          `gorm:"column:variant_size;size:20;not null"`
	Quantity           int             `gorm:"column:quantity;not null"`
	Price              decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	MemberPriceApplied bool            `gorm:"column:member_price_applied;not null;default:false"`
	DiscountApplied    decimal.Decimal `gorm:"column:discount_applied;type:decimal(10,2);not null;default:0"`
}

// Member is a registered customer eligible for member pricing, looked up by
// phone number at order time.
type Member struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string    `gorm:"column:name;size:50;not null"`
	Phone    string    `gorm:"column:phone;size:20;uniqueIndex;not null"`
	JoinDate time.Time `gorm:"column:join_date;autoCreateTime"`
}
