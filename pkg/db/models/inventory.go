package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
)

// RawItem is a stocked ingredient. CurrentStock is a running total mutated
// only through ledger-writing operations; the InventoryTransaction ledger is
// the source of truth for reconciliation.
type RawItem struct {
	ID             uint             `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string           `gorm:"column:name;size:100;uniqueIndex;not null"`
	Description    *string          `gorm:"column:description"`
	Unit           string           `gorm:"column:unit;size:20;not null"`
	CurrentStock   decimal.Decimal  `gorm:"column:current_stock;type:decimal(12,3);not null;default:0"`
	AlertThreshold *decimal.Decimal `gorm:"column:alert_threshold;type:decimal(12,3)"`
	Supplier       *string          `gorm:"column:supplier;size:100"`
}

// Recipe maps one variant to one raw ingredient it consumes.
type Recipe struct {
	VariantID      uint            `gorm:"column:variant_id;primaryKey"`
	RawItemID      uint            `gorm:"column:raw_item_id;primaryKey"`
	QuantityNeeded decimal.Decimal `gorm:"column:quantity_needed;type:decimal(12,3);not null"`
}

// InventoryTransaction is one append-only ledger entry. Amount is signed:
// positive for purchases/adjustments in, negative for usage.
type InventoryTransaction struct {
	ID              uint                  `gorm:"column:id;primaryKey;autoIncrement"`
	RawItemID       uint                  `gorm:"column:raw_item_id;not null;index"`
	Amount          decimal.Decimal       `gorm:"column:amount;type:decimal(12,3);not null"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;size:20;not null"`
	OrderID         *uint                 `gorm:"column:order_id;index"`
	Notes           *string               `gorm:"column:notes"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
