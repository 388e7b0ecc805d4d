package enums

// OrderStatus tracks the lifecycle of a persisted order. Orders are
// immutable after creation except for this column.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether the status is one of the known values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusActive, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// DiscountType describes how a menu item level discount is expressed.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// IsValid reports whether the discount type is one of the known values.
func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// TransactionType classifies an inventory ledger entry.
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeUsage      TransactionType = "usage"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// IsValid reports whether the transaction type is one of the known values.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeUsage, TransactionTypeAdjustment:
		return true
	}
	return false
}
