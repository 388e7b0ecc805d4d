package models

// Category groups menu items on the ordering screen.
type Category struct {
	ID               uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name             string `gorm:"column:name;size:50;uniqueIndex;not null"`
	DiscountEligible bool   `gorm:"column:discount_eligible;not null;default:false"`
}
