package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseStatus string

const (
	PurchaseStatusCreated           PurchaseStatus = "PURCHASE_CREATED"
	PurchaseStatusPaid              PurchaseStatus = "PURCHASE_PAID"
	PurchaseStatusPartiallyRefunded PurchaseStatus = "PARTIALLY_REFUNDED"
	PurchaseStatusRefunded          PurchaseStatus = "REFUNDED"
)

type PurchaseProductStatus string

const (
	PurchaseProductStatusOrdered           PurchaseProductStatus = "ORDERED"
	PurchaseProductStatusPaid              PurchaseProductStatus = "PAID"
	PurchaseProductStatusPartiallyRefunded PurchaseProductStatus = "PARTIALLY_REFUNDED"
	PurchaseProductStatusRefunded          PurchaseProductStatus = "REFUNDED"
)

// Purchase is the order aggregate root. It is created once at order placement
// and only transitioned afterwards; rows are never hard-deleted.
type Purchase struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID         uint            `gorm:"index" json:"user_id"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_price"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(15,2)" json:"refunded_amount"`
	Status         PurchaseStatus  `gorm:"type:varchar(50);index" json:"status"`

	// Relationships
	User     User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Products []PurchaseProduct `gorm:"foreignKey:PurchaseID" json:"products,omitempty"`
	Payments []Payment         `gorm:"foreignKey:PurchaseID" json:"payments,omitempty"`
}

// PurchaseProduct is one ordered line: product + option + quantity with the
// price locked in at purchase time. Quantity and PriceAtPurchase never change
// after creation; refund progress is tracked in RefundedQuantity.
type PurchaseProduct struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PurchaseID       uint                  `gorm:"index" json:"purchase_id"`
	ProductID        uint                  `gorm:"index" json:"product_id"`
	ProductOptionID  uint                  `gorm:"index" json:"product_option_id"`
	Quantity         int                   `gorm:"not null" json:"quantity"`
	PriceAtPurchase  decimal.Decimal       `gorm:"type:decimal(15,2)" json:"price_at_purchase"`
	RefundedQuantity int                   `gorm:"not null;default:0" json:"refunded_quantity"`
	Status           PurchaseProductStatus `gorm:"type:varchar(50)" json:"status"`

	// Relationships
	Product       Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductOption ProductOption `gorm:"foreignKey:ProductOptionID" json:"product_option,omitempty"`
}

// RemainingQuantity is the only quantity still eligible for cancellation.
func (p *PurchaseProduct) RemainingQuantity() int {
	return p.Quantity - p.RefundedQuantity
}

var validNextPurchase = map[PurchaseStatus]map[PurchaseStatus]bool{
	PurchaseStatusCreated:           {PurchaseStatusPaid: true},
	PurchaseStatusPaid:              {PurchaseStatusPartiallyRefunded: true, PurchaseStatusRefunded: true},
	PurchaseStatusPartiallyRefunded: {PurchaseStatusPartiallyRefunded: true, PurchaseStatusRefunded: true},
	PurchaseStatusRefunded:          {},
}

// CanTransition reports whether a purchase may move from one status to
// another. REFUNDED is terminal; a refunded order is never resurrected.
func (s PurchaseStatus) CanTransition(to PurchaseStatus) bool {
	return validNextPurchase[s][to]
}
