package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusDone             PaymentStatus = "DONE"
	PaymentStatusPartialCancelled PaymentStatus = "PARTIAL_CANCELLED"
	PaymentStatusCancelled        PaymentStatus = "CANCELLED"
)

type CancelType string

const (
	CancelTypeAll     CancelType = "ALL"
	CancelTypePartial CancelType = "PARTIAL"
)

// Payment is the captured-funds record created on a purchase's successful
// confirmation. The schema permits many payments per purchase; the confirm
// flow only ever creates one capture.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PurchaseID     uint            `gorm:"index" json:"purchase_id"`
	TransactionKey string          `gorm:"type:varchar(100);index" json:"transaction_key"`
	Method         string          `gorm:"type:varchar(100)" json:"method"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(15,2)" json:"refunded_amount"`
	Status         PaymentStatus   `gorm:"type:varchar(50)" json:"status"`
	PaidAt         time.Time       `json:"paid_at"`

	// Relationships
	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
}

// RemainingAmount is the captured-minus-refunded amount still eligible for
// cancellation. Never negative while the invariants hold.
func (p *Payment) RemainingAmount() decimal.Decimal {
	return p.Amount.Sub(p.RefundedAmount)
}

var validNextPayment = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentStatusDone:             {PaymentStatusPartialCancelled: true, PaymentStatusCancelled: true},
	PaymentStatusPartialCancelled: {PaymentStatusPartialCancelled: true, PaymentStatusCancelled: true},
	PaymentStatusCancelled:        {},
}

// CanTransition reports whether a payment may move from one status to another.
// CANCELLED is terminal.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	return validNextPayment[s][to]
}
