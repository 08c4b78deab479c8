package models

import "time"

type HistoryType string

const (
	HistoryTypePayment  HistoryType = "PAYMENT"
	HistoryTypePurchase HistoryType = "PURCHASE"
)

// History is one append-only audit entry for a status transition. Rows are
// created by the payment service and never updated or deleted.
type History struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Type       HistoryType `gorm:"type:varchar(50);index" json:"type"`
	PurchaseID *uint       `gorm:"index" json:"purchase_id,omitempty"`
	PaymentID  *uint       `gorm:"index" json:"payment_id,omitempty"`
	OldStatus  string      `gorm:"type:varchar(50)" json:"old_status"`
	NewStatus  string      `gorm:"type:varchar(50)" json:"new_status"`
	Reason     string      `gorm:"type:varchar(255)" json:"reason"`
	ActorID    uint        `json:"actor_id"`
}
