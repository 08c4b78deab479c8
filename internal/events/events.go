package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventPaymentCompleted = "PaymentCompleted"

	TopicPaymentCompleted = "payment.completed"
)

// Envelope wraps every published event. Payload holds the event-specific
// document so consumers can route on EventType before decoding.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type PaymentCompletedPayload struct {
	PurchaseID uint            `json:"purchase_id"`
	PaymentID  uint            `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewPaymentCompleted builds the post-commit "payment completed" envelope
// consumed by the cache-eviction worker.
func NewPaymentCompleted(producer string, p PaymentCompletedPayload) (Envelope, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventPaymentCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: strconv.FormatUint(uint64(p.PurchaseID), 10),
		Payload:       raw,
	}, nil
}

// PartitionKey keeps every event of one purchase on the same partition so
// ordering per purchase is preserved.
func PartitionKey(purchaseID uint) []byte {
	return []byte(strconv.FormatUint(uint64(purchaseID), 10))
}

// UnwrapPayload decodes the payload of a consumed envelope.
func UnwrapPayload[T any](raw json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(raw, &t)
	return t, err
}
