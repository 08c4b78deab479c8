package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRemainingQuantity(t *testing.T) {
	line := PurchaseProduct{Quantity: 10, RefundedQuantity: 3}
	if got := line.RemainingQuantity(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestRemainingAmount(t *testing.T) {
	payment := Payment{
		Amount:         decimal.NewFromInt(300000),
		RefundedAmount: decimal.NewFromInt(100000),
	}
	if got := payment.RemainingAmount(); !got.Equal(decimal.NewFromInt(200000)) {
		t.Fatalf("expected 200000, got %s", got)
	}
}

func TestPurchaseStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from PurchaseStatus
		to   PurchaseStatus
		want bool
	}{
		{name: "created_to_paid", from: PurchaseStatusCreated, to: PurchaseStatusPaid, want: true},
		{name: "paid_to_partially_refunded", from: PurchaseStatusPaid, to: PurchaseStatusPartiallyRefunded, want: true},
		{name: "partially_refunded_repeats", from: PurchaseStatusPartiallyRefunded, to: PurchaseStatusPartiallyRefunded, want: true},
		{name: "partially_refunded_to_refunded", from: PurchaseStatusPartiallyRefunded, to: PurchaseStatusRefunded, want: true},
		{name: "refunded_is_terminal", from: PurchaseStatusRefunded, to: PurchaseStatusPaid, want: false},
		{name: "created_cannot_refund", from: PurchaseStatusCreated, to: PurchaseStatusRefunded, want: false},
		{name: "no_resurrecting_to_created", from: PurchaseStatusPaid, to: PurchaseStatusCreated, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{name: "done_to_partial", from: PaymentStatusDone, to: PaymentStatusPartialCancelled, want: true},
		{name: "done_to_cancelled", from: PaymentStatusDone, to: PaymentStatusCancelled, want: true},
		{name: "partial_repeats", from: PaymentStatusPartialCancelled, to: PaymentStatusPartialCancelled, want: true},
		{name: "partial_to_cancelled", from: PaymentStatusPartialCancelled, to: PaymentStatusCancelled, want: true},
		{name: "cancelled_is_terminal", from: PaymentStatusCancelled, to: PaymentStatusDone, want: false},
		{name: "cancelled_stays_cancelled", from: PaymentStatusCancelled, to: PaymentStatusPartialCancelled, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
