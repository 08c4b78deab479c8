package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("confirm purchase 7: %w", New(CodeInsufficientStock, "option 3 has 2 left"))

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not_found", err: New(CodeNotFound, "purchase not found"), want: CodeNotFound},
		{name: "wrapped", err: wrapped, want: CodeInsufficientStock},
		{name: "with_cause", err: Wrap(CodeGateway, "confirm rejected", errors.New("boom")), want: CodeGateway},
		{name: "outside_taxonomy", err: errors.New("disk full"), want: CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsMatchesOnCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("cancel payment 3: %w", New(CodeExceedCancelQuantity, "line 5: requested 7, remaining 2"))

	if !errors.Is(err, New(CodeExceedCancelQuantity, "")) {
		t.Fatal("expected errors.Is to match on code")
	}
	if errors.Is(err, New(CodeExceedsPaymentAmount, "")) {
		t.Fatal("expected errors.Is not to match a different code")
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "not_found", err: New(CodeNotFound, "x"), want: http.StatusNotFound},
		{name: "permission_denied", err: New(CodePermissionDenied, "x"), want: http.StatusForbidden},
		{name: "amount_mismatch", err: New(CodeAmountMismatch, "x"), want: http.StatusBadRequest},
		{name: "invalid_cancel_request", err: New(CodeInvalidCancelRequest, "x"), want: http.StatusBadRequest},
		{name: "exceed_cancel_quantity", err: New(CodeExceedCancelQuantity, "x"), want: http.StatusBadRequest},
		{name: "insufficient_stock", err: New(CodeInsufficientStock, "x"), want: http.StatusConflict},
		{name: "invalid_payment_status", err: New(CodeInvalidPaymentStatus, "x"), want: http.StatusConflict},
		{name: "exceeds_payment_amount", err: New(CodeExceedsPaymentAmount, "x"), want: http.StatusConflict},
		{name: "gateway", err: New(CodeGateway, "x"), want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("unknown"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
