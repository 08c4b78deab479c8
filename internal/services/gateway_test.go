package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"shopmall_app_echo/internal/models"
)

func TestGatewayClientConfirm(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactionKey": "tx-9",
			"method":         "CARD",
			"amount":         100000,
			"status":         "DONE",
			"requestedAt":    "2026-01-02T10:00:00Z",
			"approvedAt":     "2026-01-02T10:00:03Z",
		})
	}))
	defer srv.Close()

	client := NewGatewayClientWith(srv.URL, "sk_test_abc", srv.Client())
	conf, err := client.Confirm(context.Background(), ConfirmGatewayRequest{
		TransactionKey: "tx-9",
		PurchaseID:     7,
		Amount:         decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/payments/confirm" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer sk_test_abc" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotBody["transactionKey"] != "tx-9" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if conf.TransactionKey != "tx-9" || conf.Method != "CARD" || !conf.Amount.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("unexpected confirmation: %+v", conf)
	}
	if conf.ApprovedAt.IsZero() {
		t.Error("expected approvedAt to be parsed")
	}
}

func TestGatewayClientCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/tx-9/cancel" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactionKey":      "tx-9",
			"orderId":             7,
			"status":              "CANCELED",
			"amount":              40000,
			"isPartialCancelable": true,
			"cancels": []map[string]any{
				{"reason": "too small", "amount": 40000, "canceledAt": "2026-01-03T09:00:00Z", "status": "DONE"},
			},
		})
	}))
	defer srv.Close()

	client := NewGatewayClientWith(srv.URL, "sk_test_abc", srv.Client())
	res, err := client.Cancel(context.Background(), CancelGatewayRequest{
		TransactionKey: "tx-9",
		PurchaseID:     7,
		CancelType:     models.CancelTypePartial,
		Amount:         decimal.NewFromInt(40000),
		LineIDs:        []uint{12},
		Reason:         "too small",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "CANCELED" || !res.IsPartialCancelable || len(res.Cancels) != 1 {
		t.Errorf("unexpected cancellation: %+v", res)
	}
	if res.Cancels[0].Reason != "too small" || !res.Cancels[0].Amount.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("unexpected cancel detail: %+v", res.Cancels[0])
	}
}

func TestGatewayClientErrorPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "INVALID_CARD_NUMBER",
			"message": "the card number is malformed",
		})
	}))
	defer srv.Close()

	client := NewGatewayClientWith(srv.URL, "sk_test_abc", srv.Client())
	_, err := client.Confirm(context.Background(), ConfirmGatewayRequest{TransactionKey: "tx-1"})

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if gwErr.Code != "INVALID_CARD_NUMBER" || gwErr.Message != "the card number is malformed" {
		t.Fatalf("code/message not verbatim: %+v", gwErr)
	}
}

func TestGatewayClientErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := NewGatewayClientWith(srv.URL, "sk_test_abc", srv.Client())
	_, err := client.Confirm(context.Background(), ConfirmGatewayRequest{TransactionKey: "tx-1"})

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if gwErr.Code != "HTTP_502" {
		t.Fatalf("expected synthesized HTTP_502 code, got %q", gwErr.Code)
	}
}
