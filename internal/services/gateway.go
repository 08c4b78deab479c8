package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"shopmall_app_echo/internal/models"
)

// PaymentGateway is the external payment provider boundary. Its responses are
// the source of truth for captured amount, method, and timestamps. Errors of
// type *GatewayError carry the provider's own code and message verbatim.
type PaymentGateway interface {
	Confirm(ctx context.Context, req ConfirmGatewayRequest) (*GatewayConfirmation, error)
	Cancel(ctx context.Context, req CancelGatewayRequest) (*GatewayCancellation, error)
}

type ConfirmGatewayRequest struct {
	TransactionKey string          `json:"transactionKey"`
	PurchaseID     uint            `json:"orderId"`
	Amount         decimal.Decimal `json:"amount"`
}

type CancelGatewayRequest struct {
	TransactionKey string            `json:"transactionKey"`
	PurchaseID     uint              `json:"orderId"`
	CancelType     models.CancelType `json:"cancelType"`
	Amount         decimal.Decimal   `json:"amount"`
	LineIDs        []uint            `json:"lineIds,omitempty"`
	Reason         string            `json:"reason"`
}

type GatewayConfirmation struct {
	TransactionKey string          `json:"transactionKey"`
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	RequestedAt    time.Time       `json:"requestedAt"`
	ApprovedAt     time.Time       `json:"approvedAt"`
}

type GatewayCancellation struct {
	TransactionKey      string                `json:"transactionKey"`
	PurchaseID          uint                  `json:"orderId"`
	Status              string                `json:"status"`
	Amount              decimal.Decimal       `json:"amount"`
	IsPartialCancelable bool                  `json:"isPartialCancelable"`
	Cancels             []GatewayCancelDetail `json:"cancels"`
}

type GatewayCancelDetail struct {
	Reason     string          `json:"reason"`
	Amount     decimal.Decimal `json:"amount"`
	CanceledAt time.Time       `json:"canceledAt"`
	Status     string          `json:"status"`
}

// GatewayError surfaces the provider's error response to the caller of the
// payment core without translation.
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// GatewayClient is the HTTP implementation of PaymentGateway.
type GatewayClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewGatewayClient() *GatewayClient {
	url := os.Getenv("GATEWAY_BASE_URL")
	if url == "" {
		url = "http://gateway:4000"
	}
	return &GatewayClient{
		baseURL:   url,
		secretKey: os.Getenv("GATEWAY_SECRET_KEY"),
		client:    &http.Client{},
	}
}

// NewGatewayClientWith is used by tests to point the client at a local server.
func NewGatewayClientWith(baseURL, secretKey string, client *http.Client) *GatewayClient {
	if client == nil {
		client = &http.Client{}
	}
	return &GatewayClient{baseURL: baseURL, secretKey: secretKey, client: client}
}

func (c *GatewayClient) Confirm(ctx context.Context, req ConfirmGatewayRequest) (*GatewayConfirmation, error) {
	var out GatewayConfirmation
	if err := c.post(ctx, "/v1/payments/confirm", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatewayClient) Cancel(ctx context.Context, req CancelGatewayRequest) (*GatewayCancellation, error) {
	endpoint := fmt.Sprintf("/v1/payments/%s/cancel", req.TransactionKey)
	var out GatewayCancellation
	if err := c.post(ctx, endpoint, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatewayClient) post(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", c.baseURL, endpoint), bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		gwErr := &GatewayError{}
		if err := json.Unmarshal(body, gwErr); err != nil || gwErr.Code == "" {
			gwErr.Code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
			gwErr.Message = string(body)
		}
		return gwErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
