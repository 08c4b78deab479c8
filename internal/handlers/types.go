package handlers

import "shopmall_app_echo/internal/services"

type ConfirmPaymentRequest struct {
	TransactionKey string `json:"transaction_key"`
	Amount         string `json:"amount"`
}

type CancelLineRequest struct {
	PurchaseProductID uint `json:"purchase_product_id"`
	Quantity          int  `json:"quantity"`
}

type CancelPaymentRequest struct {
	CancelType string              `json:"cancel_type"`
	Amount     *string             `json:"amount,omitempty"`
	Reason     string              `json:"reason"`
	Lines      []CancelLineRequest `json:"lines,omitempty"`
}

type PreparePaymentResponse struct {
	TransactionKey string `json:"transaction_key"`
	Amount         string `json:"amount"`
}

type ConfirmPaymentResponse struct {
	Confirmation *services.GatewayConfirmation `json:"confirmation"`
}

type CancelPaymentResponse struct {
	Cancellation *services.GatewayCancellation `json:"cancellation"`
}
