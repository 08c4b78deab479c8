package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"shopmall_app_echo/internal/apperr"
	"shopmall_app_echo/internal/middleware"
	"shopmall_app_echo/internal/models"
	"shopmall_app_echo/internal/services"
	"shopmall_app_echo/internal/store"
)

// AmountCache is the slice of the redis cache the payment handlers use.
type AmountCache interface {
	Put(ctx context.Context, purchaseID uint, amount decimal.Decimal, ttl time.Duration) error
	Get(ctx context.Context, purchaseID uint) (decimal.Decimal, bool, error)
}

type PaymentHandler struct {
	svc   *services.PaymentService
	store store.Store
	cache AmountCache
}

func NewPaymentHandler(svc *services.PaymentService, st store.Store, cache AmountCache) *PaymentHandler {
	return &PaymentHandler{svc: svc, store: st, cache: cache}
}

// PreparePayment stashes the purchase total in the amount cache and mints the
// transaction key the client must carry through the gateway redirect.
func (h *PaymentHandler) PreparePayment(c echo.Context) error {
	purchaseID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	purchase, err := h.store.FindCreatedPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}
	if purchase == nil {
		return apperr.New(apperr.CodeNotFound, "purchase not found or not awaiting payment")
	}
	if err := requireOwnership(c, purchase.UserID); err != nil {
		return err
	}

	if err := h.cache.Put(ctx, purchase.ID, purchase.TotalPrice, services.TTLPendingAmount); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PreparePaymentResponse{
		TransactionKey: uuid.NewString(),
		Amount:         purchase.TotalPrice.String(),
	})
}

// ConfirmPayment validates the client-quoted amount against the stashed one,
// then runs the confirmation workflow.
func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	purchaseID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount")
	}
	if req.TransactionKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing transaction key")
	}

	ctx := c.Request().Context()
	if cached, ok, err := h.cache.Get(ctx, purchaseID); err != nil {
		return err
	} else if ok && !cached.Equal(amount) {
		return apperr.New(apperr.CodeAmountMismatch, "amount differs from the prepared quote")
	}

	conf, err := h.svc.ConfirmPayment(ctx, services.ConfirmPaymentInput{
		PurchaseID:     purchaseID,
		TransactionKey: req.TransactionKey,
		Amount:         amount,
		RequesterID:    middleware.RequesterID(c),
		Privileged:     middleware.RequesterIsAdmin(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ConfirmPaymentResponse{Confirmation: conf})
}

func (h *PaymentHandler) CancelPayment(c echo.Context) error {
	paymentID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req CancelPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := services.CancelPaymentInput{
		PaymentID:   paymentID,
		Type:        models.CancelType(req.CancelType),
		Reason:      req.Reason,
		RequesterID: middleware.RequesterID(c),
		Privileged:  middleware.RequesterIsAdmin(c),
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid amount")
		}
		in.Amount = &amount
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, services.CancelLine{
			PurchaseProductID: line.PurchaseProductID,
			Quantity:          line.Quantity,
		})
	}

	res, err := h.svc.CancelPayment(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CancelPaymentResponse{Cancellation: res})
}

func (h *PaymentHandler) GetPurchase(c echo.Context) error {
	purchaseID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	purchase, err := h.store.FindPurchase(c.Request().Context(), purchaseID)
	if err != nil {
		return err
	}
	if purchase == nil {
		return apperr.New(apperr.CodeNotFound, "purchase not found")
	}
	if err := requireOwnership(c, purchase.UserID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, purchase)
}

func parseIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func requireOwnership(c echo.Context, ownerID uint) error {
	if middleware.RequesterID(c) == ownerID || middleware.RequesterIsAdmin(c) {
		return nil
	}
	return apperr.New(apperr.CodePermissionDenied, "requester is not the purchase owner")
}
