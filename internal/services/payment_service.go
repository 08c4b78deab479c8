package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopmall_app_echo/internal/apperr"
	"shopmall_app_echo/internal/events"
	"shopmall_app_echo/internal/models"
	"shopmall_app_echo/internal/store"
)

// Publisher hands post-commit events to the message transport. Delivery is
// fire-and-forget from the payment service's perspective.
type Publisher interface {
	Publish(ctx context.Context, key []byte, env events.Envelope) error
}

// PaymentService drives the confirm and cancel workflows. It validates
// against current aggregate state, calls the gateway outside any local lock,
// and applies all local mutations in one transaction.
type PaymentService struct {
	store     store.Store
	gateway   PaymentGateway
	publisher Publisher
	logger    *zap.Logger
}

func NewPaymentService(st store.Store, gateway PaymentGateway, publisher Publisher, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		store:     st,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
	}
}

type ConfirmPaymentInput struct {
	PurchaseID     uint
	TransactionKey string
	Amount         decimal.Decimal
	RequesterID    uint
	Privileged     bool
}

// ConfirmPayment turns a created purchase into a paid one: capture at the
// gateway, then flip purchase and lines to paid, decrement stock, create the
// payment row and append the audit entry, all in one transaction. Not
// idempotent: a second call on the same purchase fails with NotFound because
// the purchase has left PURCHASE_CREATED.
func (s *PaymentService) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (*GatewayConfirmation, error) {
	purchase, err := s.store.FindCreatedPurchase(ctx, in.PurchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperr.New(apperr.CodeNotFound, "purchase not found or not awaiting payment")
	}

	if !purchase.TotalPrice.Equal(in.Amount) {
		return nil, apperr.New(apperr.CodeAmountMismatch, "payment amount does not match the purchase total")
	}

	if err := checkPermission(purchase.UserID, in.RequesterID, in.Privileged); err != nil {
		return nil, err
	}

	// Gateway capture happens before and outside the local transaction. From
	// here on, a local failure leaves captured funds without a matching
	// payment row; see the error log below.
	confirmation, err := s.gateway.Confirm(ctx, ConfirmGatewayRequest{
		TransactionKey: in.TransactionKey,
		PurchaseID:     in.PurchaseID,
		Amount:         in.Amount,
	})
	if err != nil {
		return nil, err
	}

	var payment *models.Payment
	err = s.store.WithinTx(ctx, func(tx store.TxStore) error {
		p, err := tx.FindCreatedPurchaseForUpdate(ctx, in.PurchaseID)
		if err != nil {
			return err
		}
		if p == nil {
			// A concurrent confirmation committed first; the status filter
			// keeps this call from double-capturing locally.
			return apperr.New(apperr.CodeNotFound, "purchase not found or not awaiting payment")
		}

		oldStatus := string(p.Status)
		p.Status = models.PurchaseStatusPaid

		stock := make(map[uint]int, len(p.Products))
		for i := range p.Products {
			p.Products[i].Status = models.PurchaseProductStatusPaid
			stock[p.Products[i].ProductOptionID] += p.Products[i].Quantity
		}
		if err := decrementStock(ctx, tx, stock); err != nil {
			return err
		}
		if err := tx.SavePurchase(ctx, p); err != nil {
			return err
		}

		payment = &models.Payment{
			PurchaseID:     p.ID,
			TransactionKey: confirmation.TransactionKey,
			Method:         confirmation.Method,
			Amount:         confirmation.Amount,
			RefundedAmount: decimal.Zero,
			Status:         models.PaymentStatusDone,
			PaidAt:         confirmation.ApprovedAt,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		return tx.AppendHistory(ctx, &models.History{
			Type:       models.HistoryTypePayment,
			PurchaseID: &p.ID,
			PaymentID:  &payment.ID,
			OldStatus:  oldStatus,
			NewStatus:  string(models.PaymentStatusDone),
			Reason:     "payment confirmed",
			ActorID:    in.RequesterID,
		})
	})
	if err != nil {
		// Known compensation gap: the gateway has captured funds but no local
		// state records it. Logged with the transaction key so a future
		// reconciliation job can find the orphaned capture.
		s.logger.Error("gateway capture committed but local transaction failed",
			zap.Uint("purchase_id", in.PurchaseID),
			zap.String("transaction_key", confirmation.TransactionKey),
			zap.Error(err),
		)
		return nil, err
	}

	s.publishPaymentCompleted(ctx, purchase.ID, payment)
	return confirmation, nil
}

type CancelLine struct {
	PurchaseProductID uint
	Quantity          int
}

type CancelPaymentInput struct {
	PaymentID   uint
	Type        models.CancelType
	Lines       []CancelLine
	Amount      *decimal.Decimal
	Reason      string
	RequesterID uint
	Privileged  bool
}

// CancelPayment reverses a capture fully or per line. The cancel amount is
// computed from locked-in line prices with exact decimal arithmetic; the
// caller-asserted amount, when present, must match it.
func (s *PaymentService) CancelPayment(ctx context.Context, in CancelPaymentInput) (*GatewayCancellation, error) {
	switch in.Type {
	case models.CancelTypeAll:
		if in.Amount == nil {
			return nil, apperr.New(apperr.CodeInvalidCancelRequest, "a full cancellation requires the total amount")
		}
	case models.CancelTypePartial:
		if len(in.Lines) == 0 {
			return nil, apperr.New(apperr.CodeInvalidCancelRequest, "a partial cancellation requires at least one line")
		}
	default:
		return nil, apperr.New(apperr.CodeInvalidCancelRequest, fmt.Sprintf("unknown cancel type %q", in.Type))
	}

	payment, err := s.store.FindPayment(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperr.New(apperr.CodeNotFound, "payment not found")
	}
	if payment.Status == models.PaymentStatusCancelled {
		return nil, apperr.New(apperr.CodeInvalidPaymentStatus, "payment is already fully cancelled")
	}

	purchase := payment.Purchase
	if err := checkPermission(purchase.UserID, in.RequesterID, in.Privileged); err != nil {
		return nil, err
	}

	requested, err := s.collectCancelLines(ctx, in, &purchase)
	if err != nil {
		return nil, err
	}

	cancelAmount := decimal.Zero
	for _, r := range requested {
		cancelAmount = cancelAmount.Add(r.line.PriceAtPurchase.Mul(decimal.NewFromInt(int64(r.quantity))))
	}

	if cancelAmount.GreaterThan(payment.RemainingAmount()) {
		return nil, apperr.New(apperr.CodeExceedsPaymentAmount, "cancel amount exceeds the payment's remaining amount")
	}
	if in.Amount != nil && !in.Amount.Equal(cancelAmount) {
		return nil, apperr.New(apperr.CodeAmountMismatch, "requested amount does not match the computed cancel amount")
	}

	lineIDs := make([]uint, 0, len(requested))
	quantities := make(map[uint]int, len(requested))
	for _, r := range requested {
		lineIDs = append(lineIDs, r.line.ID)
		quantities[r.line.ID] = r.quantity
	}

	cancellation, err := s.gateway.Cancel(ctx, CancelGatewayRequest{
		TransactionKey: payment.TransactionKey,
		PurchaseID:     purchase.ID,
		CancelType:     in.Type,
		Amount:         cancelAmount,
		LineIDs:        lineIDs,
		Reason:         in.Reason,
	})
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx store.TxStore) error {
		return s.applyCancellation(ctx, tx, in, cancelAmount, quantities)
	})
	if err != nil {
		// Same compensation gap as on confirm, in reverse: the gateway has
		// released funds the local ledger still counts as captured.
		s.logger.Error("gateway cancel committed but local transaction failed",
			zap.Uint("payment_id", in.PaymentID),
			zap.String("transaction_key", payment.TransactionKey),
			zap.Error(err),
		)
		return nil, err
	}

	return cancellation, nil
}

type requestedCancel struct {
	line     *models.PurchaseProduct
	quantity int
}

// collectCancelLines resolves the cancellable lines of the request against a
// snapshot of the purchase. ALL takes every line with remaining quantity in
// full; PARTIAL resolves each requested line and quantity. A line id that
// resolves to another purchase is an invalid request, one that resolves to
// nothing at all is NotFound.
func (s *PaymentService) collectCancelLines(ctx context.Context, in CancelPaymentInput, purchase *models.Purchase) ([]requestedCancel, error) {
	if in.Type == models.CancelTypeAll {
		var out []requestedCancel
		for i := range purchase.Products {
			line := &purchase.Products[i]
			if line.RemainingQuantity() > 0 {
				out = append(out, requestedCancel{line: line, quantity: line.RemainingQuantity()})
			}
		}
		if len(out) == 0 {
			return nil, apperr.New(apperr.CodeInvalidCancelRequest, "no remaining quantity to cancel")
		}
		return out, nil
	}

	byID := make(map[uint]*models.PurchaseProduct, len(purchase.Products))
	for i := range purchase.Products {
		byID[purchase.Products[i].ID] = &purchase.Products[i]
	}

	seen := make(map[uint]bool, len(in.Lines))
	out := make([]requestedCancel, 0, len(in.Lines))
	for _, req := range in.Lines {
		if seen[req.PurchaseProductID] {
			return nil, apperr.New(apperr.CodeInvalidCancelRequest, "duplicate purchase line in cancel request")
		}
		seen[req.PurchaseProductID] = true

		if req.Quantity <= 0 {
			return nil, apperr.New(apperr.CodeInvalidCancelRequest, "cancel quantity must be positive")
		}

		line, ok := byID[req.PurchaseProductID]
		if !ok {
			resolved, err := s.store.FindPurchaseProduct(ctx, req.PurchaseProductID)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				return nil, apperr.New(apperr.CodeNotFound, "purchase line not found")
			}
			return nil, apperr.New(apperr.CodeInvalidCancelRequest, "purchase line does not belong to this purchase")
		}
		if req.Quantity > line.RemainingQuantity() {
			return nil, apperr.New(apperr.CodeExceedCancelQuantity, "cancel quantity exceeds the line's remaining quantity")
		}
		out = append(out, requestedCancel{line: line, quantity: req.Quantity})
	}
	return out, nil
}

// applyCancellation re-locks the aggregates and applies the refund. The
// remaining-amount and remaining-quantity guards run again here because the
// pre-gateway snapshot may have raced another cancellation.
func (s *PaymentService) applyCancellation(ctx context.Context, tx store.TxStore, in CancelPaymentInput, cancelAmount decimal.Decimal, quantities map[uint]int) error {
	payment, err := tx.FindPaymentForUpdate(ctx, in.PaymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return apperr.New(apperr.CodeNotFound, "payment not found")
	}
	if payment.Status == models.PaymentStatusCancelled {
		return apperr.New(apperr.CodeInvalidPaymentStatus, "payment is already fully cancelled")
	}
	if cancelAmount.GreaterThan(payment.RemainingAmount()) {
		return apperr.New(apperr.CodeExceedsPaymentAmount, "cancel amount exceeds the payment's remaining amount")
	}

	purchase, err := tx.FindPurchaseForUpdate(ctx, payment.PurchaseID)
	if err != nil {
		return err
	}
	if purchase == nil {
		return apperr.New(apperr.CodeNotFound, "purchase not found")
	}

	isFullyCancelled := payment.RemainingAmount().Sub(cancelAmount).IsZero()

	oldStatus := payment.Status
	payment.RefundedAmount = payment.RefundedAmount.Add(cancelAmount)
	if isFullyCancelled {
		payment.Status = models.PaymentStatusCancelled
	} else {
		payment.Status = models.PaymentStatusPartialCancelled
	}
	if !oldStatus.CanTransition(payment.Status) {
		return apperr.New(apperr.CodeInvalidPaymentStatus, fmt.Sprintf("payment cannot move from %s to %s", oldStatus, payment.Status))
	}

	purchase.RefundedAmount = purchase.RefundedAmount.Add(cancelAmount)
	if isFullyCancelled {
		purchase.Status = models.PurchaseStatusRefunded
	} else {
		purchase.Status = models.PurchaseStatusPartiallyRefunded
	}

	stock := make(map[uint]int, len(quantities))
	for i := range purchase.Products {
		line := &purchase.Products[i]
		qty, ok := quantities[line.ID]
		if !ok {
			continue
		}
		if qty > line.RemainingQuantity() {
			return apperr.New(apperr.CodeExceedCancelQuantity, "cancel quantity exceeds the line's remaining quantity")
		}
		line.RefundedQuantity += qty
		if line.RemainingQuantity() == 0 {
			line.Status = models.PurchaseProductStatusRefunded
		} else {
			line.Status = models.PurchaseProductStatusPartiallyRefunded
		}
		stock[line.ProductOptionID] += qty
	}
	if err := incrementStock(ctx, tx, stock); err != nil {
		return err
	}

	if err := tx.SavePayment(ctx, payment); err != nil {
		return err
	}
	if err := tx.SavePurchase(ctx, purchase); err != nil {
		return err
	}

	return tx.AppendHistory(ctx, &models.History{
		Type:       models.HistoryTypePayment,
		PurchaseID: &purchase.ID,
		PaymentID:  &payment.ID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(payment.Status),
		Reason:     in.Reason,
		ActorID:    in.RequesterID,
	})
}

func checkPermission(ownerID, requesterID uint, privileged bool) error {
	if requesterID == ownerID || privileged {
		return nil
	}
	return apperr.New(apperr.CodePermissionDenied, "requester is not the purchase owner")
}

func (s *PaymentService) publishPaymentCompleted(ctx context.Context, purchaseID uint, payment *models.Payment) {
	env, err := events.NewPaymentCompleted("payment-api", events.PaymentCompletedPayload{
		PurchaseID: purchaseID,
		PaymentID:  payment.ID,
		Amount:     payment.Amount,
	})
	if err != nil {
		s.logger.Warn("failed to build payment.completed event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, events.PartitionKey(purchaseID), env); err != nil {
		s.logger.Warn("failed to publish payment.completed event",
			zap.Uint("purchase_id", purchaseID),
			zap.Error(err),
		)
	}
}
