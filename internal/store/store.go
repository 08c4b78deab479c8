// Package store holds the persistence ports of the payment core and their
// adapters. The gorm adapter backs production; the in-memory adapter backs
// tests and exercises the same transactional contract.
package store

import (
	"context"

	"shopmall_app_echo/internal/models"
)

// Store is the read side plus the transaction entry point. Lookups return
// (nil, nil) when no row matches, never a not-found error; callers translate
// absence into their own taxonomy.
type Store interface {
	// FindPurchase loads a purchase in any status with its lines.
	FindPurchase(ctx context.Context, id uint) (*models.Purchase, error)
	// FindCreatedPurchase loads a purchase with its lines, filtered to
	// PURCHASE_CREATED. The status filter is the double-capture guard: once a
	// confirmation commits, this lookup stops returning the row.
	FindCreatedPurchase(ctx context.Context, id uint) (*models.Purchase, error)
	// FindPayment loads a payment with its owning purchase and that
	// purchase's lines.
	FindPayment(ctx context.Context, id uint) (*models.Payment, error)
	FindPurchaseProduct(ctx context.Context, id uint) (*models.PurchaseProduct, error)

	// WithinTx runs fn inside one local transaction. Any error from fn rolls
	// back every write issued through the TxStore; nil commits them all.
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the mutation surface available inside WithinTx. ForUpdate
// lookups and LockOption take row-level write locks scoped to the
// transaction.
type TxStore interface {
	FindCreatedPurchaseForUpdate(ctx context.Context, id uint) (*models.Purchase, error)
	FindPurchaseForUpdate(ctx context.Context, id uint) (*models.Purchase, error)
	FindPaymentForUpdate(ctx context.Context, id uint) (*models.Payment, error)

	// LockOption takes a write-intent lock on one stock row and returns its
	// current state. Callers that lock several options must do so in
	// ascending option-id order (see services.decrementStock).
	LockOption(ctx context.Context, id uint) (*models.ProductOption, error)

	SavePurchase(ctx context.Context, p *models.Purchase) error
	SavePayment(ctx context.Context, p *models.Payment) error
	SaveOption(ctx context.Context, o *models.ProductOption) error
	CreatePayment(ctx context.Context, p *models.Payment) error
	AppendHistory(ctx context.Context, h *models.History) error
}
