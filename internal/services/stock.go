package services

import (
	"context"
	"sort"

	"shopmall_app_echo/internal/apperr"
	"shopmall_app_echo/internal/models"
)

// Stock lock-acquisition contract: quantities are aggregated per option, then
// every option row is locked FOR UPDATE in ascending option-id order before
// any mutation. Two operations touching overlapping option sets therefore
// always request locks in the same order, which rules out lock-ordering
// deadlocks. All mutations are scoped to the caller's transaction, so a
// failure on any option aborts them all.

type stockDelta struct {
	optionID uint
	quantity int
}

func aggregateByOption(lines map[uint]int) []stockDelta {
	deltas := make([]stockDelta, 0, len(lines))
	for optionID, qty := range lines {
		deltas = append(deltas, stockDelta{optionID: optionID, quantity: qty})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].optionID < deltas[j].optionID })
	return deltas
}

// decrementStock removes the requested quantities from stock. It fails with
// InsufficientStock on the first option that cannot cover its quantity,
// aborting the caller's transaction.
func decrementStock(ctx context.Context, tx txLocker, lines map[uint]int) error {
	for _, d := range aggregateByOption(lines) {
		option, err := tx.LockOption(ctx, d.optionID)
		if err != nil {
			return err
		}
		if option == nil {
			return apperr.New(apperr.CodeNotFound, "product option not found")
		}
		if option.Stock < d.quantity {
			return apperr.New(apperr.CodeInsufficientStock, "not enough stock for the requested quantity")
		}
		option.Stock -= d.quantity
		if err := tx.SaveOption(ctx, option); err != nil {
			return err
		}
	}
	return nil
}

// incrementStock returns cancelled quantities to stock under the same lock
// ordering as decrementStock.
func incrementStock(ctx context.Context, tx txLocker, lines map[uint]int) error {
	for _, d := range aggregateByOption(lines) {
		option, err := tx.LockOption(ctx, d.optionID)
		if err != nil {
			return err
		}
		if option == nil {
			return apperr.New(apperr.CodeNotFound, "product option not found")
		}
		option.Stock += d.quantity
		if err := tx.SaveOption(ctx, option); err != nil {
			return err
		}
	}
	return nil
}

// txLocker is the slice of store.TxStore the stock helpers need.
type txLocker interface {
	LockOption(ctx context.Context, id uint) (*models.ProductOption, error)
	SaveOption(ctx context.Context, o *models.ProductOption) error
}
