package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"shopmall_app_echo/internal/models"
)

func seedOneLineOrder(s *MemoryStore) {
	s.SeedOption(models.ProductOption{ID: 3, ProductID: 1, Color: "black", Size: "L", Stock: 10})
	s.SeedPurchase(models.Purchase{
		ID:         7,
		UserID:     42,
		TotalPrice: decimal.NewFromInt(100000),
		Status:     models.PurchaseStatusCreated,
		Products: []models.PurchaseProduct{
			{ID: 70, PurchaseID: 7, ProductID: 1, ProductOptionID: 3, Quantity: 10,
				PriceAtPurchase: decimal.NewFromInt(10000), Status: models.PurchaseProductStatusOrdered},
		},
	})
}

func TestWithinTxCommitsOnNil(t *testing.T) {
	s := NewMemoryStore()
	seedOneLineOrder(s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx TxStore) error {
		opt, err := tx.LockOption(ctx, 3)
		if err != nil {
			return err
		}
		opt.Stock -= 4
		return tx.SaveOption(ctx, opt)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opt, ok := s.OptionByID(3)
	if !ok || opt.Stock != 6 {
		t.Fatalf("expected stock 6 after commit, got %+v ok=%v", opt, ok)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewMemoryStore()
	seedOneLineOrder(s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx TxStore) error {
		opt, err := tx.LockOption(ctx, 3)
		if err != nil {
			return err
		}
		opt.Stock = 0
		if err := tx.SaveOption(ctx, opt); err != nil {
			return err
		}
		p, err := tx.FindCreatedPurchaseForUpdate(ctx, 7)
		if err != nil {
			return err
		}
		p.Status = models.PurchaseStatusPaid
		if err := tx.SavePurchase(ctx, p); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	opt, _ := s.OptionByID(3)
	if opt.Stock != 10 {
		t.Fatalf("expected stock 10 after rollback, got %d", opt.Stock)
	}
	p, _ := s.PurchaseByID(7)
	if p.Status != models.PurchaseStatusCreated {
		t.Fatalf("expected purchase still %s, got %s", models.PurchaseStatusCreated, p.Status)
	}
}

func TestFindCreatedPurchaseFiltersStatus(t *testing.T) {
	s := NewMemoryStore()
	seedOneLineOrder(s)
	ctx := context.Background()

	p, err := s.FindCreatedPurchase(ctx, 7)
	if err != nil || p == nil {
		t.Fatalf("expected created purchase, got %v err=%v", p, err)
	}

	if err := s.WithinTx(ctx, func(tx TxStore) error {
		got, err := tx.FindCreatedPurchaseForUpdate(ctx, 7)
		if err != nil {
			return err
		}
		got.Status = models.PurchaseStatusPaid
		return tx.SavePurchase(ctx, got)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err = s.FindCreatedPurchase(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil for a paid purchase, got %+v", p)
	}
}

func TestCreatePaymentAssignsIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var first, second uint
	err := s.WithinTx(ctx, func(tx TxStore) error {
		p1 := &models.Payment{PurchaseID: 7, Amount: decimal.NewFromInt(100)}
		if err := tx.CreatePayment(ctx, p1); err != nil {
			return err
		}
		p2 := &models.Payment{PurchaseID: 8, Amount: decimal.NewFromInt(200)}
		if err := tx.CreatePayment(ctx, p2); err != nil {
			return err
		}
		first, second = p1.ID, p2.ID
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == 0 || second != first+1 {
		t.Fatalf("expected sequential ids, got %d and %d", first, second)
	}
}
