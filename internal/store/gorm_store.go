package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopmall_app_echo/internal/models"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindPurchase(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.WithContext(ctx).Preload("Products").First(&purchase, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *GormStore) FindCreatedPurchase(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.WithContext(ctx).
		Preload("Products").
		Where("id = ? AND status = ?", id, models.PurchaseStatusCreated).
		First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *GormStore) FindPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Preload("Purchase.Products").First(&payment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *GormStore) FindPurchaseProduct(ctx context.Context, id uint) (*models.PurchaseProduct, error) {
	var line models.PurchaseProduct
	err := s.db.WithContext(ctx).First(&line, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) FindCreatedPurchaseForUpdate(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Products").
		Where("id = ? AND status = ?", id, models.PurchaseStatusCreated).
		First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (t *gormTx) FindPurchaseForUpdate(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Products").
		First(&purchase, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (t *gormTx) FindPaymentForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (t *gormTx) LockOption(ctx context.Context, id uint) (*models.ProductOption, error) {
	var option models.ProductOption
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&option, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &option, nil
}

func (t *gormTx) SavePurchase(ctx context.Context, p *models.Purchase) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return err
	}
	for i := range p.Products {
		if err := t.db.WithContext(ctx).Omit(clause.Associations).Save(&p.Products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (t *gormTx) SavePayment(ctx context.Context, p *models.Payment) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (t *gormTx) SaveOption(ctx context.Context, o *models.ProductOption) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (t *gormTx) CreatePayment(ctx context.Context, p *models.Payment) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (t *gormTx) AppendHistory(ctx context.Context, h *models.History) error {
	return t.db.WithContext(ctx).Create(h).Error
}
