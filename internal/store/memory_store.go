package store

import (
	"context"
	"sync"

	"shopmall_app_echo/internal/models"
)

// MemoryStore is an in-memory Store. Transactions run against a deep copy of
// the state and swap it in on commit, so a failed transaction leaves no
// partial writes behind. Not durable; it exists for tests and local runs.
type MemoryStore struct {
	mu sync.Mutex
	st *memState
}

type memState struct {
	purchases map[uint]*models.Purchase
	options   map[uint]*models.ProductOption
	payments  map[uint]*models.Payment
	histories []models.History

	nextPaymentID uint
	nextHistoryID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: &memState{
		purchases:     make(map[uint]*models.Purchase),
		options:       make(map[uint]*models.ProductOption),
		payments:      make(map[uint]*models.Payment),
		nextPaymentID: 1,
		nextHistoryID: 1,
	}}
}

func (s *MemoryStore) FindPurchase(ctx context.Context, id uint) (*models.Purchase, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return clonePurchase(p), nil
}

func (s *MemoryStore) FindCreatedPurchase(ctx context.Context, id uint) (*models.Purchase, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.st.purchases[id]
	if !ok || p.Status != models.PurchaseStatusCreated {
		return nil, nil
	}
	return clonePurchase(p), nil
}

func (s *MemoryStore) FindPayment(ctx context.Context, id uint) (*models.Payment, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	pay, ok := s.st.payments[id]
	if !ok {
		return nil, nil
	}
	out := clonePayment(pay)
	if purchase, ok := s.st.purchases[pay.PurchaseID]; ok {
		out.Purchase = *clonePurchase(purchase)
	}
	return out, nil
}

func (s *MemoryStore) FindPurchaseProduct(ctx context.Context, id uint) (*models.PurchaseProduct, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if line := s.st.findLine(id); line != nil {
		cp := *line
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Seed helpers for fixtures. IDs are taken as given.

func (s *MemoryStore) SeedOption(o models.ProductOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := o
	s.st.options[o.ID] = &cp
}

func (s *MemoryStore) SeedPurchase(p models.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.purchases[p.ID] = clonePurchase(&p)
}

func (s *MemoryStore) SeedPayment(p models.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.payments[p.ID] = clonePayment(&p)
	if p.ID >= s.st.nextPaymentID {
		s.st.nextPaymentID = p.ID + 1
	}
}

// Snapshot accessors for assertions.

func (s *MemoryStore) OptionByID(id uint) (models.ProductOption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.options[id]
	if !ok {
		return models.ProductOption{}, false
	}
	return *o, true
}

func (s *MemoryStore) PurchaseByID(id uint) (models.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.purchases[id]
	if !ok {
		return models.Purchase{}, false
	}
	return *clonePurchase(p), true
}

func (s *MemoryStore) PaymentByID(id uint) (models.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.payments[id]
	if !ok {
		return models.Payment{}, false
	}
	return *clonePayment(p), true
}

func (s *MemoryStore) Histories() []models.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.History, len(s.st.histories))
	copy(out, s.st.histories)
	return out
}

type memTx struct {
	st *memState
}

func (t *memTx) FindCreatedPurchaseForUpdate(ctx context.Context, id uint) (*models.Purchase, error) {
	_ = ctx
	p, ok := t.st.purchases[id]
	if !ok || p.Status != models.PurchaseStatusCreated {
		return nil, nil
	}
	return p, nil
}

func (t *memTx) FindPurchaseForUpdate(ctx context.Context, id uint) (*models.Purchase, error) {
	_ = ctx
	p, ok := t.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (t *memTx) FindPaymentForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	_ = ctx
	p, ok := t.st.payments[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (t *memTx) LockOption(ctx context.Context, id uint) (*models.ProductOption, error) {
	_ = ctx
	o, ok := t.st.options[id]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (t *memTx) SavePurchase(ctx context.Context, p *models.Purchase) error {
	_ = ctx
	t.st.purchases[p.ID] = p
	return nil
}

func (t *memTx) SavePayment(ctx context.Context, p *models.Payment) error {
	_ = ctx
	t.st.payments[p.ID] = p
	return nil
}

func (t *memTx) SaveOption(ctx context.Context, o *models.ProductOption) error {
	_ = ctx
	t.st.options[o.ID] = o
	return nil
}

func (t *memTx) CreatePayment(ctx context.Context, p *models.Payment) error {
	_ = ctx
	p.ID = t.st.nextPaymentID
	t.st.nextPaymentID++
	t.st.payments[p.ID] = p
	return nil
}

func (t *memTx) AppendHistory(ctx context.Context, h *models.History) error {
	_ = ctx
	h.ID = t.st.nextHistoryID
	t.st.nextHistoryID++
	t.st.histories = append(t.st.histories, *h)
	return nil
}

func (st *memState) findLine(id uint) *models.PurchaseProduct {
	for _, p := range st.purchases {
		for i := range p.Products {
			if p.Products[i].ID == id {
				return &p.Products[i]
			}
		}
	}
	return nil
}

func (st *memState) clone() *memState {
	out := &memState{
		purchases:     make(map[uint]*models.Purchase, len(st.purchases)),
		options:       make(map[uint]*models.ProductOption, len(st.options)),
		payments:      make(map[uint]*models.Payment, len(st.payments)),
		histories:     make([]models.History, len(st.histories)),
		nextPaymentID: st.nextPaymentID,
		nextHistoryID: st.nextHistoryID,
	}
	for id, p := range st.purchases {
		out.purchases[id] = clonePurchase(p)
	}
	for id, o := range st.options {
		cp := *o
		out.options[id] = &cp
	}
	for id, p := range st.payments {
		out.payments[id] = clonePayment(p)
	}
	copy(out.histories, st.histories)
	return out
}

func clonePurchase(p *models.Purchase) *models.Purchase {
	cp := *p
	cp.Products = make([]models.PurchaseProduct, len(p.Products))
	copy(cp.Products, p.Products)
	cp.Payments = nil
	return &cp
}

func clonePayment(p *models.Payment) *models.Payment {
	cp := *p
	cp.Purchase = models.Purchase{}
	return &cp
}
