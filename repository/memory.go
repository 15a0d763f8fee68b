package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/agusmuss/Ecom-Next/models"

	"github.com/google/uuid"
)

const maxTxAttempts = 8

// errTxConflict aborts a memory transaction whose read set went stale.
var errTxConflict = errors.New("transaction conflict")

// MemoryStore is an in-memory Store with the same optimistic-concurrency
// contract as the Mongo implementation: every read records a document
// version, and the commit is rejected if any read document changed in the
// meantime. Used by tests.
type MemoryStore struct {
	mu         sync.Mutex
	products   map[uuid.UUID]models.Product
	orders     map[string]models.Order
	userOrders map[string]models.Order
	versions   map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   make(map[uuid.UUID]models.Product),
		orders:     make(map[string]models.Order),
		userOrders: make(map[string]models.Order),
		versions:   make(map[string]uint64),
	}
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memTx{
			store:        s,
			reads:        make(map[string]uint64),
			stagedStock:  make(map[uuid.UUID]int),
			stagedByUser: make(map[string]models.Order),
		}
		if err := fn(ctx, tx); err != nil {
			if errors.Is(err, errTxConflict) {
				continue
			}
			return err
		}
		if s.commit(tx) {
			return nil
		}
	}
	return fmt.Errorf("memory store: transaction retries exhausted: %w", errTxConflict)
}

// commit applies the staged writes if no read document changed.
func (s *MemoryStore) commit(tx *memTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range tx.reads {
		if s.versions[key] != version {
			return false
		}
	}

	for id, stock := range tx.stagedStock {
		p := s.products[id]
		p.Stock = stock
		s.products[id] = p
		s.versions[productKey(id)]++
	}
	for _, order := range tx.stagedOrders {
		s.orders[order.SessionID] = order
		s.versions[orderKey(order.SessionID)]++
	}
	for key, order := range tx.stagedByUser {
		s.userOrders[key] = order
		s.versions["userorder/"+key]++
	}
	return true
}

type memTx struct {
	store        *MemoryStore
	reads        map[string]uint64
	stagedStock  map[uuid.UUID]int
	stagedOrders []models.Order
	stagedByUser map[string]models.Order
}

func productKey(id uuid.UUID) string   { return "product/" + id.String() }
func orderKey(sessionID string) string { return "order/" + sessionID }

func (t *memTx) GetOrder(_ context.Context, sessionID string) (*models.Order, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	t.reads[orderKey(sessionID)] = t.store.versions[orderKey(sessionID)]
	order, ok := t.store.orders[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(order), nil
}

func (t *memTx) FindProductByPriceID(_ context.Context, priceID string) (*models.Product, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	// Deterministic scan order so racing transactions read the same doc.
	ids := make([]uuid.UUID, 0, len(t.store.products))
	for id := range t.store.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		p := t.store.products[id]
		if p.StripePriceID == priceID {
			t.reads[productKey(id)] = t.store.versions[productKey(id)]
			clone := p
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) SetProductStock(_ context.Context, productID uuid.UUID, stock int) error {
	t.stagedStock[productID] = stock
	return nil
}

func (t *memTx) PutOrder(_ context.Context, order *models.Order) error {
	t.stagedOrders = append(t.stagedOrders, *cloneOrder(*order))
	return nil
}

func (t *memTx) PutUserOrder(_ context.Context, userID string, order *models.Order) error {
	t.stagedByUser[userOrderKey(userID, order.SessionID)] = *cloneOrder(*order)
	return nil
}

func cloneOrder(o models.Order) *models.Order {
	clone := o
	clone.Items = append([]models.OrderItem(nil), o.Items...)
	return &clone
}

// --- seeding and inspection helpers for tests ---

// SeedProduct inserts or replaces a product.
func (s *MemoryStore) SeedProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.versions[productKey(p.ID)]++
}

// Product returns a copy of the stored product.
func (s *MemoryStore) Product(id uuid.UUID) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// Order returns a copy of the order in the global ledger.
func (s *MemoryStore) Order(sessionID string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[sessionID]
	return o, ok
}

// UserOrder returns a copy of the order in the user's history.
func (s *MemoryStore) UserOrder(userID, sessionID string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.userOrders[userOrderKey(userID, sessionID)]
	return o, ok
}

// OrderCount reports how many orders the global ledger holds.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// UserOrderCount reports how many per-user order copies exist.
func (s *MemoryStore) UserOrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.userOrders)
}
