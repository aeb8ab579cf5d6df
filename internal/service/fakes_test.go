package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"vendas-escolares/internal/domain"
	"vendas-escolares/internal/repository"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for the three tables. Transactions
// snapshot it and restore the snapshot when the unit of work fails.
type fakeStore struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	products      map[int64]*domain.Product
	orders        map[int64]*domain.Order
	nextProductID int64
	nextOrderID   int64
	rowLocks      int

	// injected failures
	failList        error
	failFind        error
	failOrderCreate error
	failDecrement   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[int64]*domain.Product),
		orders:   make(map[int64]*domain.Order),
	}
}

func (s *fakeStore) addProduct(name, price string, stock int, sku *string) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	p := &domain.Product{
		ID:       s.nextProductID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "Cadernos",
		SKU:      sku,
	}
	s.products[p.ID] = p
	clone := *p
	return &clone
}

func (s *fakeStore) stockOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) snapshot() (map[int64]domain.Product, map[int64]*domain.Order, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[int64]domain.Product, len(s.products))
	for id, p := range s.products {
		products[id] = *p
	}
	orders := make(map[int64]*domain.Order, len(s.orders))
	for id, o := range s.orders {
		orders[id] = o
	}
	return products, orders, s.nextOrderID
}

func (s *fakeStore) restore(products map[int64]domain.Product, orders map[int64]*domain.Order, nextOrderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[int64]*domain.Product, len(products))
	for id, p := range products {
		p := p
		s.products[id] = &p
	}
	s.orders = orders
	s.nextOrderID = nextOrderID
}

type fakeTransactor struct{ *fakeStore }

func (t fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	products, orders, nextOrderID := t.snapshot()
	if err := fn(ctx); err != nil {
		t.restore(products, orders, nextOrderID)
		return err
	}
	return nil
}

type fakeProductRepo struct{ *fakeStore }

func (r fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.SKU != nil {
		for _, p := range r.products {
			if p.SKU != nil && *p.SKU == *product.SKU {
				return repository.ErrDuplicateSKU
			}
		}
	}
	r.nextProductID++
	product.ID = r.nextProductID
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r fakeProductRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r fakeProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFind != nil {
		return nil, r.failFind
	}
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.SKU != nil && *p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r fakeProductRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFind != nil {
		return nil, r.failFind
	}
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	r.rowLocks++
	clone := *p
	return &clone, nil
}

func (r fakeProductRepo) FindByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFind != nil {
		return nil, r.failFind
	}
	out := []*domain.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeProductRepo) DecrementStock(ctx context.Context, id int64, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failDecrement != nil {
		return r.failDecrement
	}
	p, ok := r.products[id]
	if !ok || p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (r fakeProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failList != nil {
		return nil, r.failList
	}
	out := []*domain.Product{}
	for _, p := range r.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeOrderRepo struct{ *fakeStore }

func (r fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failOrderCreate != nil {
		return r.failOrderCreate
	}
	r.nextOrderID++
	order.ID = r.nextOrderID
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].ID = int64(i + 1)
	}
	r.orders[order.ID] = order
	return nil
}

func (r fakeOrderRepo) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.bodies = append(p.bodies, body)
	return nil
}
