package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// MemoryRepository implements Repository in process memory. Used for demo
// runs and tests.
type MemoryRepository struct {
	mu sync.RWMutex

	products      map[int64]*models.Product
	nextProductID int64

	orders      map[int64]*models.Order
	nextOrderID int64

	clients map[string]*models.ApiClient
}

// NewMemoryRepository creates an empty repository. The given clients are
// registered by API key.
func NewMemoryRepository(clients ...*models.ApiClient) *MemoryRepository {
	r := &MemoryRepository{
		products:      make(map[int64]*models.Product),
		nextProductID: 1,
		orders:        make(map[int64]*models.Order),
		nextOrderID:   1,
		clients:       make(map[string]*models.ApiClient),
	}
	for _, c := range clients {
		cp := *c
		r.clients[c.ApiKey] = &cp
	}
	return r
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}

// --- Products ---

func (r *MemoryRepository) ListProducts(_ context.Context) ([]*models.Product, error) {
	return r.filterProducts(func(*models.Product) bool { return true }), nil
}

func (r *MemoryRepository) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *MemoryRepository) ListProductsByCategory(_ context.Context, category models.Category) ([]*models.Product, error) {
	return r.filterProducts(func(p *models.Product) bool { return p.Category == category }), nil
}

func (r *MemoryRepository) CreateProduct(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		p.ID = r.nextProductID
	}
	if p.ID >= r.nextProductID {
		r.nextProductID = p.ID + 1
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *MemoryRepository) CountProducts(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *MemoryRepository) filterProducts(keep func(*models.Product) bool) []*models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Product
	for _, p := range r.products {
		if keep(p) {
			result = append(result, cloneProduct(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// --- Orders ---

func (r *MemoryRepository) CreateOrder(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	o.ID = r.nextOrderID
	r.nextOrderID++

	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *MemoryRepository) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *MemoryRepository) ListOrders(_ context.Context, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	orders := r.filterOrders(func(*models.Order) bool { return true })
	if offset >= len(orders) {
		return nil, nil
	}
	end := offset + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end], nil
}

func (r *MemoryRepository) ListOrdersByEmail(_ context.Context, email string) ([]*models.Order, error) {
	return r.filterOrders(func(o *models.Order) bool { return o.CustomerEmail == email }), nil
}

// filterOrders returns matching orders newest first
func (r *MemoryRepository) filterOrders(keep func(*models.Order) bool) []*models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Order
	for _, o := range r.orders {
		if keep(o) {
			result = append(result, cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].OrderDate.Equal(result[j].OrderDate) {
			return result[i].OrderDate.After(result[j].OrderDate)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// --- API Clients ---

func (r *MemoryRepository) GetClientByApiKey(_ context.Context, apiKey string) (*models.ApiClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[apiKey]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) UpdateClientLastUsed(_ context.Context, apiKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[apiKey]; ok {
		now := time.Now().UTC()
		c.LastUsedAt = &now
	}
	return nil
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	cp.Features = append([]string(nil), p.Features...)
	return &cp
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem{}, o.Items...)
	return &cp
}
