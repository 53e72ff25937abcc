package storage

import (
	"context"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// Repository defines the interface for storefront persistence.
// Lookups return nil, nil when the record does not exist.
type Repository interface {
	// Products
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProductsByCategory(ctx context.Context, category models.Category) ([]*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	CountProducts(ctx context.Context) (int64, error)

	// Orders
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
