package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// FallbackAdvisory is shown when the catalog could not be fetched
const FallbackAdvisory = "Failed to load products. Using sample data."

var errNoSource = errors.New("no product source configured")

// ProductSource fetches the catalog from the storefront API
type ProductSource interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByCategory(ctx context.Context, category models.Category) ([]models.Product, error)
}

// Listing is the result of a catalog fetch
type Listing struct {
	Products []models.Product
	// Advisory is non-empty when sample data replaced the remote catalog
	Advisory string
	// Err is the fetch error that triggered the fallback
	Err error
}

// Fetcher loads products from a ProductSource, falling back to the sample
// catalog when the source fails.
type Fetcher struct {
	source ProductSource
}

// NewFetcher creates a fetcher over source. A nil source always yields
// sample data.
func NewFetcher(source ProductSource) *Fetcher {
	return &Fetcher{source: source}
}

// Products returns the catalog for category ("all" or empty for everything)
func (f *Fetcher) Products(ctx context.Context, category models.Category) Listing {
	products, err := f.fetch(ctx, category)
	if err == nil {
		return Listing{Products: products}
	}

	slog.Error("failed to load products", "category", category, "error", err)
	return Listing{
		Products: FilterByCategory(SampleProducts(), category),
		Advisory: FallbackAdvisory,
		Err:      err,
	}
}

// Product looks up a single product by id in the fetched catalog
func (f *Fetcher) Product(ctx context.Context, id int64) (models.Product, Listing, bool) {
	listing := f.Products(ctx, models.CategoryAll)
	for _, p := range listing.Products {
		if p.ID == id {
			return p, listing, true
		}
	}
	return models.Product{}, listing, false
}

func (f *Fetcher) fetch(ctx context.Context, category models.Category) ([]models.Product, error) {
	if f.source == nil {
		return nil, errNoSource
	}
	if category == "" || category == models.CategoryAll {
		return f.source.GetProducts(ctx)
	}
	return f.source.GetProductsByCategory(ctx, category)
}
