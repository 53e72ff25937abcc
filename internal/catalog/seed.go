package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// ProductWriter is the part of the repository the seeder needs
type ProductWriter interface {
	CountProducts(ctx context.Context) (int64, error)
	CreateProduct(ctx context.Context, p *models.Product) error
}

// Seed inserts products when the repository holds none. It returns the
// number of products inserted.
func Seed(ctx context.Context, repo ProductWriter, products []models.Product) (int, error) {
	count, err := repo.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		slog.Debug("catalog already seeded", "products", count)
		return 0, nil
	}

	for i := range products {
		p := products[i]
		if err := repo.CreateProduct(ctx, &p); err != nil {
			return i, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	slog.Info("catalog seeded", "products", len(products))
	return len(products), nil
}
