package models

// Category groups unicorns in the storefront filter bar
type Category string

const (
	CategoryClassic   Category = "classic"
	CategoryRainbow   Category = "rainbow"
	CategoryCelestial Category = "celestial"
	CategoryRare      Category = "rare"
)

// CategoryAll is the pseudo category that matches every product
const CategoryAll Category = "all"

// IsValid reports whether c is one of the known catalog categories
func (c Category) IsValid() bool {
	switch c {
	case CategoryClassic, CategoryRainbow, CategoryCelestial, CategoryRare:
		return true
	}
	return false
}

// Product is a catalog entry. Price is in whole currency units.
type Product struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       int64    `json:"price" yaml:"price"`
	Category    Category `json:"category" yaml:"category"`
	Image       string   `json:"image" yaml:"image"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
}

// CartLine is a product held in the cart together with its quantity.
// The product fields are flattened in JSON, matching the stored cart format.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price * quantity for the line
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}
