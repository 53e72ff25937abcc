// Package catalog holds the unicorn product catalog: the built-in sample
// products, YAML seed files, the server-side seeder and the client-side
// fetcher with its sample-data fallback.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// SampleProducts returns the built-in catalog. Each call returns a fresh copy.
func SampleProducts() []models.Product {
	return []models.Product{
		{
			ID: 1, Name: "Sparkle Supreme", Price: 9999, Category: models.CategoryClassic, Image: "🦄",
			Description: "A classic white unicorn with a golden horn and the ability to grant wishes",
			Features:    []string{"Wish Granting", "Night Vision", "Gentle Temperament"},
		},
		{
			ID: 2, Name: "Rainbow Dash", Price: 12999, Category: models.CategoryRainbow, Image: "🌈",
			Description: "Creates rainbows wherever it goes. Perfect for parties and special events",
			Features:    []string{"Rainbow Creation", "Super Speed", "Weather Control"},
		},
		{
			ID: 3, Name: "Celestial Star", Price: 15999, Category: models.CategoryCelestial, Image: "⭐",
			Description: "Born from stardust with cosmic powers. Glows beautifully at night",
			Features:    []string{"Starlight Aura", "Teleportation", "Cosmic Wisdom"},
		},
		{
			ID: 4, Name: "Mystic Moon", Price: 14999, Category: models.CategoryCelestial, Image: "🌙",
			Description: "Silver-maned beauty with lunar powers. Guards dreams and prevents nightmares",
			Features:    []string{"Dream Protection", "Moonbeam", "Peaceful Presence"},
		},
		{
			ID: 5, Name: "Fire Phoenix", Price: 18999, Category: models.CategoryRare, Image: "🔥",
			Description: "Rare fire unicorn with phoenix-like abilities. Can be reborn from flames",
			Features:    []string{"Fire Immunity", "Rebirth", "Heat Generation"},
		},
		{
			ID: 6, Name: "Crystal Princess", Price: 11999, Category: models.CategoryClassic, Image: "💎",
			Description: "Adorned with magical crystals. Her mane sparkles like diamonds",
			Features:    []string{"Crystal Magic", "Healing Powers", "Royal Lineage"},
		},
		{
			ID: 7, Name: "Thunder Strike", Price: 16999, Category: models.CategoryRare, Image: "⚡",
			Description: "Commands thunder and lightning. Protects against dark forces",
			Features:    []string{"Lightning Control", "Storm Summoning", "Electric Speed"},
		},
		{
			ID: 8, Name: "Bubble Bliss", Price: 10999, Category: models.CategoryRainbow, Image: "🫧",
			Description: "Creates magical bubbles that carry joy and laughter. Perfect for children",
			Features:    []string{"Bubble Magic", "Joy Aura", "Gentle Nature"},
		},
		{
			ID: 9, Name: "Cherry Blossom", Price: 13999, Category: models.CategoryRainbow, Image: "🌸",
			Description: "Spring unicorn that makes flowers bloom. Brings new life wherever she walks",
			Features:    []string{"Flower Growth", "Spring Magic", "Healing Touch"},
		},
	}
}

// FilterByCategory returns the products in category. "all" or an empty
// category keeps everything.
func FilterByCategory(products []models.Product, category models.Category) []models.Product {
	if category == "" || category == models.CategoryAll {
		return products
	}

	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// LoadSeedFile reads a YAML product list
func LoadSeedFile(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, p := range sf.Products {
		if p.Name == "" {
			return nil, fmt.Errorf("product %d: name is required", i+1)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q: price must not be negative", p.Name)
		}
		if !p.Category.IsValid() {
			return nil, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
	}

	return sf.Products, nil
}

// seedFile represents the YAML structure of a catalog seed file
type seedFile struct {
	Products []models.Product `yaml:"products"`
}
