// Package catalog loads the immutable product catalog. Prices are NPR;
// stock values here are catalog defaults that seed the stock ledger on
// first run.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

//go:embed products.yaml
var embeddedCatalog []byte

// ErrNotFound is returned when a product or plan id has no catalog entry.
var ErrNotFound = errors.New("catalog: not found")

type catalogDocument struct {
	Products []productDocument `yaml:"products"`
}

type productDocument struct {
	ID                string           `yaml:"id"`
	Name              string           `yaml:"name"`
	Category          string           `yaml:"category"`
	Delivery          string           `yaml:"delivery"`
	Image             string           `yaml:"image"`
	Description       string           `yaml:"description"`
	RequiresAccountID bool             `yaml:"requiresAccountId"`
	Plans             []planDocument   `yaml:"plans"`
	Reviews           []reviewDocument `yaml:"reviews"`
}

type planDocument struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Price    int      `yaml:"price"`
	Features []string `yaml:"features"`
	Validity string   `yaml:"validity"`
	Stock    int      `yaml:"stock"`
}

type reviewDocument struct {
	ID      string `yaml:"id"`
	User    string `yaml:"user"`
	Rating  int    `yaml:"rating"`
	Comment string `yaml:"comment"`
	Date    string `yaml:"date"`
}

// Catalog is an in-memory, read-only view of the product list.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return parse(embeddedCatalog)
}

// LoadFile parses a catalog from disk, used when an operator overrides the
// embedded one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(doc.Products) == 0 {
		return nil, errors.New("catalog: no products defined")
	}
	c := &Catalog{
		products: make([]domain.Product, 0, len(doc.Products)),
		byID:     make(map[string]int, len(doc.Products)),
	}
	planIDs := make(map[string]string)
	for _, pd := range doc.Products {
		product, err := pd.toDomain()
		if err != nil {
			return nil, err
		}
		if _, exists := c.byID[product.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate product id %q", product.ID)
		}
		for _, plan := range product.Plans {
			if owner, exists := planIDs[plan.ID]; exists {
				return nil, fmt.Errorf("catalog: plan id %q reused by products %q and %q", plan.ID, owner, product.ID)
			}
			planIDs[plan.ID] = product.ID
		}
		c.byID[product.ID] = len(c.products)
		c.products = append(c.products, product)
	}
	return c, nil
}

func (pd productDocument) toDomain() (domain.Product, error) {
	if strings.TrimSpace(pd.ID) == "" {
		return domain.Product{}, errors.New("catalog: product missing id")
	}
	if strings.TrimSpace(pd.Name) == "" {
		return domain.Product{}, fmt.Errorf("catalog: product %q missing name", pd.ID)
	}
	if len(pd.Plans) == 0 {
		return domain.Product{}, fmt.Errorf("catalog: product %q has no plans", pd.ID)
	}
	product := domain.Product{
		ID:                pd.ID,
		Name:              pd.Name,
		Category:          pd.Category,
		Delivery:          pd.Delivery,
		Image:             pd.Image,
		Description:       pd.Description,
		RequiresAccountID: pd.RequiresAccountID,
		Plans:             make([]domain.Plan, 0, len(pd.Plans)),
		Reviews:           make([]domain.Review, 0, len(pd.Reviews)),
	}
	for _, pl := range pd.Plans {
		if strings.TrimSpace(pl.ID) == "" {
			return domain.Product{}, fmt.Errorf("catalog: product %q has a plan without id", pd.ID)
		}
		if pl.Price < 0 {
			return domain.Product{}, fmt.Errorf("catalog: plan %q has negative price", pl.ID)
		}
		if pl.Stock < 0 {
			return domain.Product{}, fmt.Errorf("catalog: plan %q has negative stock", pl.ID)
		}
		product.Plans = append(product.Plans, domain.Plan{
			ID:       pl.ID,
			Name:     pl.Name,
			Price:    pl.Price,
			Features: pl.Features,
			Validity: pl.Validity,
			Stock:    pl.Stock,
		})
	}
	for _, rv := range pd.Reviews {
		product.Reviews = append(product.Reviews, domain.Review{
			ID:      rv.ID,
			User:    rv.User,
			Rating:  rv.Rating,
			Comment: rv.Comment,
			Date:    rv.Date,
		})
	}
	return product, nil
}

// Products returns all products in catalog order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product returns the product with the given id.
func (c *Catalog) Product(id string) (domain.Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: product %q", ErrNotFound, id)
	}
	return c.products[idx], nil
}

// Plan resolves a plan id to its product and plan.
func (c *Catalog) Plan(productID, planID string) (domain.Product, domain.Plan, error) {
	product, err := c.Product(productID)
	if err != nil {
		return domain.Product{}, domain.Plan{}, err
	}
	plan, ok := product.Plan(planID)
	if !ok {
		return domain.Product{}, domain.Plan{}, fmt.Errorf("%w: plan %q in product %q", ErrNotFound, planID, productID)
	}
	return product, plan, nil
}

// DefaultStockLevels returns the catalog default stock per plan id, used to
// seed missing entries in the stock ledger.
func (c *Catalog) DefaultStockLevels() map[string]int {
	levels := make(map[string]int)
	for _, product := range c.products {
		for _, plan := range product.Plans {
			levels[plan.ID] = plan.Stock
		}
	}
	return levels
}
