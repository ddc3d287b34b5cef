// Package listing publishes, edits and withdraws the signed-in user's own
// listings.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

// ErrInvalid wraps every validation failure of a draft.
var ErrInvalid = errors.New("invalid listing")

// Draft is a listing as entered by the seller.
type Draft struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Brand       string
	Size        string
	Images      []string
}

// Validate checks the fields the marketplace requires before publishing:
// title, price, category and description.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if d.Price <= 0 {
		missing = append(missing, "a positive price")
	}
	if strings.TrimSpace(d.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

func (d Draft) input() market.ProductInput {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return market.ProductInput{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Price:       d.Price,
		Images:      images,
		Category:    strings.TrimSpace(d.Category),
		Condition:   strings.TrimSpace(d.Condition),
		Brand:       strings.TrimSpace(d.Brand),
		Size:        strings.TrimSpace(d.Size),
	}
}

func draftOf(p market.Product) Draft {
	return Draft{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Condition:   p.Condition,
		Brand:       p.Brand,
		Size:        p.Size,
		Images:      p.Images,
	}
}

// Patch holds the fields to change on an existing listing. Nil fields are
// left as they are.
type Patch struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Condition   *string
	Brand       *string
	Size        *string
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p == (Patch{})
}

func (p Patch) apply(d Draft) Draft {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.Title, p.Title)
	set(&d.Description, p.Description)
	set(&d.Category, p.Category)
	set(&d.Condition, p.Condition)
	set(&d.Brand, p.Brand)
	set(&d.Size, p.Size)
	if p.Price != nil {
		d.Price = *p.Price
	}
	return d
}

// Manager talks to the listing endpoints.
type Manager struct {
	api    market.Listings
	logger *slog.Logger
}

// New returns a Manager. A nil logger uses slog.Default.
func New(api market.Listings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, logger: logger}
}

// Publish validates d and creates the listing.
func (m *Manager) Publish(ctx context.Context, d Draft) (*market.Product, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	p, err := m.api.CreateProduct(ctx, d.input())
	if err != nil {
		return nil, fmt.Errorf("publish listing: %w", err)
	}
	m.logger.Info("listing published", "product", p.ID, "title", p.Title)
	return p, nil
}

// Edit applies patch on top of the server's current copy of id. The merged
// listing must still be valid.
func (m *Manager) Edit(ctx context.Context, id string, patch Patch) (*market.Product, error) {
	if patch.IsZero() {
		return nil, fmt.Errorf("%w: nothing to change", ErrInvalid)
	}
	current, err := m.api.Product(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	d := patch.apply(draftOf(*current))
	if err := d.Validate(); err != nil {
		return nil, err
	}
	p, err := m.api.UpdateProduct(ctx, id, d.input())
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	m.logger.Info("listing updated", "product", id)
	return p, nil
}

// Withdraw deletes the listing.
func (m *Manager) Withdraw(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: listing id required", ErrInvalid)
	}
	if err := m.api.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	m.logger.Info("listing withdrawn", "product", id)
	return nil
}
