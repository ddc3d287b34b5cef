// Package catalog holds the product listings shown by the client and applies
// favorite toggles optimistically.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

// ErrUnknownProduct is returned when a toggle targets a product that is not
// in any loaded list.
var ErrUnknownProduct = errors.New("unknown product")

const favoriteField = "isFavorite"

// Catalog owns the listing and favorites snapshots.
type Catalog struct {
	api       market.Catalog
	ctrl      *optimistic.Controller
	logger    *slog.Logger
	products  *state.Collection[market.Product]
	favorites *state.Collection[market.Product]

	mu     sync.Mutex
	deltas map[string]*favoriteDelta
}

// favoriteDelta is a toggle that a listing fetch may not reflect yet. While
// the remote call is in flight every fetch gets it re-applied. Once confirmed
// only fetches that started before the confirmation do.
type favoriteDelta struct {
	want      bool
	confirmed bool
	// Tickets issued by each collection at confirmation time.
	productsAt  state.Ticket
	favoritesAt state.Ticket
	productsOK  bool
	favoritesOK bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Catalog backed by api. A nil ctrl gets a default controller.
func New(api market.Catalog, ctrl *optimistic.Controller, opts ...Option) *Catalog {
	c := &Catalog{
		api:       api,
		ctrl:      ctrl,
		logger:    slog.Default(),
		products:  state.NewCollection[market.Product](nil),
		favorites: state.NewCollection[market.Product](nil),
		deltas:    make(map[string]*favoriteDelta),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ctrl == nil {
		c.ctrl = optimistic.New(optimistic.WithLogger(c.logger))
	}
	return c
}

// Products returns the current listing snapshot.
func (c *Catalog) Products() state.Snapshot[market.Product] {
	return c.products.Snapshot()
}

// FavoriteList returns the current favorites snapshot.
func (c *Catalog) FavoriteList() state.Snapshot[market.Product] {
	return c.favorites.Snapshot()
}

// Refresh replaces the listing with the products matching query. A toggle
// still in flight stays applied on top of the fetched listing.
func (c *Catalog) Refresh(ctx context.Context, query market.ProductQuery) error {
	ticket := c.products.Issue()
	items, err := c.api.Products(ctx, query)
	if err != nil {
		c.products.FailFrom(ticket, err)
		return err
	}
	c.land(c.products, ticket, items)
	return nil
}

// Favorites replaces the favorites list with the server's.
func (c *Catalog) Favorites(ctx context.Context) error {
	ticket := c.favorites.Issue()
	items, err := c.api.Favorites(ctx)
	if err != nil {
		c.favorites.FailFrom(ticket, err)
		return err
	}
	for i := range items {
		items[i].IsFavorite = true
	}
	c.land(c.favorites, ticket, items)
	return nil
}

// land stores a fetched list after re-applying the favorite toggles the
// server may not have seen when the fetch started.
func (c *Catalog) land(coll *state.Collection[market.Product], ticket state.Ticket, items []market.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	isProducts := coll == c.products
	for id, d := range c.deltas {
		at, ok := d.favoritesAt, &d.favoritesOK
		if isProducts {
			at, ok = d.productsAt, &d.productsOK
		}
		if d.confirmed && ticket > at {
			*ok = true
			if d.productsOK && d.favoritesOK {
				delete(c.deltas, id)
			}
			continue
		}
		for i := range items {
			if items[i].ID == id {
				items[i].IsFavorite = d.want
			}
		}
	}
	coll.ReplaceFrom(ticket, items)
}

func (c *Catalog) trackFavorite(productID string, want bool) *favoriteDelta {
	d := &favoriteDelta{want: want}
	c.mu.Lock()
	c.deltas[productID] = d
	c.mu.Unlock()
	return d
}

func (c *Catalog) confirmFavorite(productID string, d *favoriteDelta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deltas[productID] != d {
		return
	}
	d.confirmed = true
	d.productsAt = c.products.Issued()
	d.favoritesAt = c.favorites.Issued()
}

func (c *Catalog) dropFavorite(productID string, d *favoriteDelta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deltas[productID] == d {
		delete(c.deltas, productID)
	}
}

// Product returns the locally known copy of id.
func (c *Catalog) Product(id string) (market.Product, bool) {
	match := func(p market.Product) bool { return p.ID == id }
	if p, ok := c.products.Find(match); ok {
		return p, true
	}
	return c.favorites.Find(match)
}

// FavoriteKey is the optimistic key guarding a product's favorite flag.
func FavoriteKey(productID string) optimistic.Key {
	return optimistic.Key{Entity: productID, Field: favoriteField}
}

// BeginToggleFavorite flips the product's favorite flag locally and returns
// the in-flight remote call. The caller must Commit it. A product whose last
// toggle could not be reconciled is refetched first; callers on a UI thread
// should run ReconcileFavorite beforehand when Phase reports Dirty.
func (c *Catalog) BeginToggleFavorite(ctx context.Context, productID string) (*optimistic.Inflight, error) {
	if _, ok := c.Product(productID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	var (
		wasFavorite bool
		delta       *favoriteDelta
	)
	mutation := optimistic.Mutation{
		Apply: func() {
			if p, ok := c.Product(productID); ok {
				wasFavorite = p.IsFavorite
			}
			delta = c.trackFavorite(productID, !wasFavorite)
			c.setFavorite(productID, !wasFavorite)
		},
		Remote: func(ctx context.Context) error {
			var err error
			if wasFavorite {
				err = c.api.RemoveFavorite(ctx, productID)
			} else {
				err = c.api.AddFavorite(ctx, productID)
			}
			if err == nil {
				c.confirmFavorite(productID, delta)
			}
			return err
		},
		Reconcile: func(ctx context.Context) error {
			c.dropFavorite(productID, delta)
			return c.reconcile(ctx, productID)
		},
	}
	return c.ctrl.Begin(ctx, FavoriteKey(productID), mutation)
}

// ReconcileFavorite refetches a product whose last toggle left it Dirty. It
// does nothing for a settled product.
func (c *Catalog) ReconcileFavorite(ctx context.Context, productID string) error {
	return c.ctrl.Reconcile(ctx, FavoriteKey(productID))
}

// ToggleFavorite flips the favorite flag and waits for the server to confirm.
// On failure the product is refetched and the remote error is returned.
func (c *Catalog) ToggleFavorite(ctx context.Context, productID string) (optimistic.Outcome, error) {
	inflight, err := c.BeginToggleFavorite(ctx, productID)
	if err != nil {
		return 0, err
	}
	return inflight.Commit(ctx)
}

// Phase reports the reconciliation phase of a product's favorite flag.
func (c *Catalog) Phase(productID string) optimistic.Phase {
	return c.ctrl.Phase(FavoriteKey(productID))
}

func (c *Catalog) setFavorite(productID string, favorite bool) {
	update := func(items []market.Product) []market.Product {
		for i := range items {
			if items[i].ID == productID {
				items[i].IsFavorite = favorite
			}
		}
		return items
	}
	c.products.Mutate(update)
	c.favorites.Mutate(update)
}

// reconcile replaces the local product with the server's copy, or drops it
// when the server no longer has it.
func (c *Catalog) reconcile(ctx context.Context, productID string) error {
	fresh, err := c.api.Product(ctx, productID)
	if market.IsNotFound(err) {
		c.logger.Info("product gone during reconcile", "product", productID)
		drop := func(items []market.Product) []market.Product {
			out := items[:0]
			for _, p := range items {
				if p.ID != productID {
					out = append(out, p)
				}
			}
			return out
		}
		c.products.Mutate(drop)
		c.favorites.Mutate(drop)
		return nil
	}
	if err != nil {
		return err
	}

	replace := func(items []market.Product) []market.Product {
		for i := range items {
			if items[i].ID == productID {
				items[i] = *fresh
			}
		}
		return items
	}
	c.products.Mutate(replace)
	c.favorites.Mutate(replace)
	return nil
}
