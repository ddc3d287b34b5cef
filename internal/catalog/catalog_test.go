package catalog

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
)

type fakeAPI struct {
	mu        sync.Mutex
	products  map[string]market.Product
	favErr    error
	fetchErr  error
	fetches   int
	adds      int
	removes   int
	gate      chan struct{}
	favorites []market.Product

	// listed receives once a Products call has read the server state;
	// listGate then holds the response back.
	listed   chan struct{}
	listGate chan struct{}
}

func newFakeAPI(products ...market.Product) *fakeAPI {
	f := &fakeAPI{products: make(map[string]market.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeAPI) Products(ctx context.Context, q market.ProductQuery) ([]market.Product, error) {
	f.mu.Lock()
	out := make([]market.Product, 0, len(f.products))
	for _, id := range []string{"P1", "P2", "P3"} {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	listed, gate := f.listed, f.listGate
	f.mu.Unlock()

	if listed != nil {
		listed <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return out, nil
}

func (f *fakeAPI) Product(ctx context.Context, id string) (*market.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, &market.Error{Op: "get product", Kind: market.KindNotFound, Status: http.StatusNotFound}
	}
	return &p, nil
}

func (f *fakeAPI) Favorites(ctx context.Context) ([]market.Product, error) {
	return f.favorites, nil
}

func (f *fakeAPI) AddFavorite(ctx context.Context, id string) error {
	return f.setFavorite(id, true, &f.adds)
}

func (f *fakeAPI) RemoveFavorite(ctx context.Context, id string) error {
	return f.setFavorite(id, false, &f.removes)
}

func (f *fakeAPI) setFavorite(id string, fav bool, counter *int) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	*counter++
	if f.favErr != nil {
		return f.favErr
	}
	p := f.products[id]
	p.IsFavorite = fav
	f.products[id] = p
	return nil
}

func loaded(t *testing.T, api *fakeAPI) *Catalog {
	t.Helper()
	c := New(api, optimistic.New())
	require.NoError(t, c.Refresh(context.Background(), market.ProductQuery{}))
	return c
}

func TestToggleFavorite_SuccessKeepsLocalValue(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1", Title: "Jacket"})
	c := loaded(t, api)

	out, err := c.ToggleFavorite(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, optimistic.Confirmed, out)

	p, ok := c.Product("P1")
	require.True(t, ok)
	assert.True(t, p.IsFavorite)
	assert.Equal(t, 1, api.adds)
	assert.Zero(t, api.fetches, "success must not refetch")
}

func TestToggleFavorite_FailureRestoresServerValue(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1", Title: "Jacket"})
	api.favErr = &market.Error{Op: "add favorite", Kind: market.KindServer, Status: 500}
	c := loaded(t, api)

	out, err := c.ToggleFavorite(context.Background(), "P1")
	require.Error(t, err)
	assert.Equal(t, market.KindServer, market.KindOf(err))
	assert.Equal(t, optimistic.Reconciled, out)

	p, _ := c.Product("P1")
	assert.False(t, p.IsFavorite, "local value should match the refetched server value")
	assert.Equal(t, 1, api.fetches)
	assert.Equal(t, optimistic.Clean, c.Phase("P1"))
}

func TestToggleFavorite_UnfavoritesWhenAlreadyFavorite(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1", IsFavorite: true})
	c := loaded(t, api)

	_, err := c.ToggleFavorite(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.removes)
	assert.Zero(t, api.adds)
	p, _ := c.Product("P1")
	assert.False(t, p.IsFavorite)
}

func TestBeginToggleFavorite_FlipsBeforeRemoteAndRejectsSecond(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1"})
	api.gate = make(chan struct{})
	c := loaded(t, api)

	inflight, err := c.BeginToggleFavorite(context.Background(), "P1")
	require.NoError(t, err)
	p, _ := c.Product("P1")
	assert.True(t, p.IsFavorite, "local flag flips before the remote call")

	_, err = c.BeginToggleFavorite(context.Background(), "P1")
	require.ErrorIs(t, err, optimistic.ErrBusy)

	close(api.gate)
	_, err = inflight.Commit(context.Background())
	require.NoError(t, err)
	p, _ = c.Product("P1")
	assert.True(t, p.IsFavorite)
}

func TestToggleFavorite_UnknownProduct(t *testing.T) {
	c := loaded(t, newFakeAPI())
	_, err := c.ToggleFavorite(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUnknownProduct)
}

func TestToggleFavorite_ReconcileDropsDeletedProduct(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1"}, market.Product{ID: "P2"})
	c := loaded(t, api)

	api.mu.Lock()
	api.favErr = &market.Error{Op: "add favorite", Kind: market.KindNotFound, Status: 404}
	delete(api.products, "P1")
	api.mu.Unlock()

	out, err := c.ToggleFavorite(context.Background(), "P1")
	require.Error(t, err)
	assert.Equal(t, optimistic.Reconciled, out)
	_, ok := c.Product("P1")
	assert.False(t, ok)
	assert.Len(t, c.Products().Items, 1)
}

func TestToggleFavorite_UpdatesFavoritesList(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1", IsFavorite: true})
	api.favorites = []market.Product{{ID: "P1"}}
	c := New(api, nil)
	require.NoError(t, c.Favorites(context.Background()))

	require.True(t, c.FavoriteList().Items[0].IsFavorite)
	_, err := c.ToggleFavorite(context.Background(), "P1")
	require.NoError(t, err)
	assert.False(t, c.FavoriteList().Items[0].IsFavorite)
}

func TestRefresh_KeepsToggleThatIsStillInFlight(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1", Title: "Jacket"})
	api.gate = make(chan struct{})
	c := loaded(t, api)

	inflight, err := c.BeginToggleFavorite(context.Background(), "P1")
	require.NoError(t, err)

	// The server has not seen the toggle yet, so the listing still says false.
	require.NoError(t, c.Refresh(context.Background(), market.ProductQuery{}))
	p, _ := c.Product("P1")
	assert.True(t, p.IsFavorite, "refresh must not wipe the in-flight toggle")
	assert.Equal(t, optimistic.Pending, c.Phase("P1"))

	close(api.gate)
	out, err := inflight.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, optimistic.Confirmed, out)

	p, _ = c.Product("P1")
	assert.True(t, p.IsFavorite)
	assert.Equal(t, optimistic.Clean, c.Phase("P1"))
}

func TestRefresh_StartedBeforeConfirmationKeepsToggle(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1", Title: "Jacket"})
	c := loaded(t, api)

	api.mu.Lock()
	api.listed = make(chan struct{}, 1)
	api.listGate = make(chan struct{})
	api.mu.Unlock()

	inflight, err := c.BeginToggleFavorite(context.Background(), "P1")
	require.NoError(t, err)

	refreshed := make(chan error, 1)
	go func() { refreshed <- c.Refresh(context.Background(), market.ProductQuery{}) }()
	<-api.listed

	out, err := inflight.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, optimistic.Confirmed, out)

	close(api.listGate)
	require.NoError(t, <-refreshed)
	p, _ := c.Product("P1")
	assert.True(t, p.IsFavorite, "a listing read before the confirmation is stale for this product")

	api.mu.Lock()
	api.listed, api.listGate = nil, nil
	api.products["P1"] = market.Product{ID: "P1", Title: "Jacket"}
	api.mu.Unlock()

	// A later fetch is authoritative again.
	require.NoError(t, c.Refresh(context.Background(), market.ProductQuery{}))
	p, _ = c.Product("P1")
	assert.False(t, p.IsFavorite)
}

func TestRefresh_FailedToggleIsNotReapplied(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1"})
	api.favErr = &market.Error{Op: "add favorite", Kind: market.KindServer, Status: 500}
	c := loaded(t, api)

	_, err := c.ToggleFavorite(context.Background(), "P1")
	require.Error(t, err)

	require.NoError(t, c.Refresh(context.Background(), market.ProductQuery{}))
	p, _ := c.Product("P1")
	assert.False(t, p.IsFavorite)
}

func TestReconcileFavorite_SettlesDirtyProduct(t *testing.T) {
	api := newFakeAPI(market.Product{ID: "P1"})
	api.favErr = &market.Error{Op: "add favorite", Kind: market.KindServer, Status: 500}
	api.fetchErr = &market.Error{Op: "get product", Kind: market.KindTransport}
	c := loaded(t, api)

	out, err := c.ToggleFavorite(context.Background(), "P1")
	require.Error(t, err)
	assert.Equal(t, optimistic.Unreconciled, out)
	assert.Equal(t, optimistic.Dirty, c.Phase("P1"))

	require.Error(t, c.ReconcileFavorite(context.Background(), "P1"))
	assert.Equal(t, optimistic.Dirty, c.Phase("P1"))

	api.mu.Lock()
	api.fetchErr = nil
	api.mu.Unlock()

	require.NoError(t, c.ReconcileFavorite(context.Background(), "P1"))
	assert.Equal(t, optimistic.Clean, c.Phase("P1"))
	p, _ := c.Product("P1")
	assert.False(t, p.IsFavorite)

	require.NoError(t, c.ReconcileFavorite(context.Background(), "P1"), "clean product is a no-op")
}
