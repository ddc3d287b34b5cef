package listing

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/mockapi"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fixture struct {
	srv    *mockapi.Server
	seller market.UserSummary
	other  market.UserSummary
	mgr    *Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	srv := mockapi.New()
	seller := srv.SeedUser("sam", "sam@example.com", "pw")
	other := srv.SeedUser("bea", "bea@example.com", "pw")

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	client, err := market.NewClient(ts.URL, market.WithTokenSource(staticToken(srv.IssueToken(seller.ID))))
	require.NoError(t, err)

	return fixture{srv: srv, seller: seller, other: other, mgr: New(client, nil)}
}

func TestDraftValidate(t *testing.T) {
	full := Draft{Title: "Jacket", Price: 10, Category: "Women", Description: "barely worn"}
	require.NoError(t, full.Validate())

	tests := []struct {
		name  string
		draft Draft
		want  string
	}{
		{"empty", Draft{}, "title, a positive price, category, description required"},
		{"blank title", Draft{Title: "  ", Price: 10, Category: "Men", Description: "x"}, "title required"},
		{"zero price", Draft{Title: "x", Category: "Men", Description: "x"}, "a positive price required"},
		{"no description", Draft{Title: "x", Price: 1, Category: "Men"}, "description required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPublish_CreatesListing(t *testing.T) {
	f := newFixture(t)

	p, err := f.mgr.Publish(context.Background(), Draft{
		Title:       "  Wool coat ",
		Description: "Warm",
		Price:       80,
		Category:    "Women",
		Condition:   "good",
	})
	require.NoError(t, err)
	assert.Equal(t, "Wool coat", p.Title)
	assert.Equal(t, f.seller.ID, p.Seller.ID)
	assert.Equal(t, "active", p.Status)
}

func TestPublish_InvalidDraftSendsNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Publish(context.Background(), Draft{Title: "coat"})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestEdit_MergesPatchOverServerCopy(t *testing.T) {
	f := newFixture(t)
	seeded := f.srv.SeedProduct(f.seller.ID, market.ProductInput{
		Title: "Boots", Description: "Leather", Price: 60, Category: "Men", Brand: "Dr. Martens",
	})

	price := 45.0
	p, err := f.mgr.Edit(context.Background(), seeded.ID, Patch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 45.0, p.Price)
	assert.Equal(t, "Boots", p.Title)
	assert.Equal(t, "Dr. Martens", p.Brand, "untouched fields keep their server value")

	_, err = f.mgr.Edit(context.Background(), seeded.ID, Patch{})
	require.ErrorIs(t, err, ErrInvalid)

	zero := 0.0
	_, err = f.mgr.Edit(context.Background(), seeded.ID, Patch{Price: &zero})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestEdit_SomeoneElsesListing(t *testing.T) {
	f := newFixture(t)
	theirs := f.srv.SeedProduct(f.other.ID, market.ProductInput{
		Title: "Scarf", Description: "Wool", Price: 15, Category: "Women",
	})

	title := "Mine now"
	_, err := f.mgr.Edit(context.Background(), theirs.ID, Patch{Title: &title})
	require.Error(t, err)
	assert.Equal(t, market.KindForbidden, market.KindOf(err))
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	seeded := f.srv.SeedProduct(f.seller.ID, market.ProductInput{Title: "Hat", Price: 5})

	require.NoError(t, f.mgr.Withdraw(context.Background(), seeded.ID))
	err := f.mgr.Withdraw(context.Background(), seeded.ID)
	require.Error(t, err)
	assert.True(t, market.IsNotFound(err))

	require.ErrorIs(t, f.mgr.Withdraw(context.Background(), " "), ErrInvalid)
}
