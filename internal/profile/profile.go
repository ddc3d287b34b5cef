// Package profile loads a user's public profile with their listings and
// applies follow toggles optimistically, the same way catalog handles
// favorites.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

var (
	// ErrNotLoaded is returned by operations that need a loaded profile.
	ErrNotLoaded = errors.New("profile not loaded")
	// ErrSelfFollow is returned when the signed-in user tries to follow themselves.
	ErrSelfFollow = errors.New("you cannot follow yourself")
	// ErrNotOwner is returned when editing a profile other than your own.
	ErrNotOwner = errors.New("you can only edit your own profile")
)

// Listing statuses understood by the API.
const (
	StatusActive = "active"
	StatusSold   = "sold"
)

const followField = "isFollowing"

// Profile is one user's page: the profile record and their listings.
type Profile struct {
	api    market.People
	ctrl   *optimistic.Controller
	logger *slog.Logger
	selfID string

	mu     sync.Mutex
	userID string
	status string
	follow *followDelta

	user     *state.Collection[market.User]
	listings *state.Collection[market.Product]
}

// followDelta is a follow toggle that a profile fetch may not reflect yet.
type followDelta struct {
	userID    string
	want      bool
	confirmed bool
	at        state.Ticket
}

// Option configures a Profile.
type Option func(*Profile)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Profile) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSelf identifies the signed-in user.
func WithSelf(userID string) Option {
	return func(p *Profile) { p.selfID = userID }
}

// New returns an empty Profile. A nil ctrl gets a default controller.
func New(api market.People, ctrl *optimistic.Controller, opts ...Option) *Profile {
	p := &Profile{
		api:      api,
		ctrl:     ctrl,
		logger:   slog.Default(),
		status:   StatusActive,
		user:     state.NewCollection[market.User](nil),
		listings: state.NewCollection[market.Product](nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ctrl == nil {
		p.ctrl = optimistic.New(optimistic.WithLogger(p.logger))
	}
	return p
}

// FollowKey is the optimistic key guarding the follow flag of userID.
func FollowKey(userID string) optimistic.Key {
	return optimistic.Key{Entity: userID, Field: followField}
}

// UserID returns the id of the loaded user.
func (p *Profile) UserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID
}

// Status returns the listing status filter.
func (p *Profile) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// IsSelf reports whether the loaded profile belongs to the signed-in user.
func (p *Profile) IsSelf() bool {
	id := p.UserID()
	return id != "" && id == p.selfID
}

// User returns the loaded profile.
func (p *Profile) User() (market.User, bool) {
	_, _, coll, _ := p.collections()
	snap := coll.Snapshot()
	if len(snap.Items) == 0 {
		return market.User{}, false
	}
	return snap.Items[0], true
}

// Snapshot returns the profile record snapshot.
func (p *Profile) Snapshot() state.Snapshot[market.User] {
	_, _, coll, _ := p.collections()
	return coll.Snapshot()
}

// Listings returns the listing snapshot for the current status filter.
func (p *Profile) Listings() state.Snapshot[market.Product] {
	_, _, _, coll := p.collections()
	return coll.Snapshot()
}

// Load fetches userID's profile and their listings with the given status.
// An empty status keeps the current filter.
func (p *Profile) Load(ctx context.Context, userID, status string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id required")
	}
	p.mu.Lock()
	if p.userID != userID {
		p.user = state.NewCollection[market.User](nil)
		p.listings = state.NewCollection[market.Product](nil)
	}
	p.userID = userID
	if status != "" {
		p.status = status
	}
	p.mu.Unlock()

	if err := p.loadUser(ctx); err != nil {
		return err
	}
	return p.loadListings(ctx)
}

// Reload refetches the loaded profile.
func (p *Profile) Reload(ctx context.Context) error {
	id := p.UserID()
	if id == "" {
		return ErrNotLoaded
	}
	return p.Load(ctx, id, "")
}

// SetStatus switches the listing filter and refetches the listings.
func (p *Profile) SetStatus(ctx context.Context, status string) error {
	if p.UserID() == "" {
		return ErrNotLoaded
	}
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	return p.loadListings(ctx)
}

func (p *Profile) collections() (string, string, *state.Collection[market.User], *state.Collection[market.Product]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID, p.status, p.user, p.listings
}

func (p *Profile) loadUser(ctx context.Context) error {
	id, _, coll, _ := p.collections()
	ticket := coll.Issue()
	u, err := p.api.User(ctx, id)
	if err != nil {
		coll.FailFrom(ticket, err)
		return fmt.Errorf("load profile: %w", err)
	}
	p.landUser(coll, ticket, *u)
	return nil
}

func (p *Profile) loadListings(ctx context.Context) error {
	id, status, _, coll := p.collections()
	ticket := coll.Issue()
	items, err := p.api.UserProducts(ctx, id, status)
	if err != nil {
		coll.FailFrom(ticket, err)
		return fmt.Errorf("load listings: %w", err)
	}
	coll.ReplaceFrom(ticket, items)
	return nil
}

// landUser stores a fetched profile, keeping a follow toggle the fetch may
// have missed.
func (p *Profile) landUser(coll *state.Collection[market.User], ticket state.Ticket, u market.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if d := p.follow; d != nil && d.userID == u.ID {
		switch {
		case d.confirmed && ticket > d.at:
			p.follow = nil
		default:
			applyFollow(&u, d.want)
		}
	}
	coll.ReplaceFrom(ticket, []market.User{u})
}

func applyFollow(u *market.User, want bool) {
	if u.IsFollowing == want {
		return
	}
	u.IsFollowing = want
	if want {
		u.FollowerCount++
	} else if u.FollowerCount > 0 {
		u.FollowerCount--
	}
}

// FollowPhase reports the reconciliation phase of the follow flag.
func (p *Profile) FollowPhase() optimistic.Phase {
	id := p.UserID()
	if id == "" {
		return optimistic.Clean
	}
	return p.ctrl.Phase(FollowKey(id))
}

// BeginToggleFollow flips the follow flag and follower count locally and
// returns the in-flight remote call. The caller must Commit it.
func (p *Profile) BeginToggleFollow(ctx context.Context) (*optimistic.Inflight, error) {
	u, ok := p.User()
	if !ok {
		return nil, ErrNotLoaded
	}
	if u.ID == p.selfID {
		return nil, ErrSelfFollow
	}

	var (
		wasFollowing bool
		delta        *followDelta
	)
	_, _, coll, _ := p.collections()
	mutation := optimistic.Mutation{
		Apply: func() {
			if cur, ok := p.User(); ok {
				wasFollowing = cur.IsFollowing
			}
			delta = &followDelta{userID: u.ID, want: !wasFollowing}
			p.mu.Lock()
			p.follow = delta
			p.mu.Unlock()
			coll.Mutate(func(items []market.User) []market.User {
				for i := range items {
					applyFollow(&items[i], !wasFollowing)
				}
				return items
			})
		},
		Remote: func(ctx context.Context) error {
			var err error
			if wasFollowing {
				err = p.api.Unfollow(ctx, u.ID)
			} else {
				err = p.api.Follow(ctx, u.ID)
			}
			if err == nil {
				p.mu.Lock()
				if p.follow == delta {
					delta.confirmed = true
					delta.at = coll.Issued()
				}
				p.mu.Unlock()
			}
			return err
		},
		Reconcile: func(ctx context.Context) error {
			p.mu.Lock()
			if p.follow == delta {
				p.follow = nil
			}
			p.mu.Unlock()
			return p.reconcile(ctx, coll, u.ID)
		},
	}
	return p.ctrl.Begin(ctx, FollowKey(u.ID), mutation)
}

// ToggleFollow flips the follow flag and waits for the server.
func (p *Profile) ToggleFollow(ctx context.Context) (optimistic.Outcome, error) {
	inflight, err := p.BeginToggleFollow(ctx)
	if err != nil {
		return 0, err
	}
	return inflight.Commit(ctx)
}

// ReconcileFollow refetches a profile whose last toggle left it Dirty.
func (p *Profile) ReconcileFollow(ctx context.Context) error {
	id := p.UserID()
	if id == "" {
		return ErrNotLoaded
	}
	return p.ctrl.Reconcile(ctx, FollowKey(id))
}

func (p *Profile) reconcile(ctx context.Context, coll *state.Collection[market.User], userID string) error {
	ticket := coll.Issue()
	u, err := p.api.User(ctx, userID)
	if err != nil {
		return err
	}
	coll.ReplaceFrom(ticket, []market.User{*u})
	return nil
}

// Followers lists who follows the loaded user.
func (p *Profile) Followers(ctx context.Context) ([]market.UserSummary, error) {
	id := p.UserID()
	if id == "" {
		return nil, ErrNotLoaded
	}
	return p.api.Followers(ctx, id)
}

// Following lists who the loaded user follows.
func (p *Profile) Following(ctx context.Context) ([]market.UserSummary, error) {
	id := p.UserID()
	if id == "" {
		return nil, ErrNotLoaded
	}
	return p.api.Following(ctx, id)
}

// Update edits the signed-in user's own profile. Blank fields are left as
// they are.
func (p *Profile) Update(ctx context.Context, in market.ProfileInput) (market.User, error) {
	id := p.UserID()
	if id == "" {
		return market.User{}, ErrNotLoaded
	}
	if !p.IsSelf() {
		return market.User{}, ErrNotOwner
	}
	in.Username = strings.TrimSpace(in.Username)
	if in == (market.ProfileInput{}) {
		return market.User{}, fmt.Errorf("nothing to update")
	}

	u, err := p.api.UpdateProfile(ctx, id, in)
	if err != nil {
		return market.User{}, fmt.Errorf("update profile: %w", err)
	}
	_, _, coll, _ := p.collections()
	coll.ReplaceFrom(coll.Issue(), []market.User{*u})
	p.logger.Info("profile updated", "user", id)
	return *u, nil
}
