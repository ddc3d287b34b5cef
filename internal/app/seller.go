package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/listing"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
	"github.com/VolkanCARBUGA/VintedClone/internal/profile"
	"github.com/VolkanCARBUGA/VintedClone/internal/session"
)

// ProfileView is a user's page as printed by `vinted profile`.
type ProfileView struct {
	User      market.User
	Listings  []market.Product
	Followers []market.UserSummary
	Following []market.UserSummary
}

// ProfileRequest selects what ShowProfile loads.
type ProfileRequest struct {
	UserID        string // empty shows the signed-in user
	Status        string // listing filter, empty means active
	WithFollowers bool
	WithFollowing bool
}

// ThreadView is one conversation with its messages.
type ThreadView struct {
	Conversation market.Conversation
	Messages     []market.Message
}

// openSignedIn opens the environment and fails unless a session is saved.
func openSignedIn(opts Options) (*Env, session.Session, error) {
	env, err := Open(opts)
	if err != nil {
		return nil, session.Session{}, err
	}
	s, ok := env.Session.Current()
	if !ok {
		_ = env.Close()
		return nil, session.Session{}, fmt.Errorf("%w: run `vinted login` first", session.ErrNotSignedIn)
	}
	return env, s, nil
}

func (e *Env) profilePage(s session.Session) *profile.Profile {
	ctrl := optimistic.New(
		optimistic.WithTimeout(e.Config.MutationTimeout),
		optimistic.WithLogger(e.Logger),
	)
	return profile.New(e.Client, ctrl, profile.WithLogger(e.Logger), profile.WithSelf(s.User.ID))
}

// Sell publishes a new listing for the signed-in user.
func Sell(ctx context.Context, opts Options, d listing.Draft) (*market.Product, error) {
	env, _, err := openSignedIn(opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = env.Close() }()
	return listing.New(env.Client, env.Logger).Publish(ctx, d)
}

// EditListing changes the fields set in patch.
func EditListing(ctx context.Context, opts Options, id string, patch listing.Patch) (*market.Product, error) {
	env, _, err := openSignedIn(opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = env.Close() }()
	return listing.New(env.Client, env.Logger).Edit(ctx, id, patch)
}

// Delist removes one of the signed-in user's listings.
func Delist(ctx context.Context, opts Options, id string) error {
	env, _, err := openSignedIn(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	return listing.New(env.Client, env.Logger).Withdraw(ctx, id)
}

// ShowProfile loads a profile with its listings and, on request, its
// follower lists.
func ShowProfile(ctx context.Context, opts Options, req ProfileRequest) (ProfileView, error) {
	env, s, err := openSignedIn(opts)
	if err != nil {
		return ProfileView{}, err
	}
	defer func() { _ = env.Close() }()

	id := strings.TrimSpace(req.UserID)
	if id == "" {
		id = s.User.ID
	}
	p := env.profilePage(s)
	if err := p.Load(ctx, id, req.Status); err != nil {
		return ProfileView{}, err
	}

	u, _ := p.User()
	view := ProfileView{User: u, Listings: p.Listings().Items}
	if req.WithFollowers {
		if view.Followers, err = p.Followers(ctx); err != nil {
			return ProfileView{}, fmt.Errorf("load followers: %w", err)
		}
	}
	if req.WithFollowing {
		if view.Following, err = p.Following(ctx); err != nil {
			return ProfileView{}, fmt.Errorf("load following: %w", err)
		}
	}
	return view, nil
}

// SetFollow makes the signed-in user follow or unfollow userID. Nothing is
// sent when the server already agrees.
func SetFollow(ctx context.Context, opts Options, userID string, follow bool) (market.User, error) {
	env, s, err := openSignedIn(opts)
	if err != nil {
		return market.User{}, err
	}
	defer func() { _ = env.Close() }()

	p := env.profilePage(s)
	if err := p.Load(ctx, userID, ""); err != nil {
		return market.User{}, err
	}
	u, _ := p.User()
	if u.IsFollowing == follow {
		return u, nil
	}
	if _, err := p.ToggleFollow(ctx); err != nil {
		return market.User{}, err
	}
	u, _ = p.User()
	env.Logger.Info("follow changed", "user", userID, "following", u.IsFollowing)
	return u, nil
}

// UpdateProfile edits the signed-in user's profile.
func UpdateProfile(ctx context.Context, opts Options, in market.ProfileInput) (market.User, error) {
	env, s, err := openSignedIn(opts)
	if err != nil {
		return market.User{}, err
	}
	defer func() { _ = env.Close() }()

	p := env.profilePage(s)
	if err := p.Load(ctx, s.User.ID, ""); err != nil {
		return market.User{}, err
	}
	u, err := p.Update(ctx, in)
	if err != nil {
		return market.User{}, err
	}
	if u.Username != "" && u.Username != s.User.Username {
		if err := env.Session.Rename(u.Username); err != nil {
			env.Logger.Warn("save renamed session failed", "error", err)
		}
	}
	return u, nil
}

// ShowThread prints one conversation. A non-empty reply is sent first.
func ShowThread(ctx context.Context, opts Options, conversationID, reply string) (ThreadView, error) {
	env, s, err := openSignedIn(opts)
	if err != nil {
		return ThreadView{}, err
	}
	defer func() { _ = env.Close() }()

	th := chat.OpenThread(env.Client, conversationID, chat.WithLogger(env.Logger), chat.WithSelf(s.User.ID))
	if strings.TrimSpace(reply) != "" {
		if err := th.Send(ctx, reply); err != nil {
			return ThreadView{}, err
		}
	} else if err := th.Refresh(ctx); err != nil {
		return ThreadView{}, fmt.Errorf("load messages: %w", err)
	}

	if err := th.MarkRead(ctx); err != nil {
		env.Logger.Warn("mark read failed", "conversation", conversationID, "error", err)
	}
	header, err := th.Header(ctx)
	if err != nil {
		return ThreadView{}, err
	}
	return ThreadView{Conversation: header, Messages: th.Messages().Items}, nil
}
