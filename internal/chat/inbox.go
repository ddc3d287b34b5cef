// Package chat keeps the conversation list and open message threads in sync
// with the server and implements the send flow for new and existing threads.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/poll"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

const (
	// DefaultInboxInterval is how often the conversation list is refetched.
	DefaultInboxInterval = 30 * time.Second
	// DefaultThreadInterval is how often an open thread is refetched.
	DefaultThreadInterval = 10 * time.Second
)

// Option configures an Inbox or a Thread.
type Option func(*options)

type options struct {
	logger *slog.Logger
	selfID string
	page   market.Page
}

// WithLogger sets the logger for background failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSelf identifies the signed-in user so MarkRead skips own messages.
func WithSelf(userID string) Option {
	return func(o *options) { o.selfID = userID }
}

// WithPage selects the message window a Thread fetches.
func WithPage(page market.Page) Option {
	return func(o *options) { o.page = page }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Inbox is the signed-in user's conversation list.
type Inbox struct {
	api           market.Messenger
	logger        *slog.Logger
	conversations *state.Collection[market.Conversation]
}

// NewInbox returns an empty Inbox.
func NewInbox(api market.Messenger, opts ...Option) *Inbox {
	o := buildOptions(opts)
	return &Inbox{
		api:           api,
		logger:        o.logger,
		conversations: state.NewCollection[market.Conversation](nil),
	}
}

// Fetch returns the server's conversation list without touching local state.
func (in *Inbox) Fetch(ctx context.Context) ([]market.Conversation, error) {
	return in.api.Conversations(ctx)
}

// Refresh replaces the local list with the server's. A poll fetch that
// started earlier and lands later is dropped.
func (in *Inbox) Refresh(ctx context.Context) error {
	ticket := in.conversations.Issue()
	items, err := in.Fetch(ctx)
	if err != nil {
		in.conversations.FailFrom(ticket, err)
		return err
	}
	in.conversations.ReplaceFrom(ticket, items)
	return nil
}

// Snapshot returns the current conversation list.
func (in *Inbox) Snapshot() state.Snapshot[market.Conversation] {
	return in.conversations.Snapshot()
}

// UnreadCount sums unread messages across conversations.
func (in *Inbox) UnreadCount() int {
	total := 0
	for _, c := range in.conversations.Snapshot().Items {
		total += c.UnreadCount
	}
	return total
}

type inboxFetch struct {
	ticket state.Ticket
	items  []market.Conversation
}

// StartPolling refetches the list every interval until the handle is
// stopped. The caller is expected to Refresh once first.
func (in *Inbox) StartPolling(ctx context.Context, interval time.Duration) *poll.Handle {
	if interval <= 0 {
		interval = DefaultInboxInterval
	}
	var last state.Ticket
	fetch := func(ctx context.Context) (inboxFetch, error) {
		last = in.conversations.Issue()
		items, err := in.Fetch(ctx)
		return inboxFetch{ticket: last, items: items}, err
	}
	return poll.Start(ctx, fetch, interval,
		func(r inboxFetch) { in.conversations.ReplaceFrom(r.ticket, r.items) },
		poll.WithName("conversations"),
		poll.WithLogger(in.logger),
		poll.WithErrorHandler(func(err error) { in.conversations.FailFrom(last, err) }),
	)
}
