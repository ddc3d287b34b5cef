package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/poll"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

var (
	// ErrEmptyMessage is returned for blank input; nothing is sent.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSending is returned while a previous send is still in flight.
	ErrSending = errors.New("a message is already being sent")
	// ErrNoConversation is returned for a new thread that has not sent yet.
	ErrNoConversation = errors.New("conversation not started")
)

// SendState tracks the composer of a thread.
type SendState int

const (
	Idle SendState = iota
	Sending
)

func (s SendState) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// Thread is one open conversation. A Thread created with NewThread has no
// conversation id until its first message is sent.
type Thread struct {
	api    market.Messenger
	logger *slog.Logger
	selfID string
	page   market.Page

	mu             sync.Mutex
	conversationID string
	receiverID     string
	productID      string
	state          SendState

	messages *state.Collection[market.Message]
}

// OpenThread returns a Thread for an existing conversation.
func OpenThread(api market.Messenger, conversationID string, opts ...Option) *Thread {
	t := newThread(api, opts)
	t.conversationID = conversationID
	return t
}

// NewThread returns a Thread that will create a conversation with receiverID
// about productID when the first message is sent.
func NewThread(api market.Messenger, receiverID, productID string, opts ...Option) *Thread {
	t := newThread(api, opts)
	t.receiverID = receiverID
	t.productID = productID
	return t
}

func newThread(api market.Messenger, opts []Option) *Thread {
	o := buildOptions(opts)
	return &Thread{
		api:      api,
		logger:   o.logger,
		selfID:   o.selfID,
		page:     o.page,
		messages: state.NewCollection[market.Message](nil),
	}
}

// ConversationID returns the server id, or "" before the first send of a new
// thread.
func (t *Thread) ConversationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conversationID
}

// State returns the send state.
func (t *Thread) State() SendState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Messages returns the current message snapshot.
func (t *Thread) Messages() state.Snapshot[market.Message] {
	return t.messages.Snapshot()
}

// Send delivers content. A thread without a conversation id creates the
// conversation with content as its first message and adopts the returned id.
// On success the message list is refetched; on failure it is left as is.
func (t *Thread) Send(ctx context.Context, content string) error {
	text := strings.TrimSpace(content)
	if text == "" {
		return ErrEmptyMessage
	}

	t.mu.Lock()
	if t.state == Sending {
		t.mu.Unlock()
		return ErrSending
	}
	t.state = Sending
	id, receiver, product := t.conversationID, t.receiverID, t.productID
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.state = Idle
		t.mu.Unlock()
	}()

	if id == "" {
		conv, err := t.api.CreateConversation(ctx, market.NewConversation{
			ReceiverID:     receiver,
			ProductID:      product,
			InitialMessage: text,
		})
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		if conv == nil || conv.ID == "" {
			return fmt.Errorf("create conversation: server returned no id")
		}
		t.mu.Lock()
		t.conversationID = conv.ID
		t.mu.Unlock()
		id = conv.ID
	} else {
		if _, err := t.api.SendMessage(ctx, market.OutgoingMessage{ConversationID: id, Content: text}); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	if err := t.load(ctx, id); err != nil {
		t.logger.Warn("refetch after send failed", "conversation", id, "error", err)
	}
	return nil
}

// Refresh refetches the message list. It does nothing before the
// conversation exists.
func (t *Thread) Refresh(ctx context.Context) error {
	id := t.ConversationID()
	if id == "" {
		return nil
	}
	return t.load(ctx, id)
}

// Header fetches the conversation record: participants, product and the
// caller's unread count.
func (t *Thread) Header(ctx context.Context) (market.Conversation, error) {
	id := t.ConversationID()
	if id == "" {
		return market.Conversation{}, ErrNoConversation
	}
	c, err := t.api.Conversation(ctx, id)
	if err != nil {
		return market.Conversation{}, fmt.Errorf("load conversation %s: %w", id, err)
	}
	return *c, nil
}

// load fetches the thread under a ticket so a slower fetch that started
// earlier, a poll tick for instance, cannot overwrite this result.
func (t *Thread) load(ctx context.Context, id string) error {
	ticket := t.messages.Issue()
	items, err := t.api.Messages(ctx, id, t.page)
	if err != nil {
		t.messages.FailFrom(ticket, err)
		return err
	}
	t.messages.ReplaceFrom(ticket, items)
	return nil
}

type threadFetch struct {
	id     string
	ticket state.Ticket
	items  []market.Message
}

// StartPolling refetches the thread every interval until the handle is
// stopped. Ticks before the conversation exists are no-ops.
func (t *Thread) StartPolling(ctx context.Context, interval time.Duration) *poll.Handle {
	if interval <= 0 {
		interval = DefaultThreadInterval
	}
	// Fetch and error handler run on the poller goroutine one after the
	// other, so last always belongs to the fetch being reported.
	var last state.Ticket
	fetch := func(ctx context.Context) (threadFetch, error) {
		id := t.ConversationID()
		if id == "" {
			return threadFetch{}, nil
		}
		last = t.messages.Issue()
		items, err := t.api.Messages(ctx, id, t.page)
		return threadFetch{id: id, ticket: last, items: items}, err
	}
	apply := func(r threadFetch) {
		if r.id == "" {
			return
		}
		t.messages.ReplaceFrom(r.ticket, r.items)
	}
	return poll.Start(ctx, fetch, interval, apply,
		poll.WithName("thread"),
		poll.WithLogger(t.logger),
		poll.WithErrorHandler(func(err error) { t.messages.FailFrom(last, err) }),
	)
}

// MarkRead marks every unread message from the other participant as read.
func (t *Thread) MarkRead(ctx context.Context) error {
	var errs []error
	for _, m := range t.messages.Snapshot().Items {
		if m.IsRead || (t.selfID != "" && m.SenderID == t.selfID) {
			continue
		}
		if err := t.api.MarkRead(ctx, m.ID); err != nil {
			errs = append(errs, fmt.Errorf("mark %s read: %w", m.ID, err))
			continue
		}
		id := m.ID
		t.messages.Mutate(func(items []market.Message) []market.Message {
			for i := range items {
				if items[i].ID == id {
					items[i].IsRead = true
				}
			}
			return items
		})
	}
	return errors.Join(errs...)
}
