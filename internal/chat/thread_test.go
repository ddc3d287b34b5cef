package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/market/mocks"
)

func TestThread_SendCreatesConversationOnFirstMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	g := api.EXPECT()
	g.CreateConversation(gomock.Any(), market.NewConversation{
		ReceiverID:     "U2",
		ProductID:      "P7",
		InitialMessage: "Is it available?",
	}).Return(&market.Conversation{ID: "C9"}, nil)
	g.Messages(gomock.Any(), "C9", gomock.Any()).Return([]market.Message{
		{ID: "M1", ConversationID: "C9", Content: "Is it available?"},
	}, nil)

	th := NewThread(api, "U2", "P7")
	require.Empty(t, th.ConversationID())

	require.NoError(t, th.Send(context.Background(), "  Is it available?  "))
	assert.Equal(t, "C9", th.ConversationID())
	assert.Equal(t, Idle, th.State())
	require.Len(t, th.Messages().Items, 1)

	// Later sends go to the adopted conversation.
	g.SendMessage(gomock.Any(), market.OutgoingMessage{ConversationID: "C9", Content: "Still?"}).
		Return(&market.Message{ID: "M2"}, nil)
	g.Messages(gomock.Any(), "C9", gomock.Any()).Return([]market.Message{{ID: "M1"}, {ID: "M2"}}, nil)

	require.NoError(t, th.Send(context.Background(), "Still?"))
	assert.Len(t, th.Messages().Items, 2)
}

func TestThread_SendRejectsBlankInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	th := OpenThread(api, "C1")
	require.ErrorIs(t, th.Send(context.Background(), " \n\t "), ErrEmptyMessage)
}

func TestThread_SendFailureLeavesMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	g := api.EXPECT()
	g.Messages(gomock.Any(), "C1", gomock.Any()).Return([]market.Message{{ID: "M1"}}, nil)
	sendErr := &market.Error{Op: "send message", Kind: market.KindServer, Status: 500}
	g.SendMessage(gomock.Any(), gomock.Any()).Return(nil, sendErr)

	th := OpenThread(api, "C1")
	require.NoError(t, th.Refresh(context.Background()))
	before := th.Messages().Version

	err := th.Send(context.Background(), "hello")
	require.ErrorIs(t, err, sendErr)
	assert.Equal(t, Idle, th.State())
	assert.Equal(t, before, th.Messages().Version)
}

func TestThread_CreateFailureKeepsThreadNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	api.EXPECT().CreateConversation(gomock.Any(), gomock.Any()).Return(nil, errors.New("offline"))

	th := NewThread(api, "U2", "P7")
	require.Error(t, th.Send(context.Background(), "hi"))
	assert.Empty(t, th.ConversationID())
	assert.Equal(t, Idle, th.State())
}

func TestThread_SecondSendWhileSending(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	release := make(chan struct{})
	started := make(chan struct{})
	g := api.EXPECT()
	g.SendMessage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, in market.OutgoingMessage) (*market.Message, error) {
			close(started)
			<-release
			return &market.Message{ID: "M1"}, nil
		})
	g.Messages(gomock.Any(), "C1", gomock.Any()).Return(nil, nil)

	th := OpenThread(api, "C1")
	done := make(chan error, 1)
	go func() { done <- th.Send(context.Background(), "first") }()

	<-started
	assert.Equal(t, Sending, th.State())
	require.ErrorIs(t, th.Send(context.Background(), "second"), ErrSending)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, th.State())
}

func TestThread_RefreshWithoutConversationIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	th := NewThread(api, "U2", "P7")
	require.NoError(t, th.Refresh(context.Background()))
	assert.False(t, th.Messages().Loaded)
}

func TestThread_Header(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	_, err := NewThread(api, "U2", "P7").Header(context.Background())
	require.ErrorIs(t, err, ErrNoConversation)

	api.EXPECT().Conversation(gomock.Any(), "C4").Return(&market.Conversation{
		ID:          "C4",
		User:        market.UserSummary{ID: "U2", Username: "sam"},
		Product:     market.ProductSummary{ID: "P7", Title: "Denim jacket"},
		UnreadCount: 2,
	}, nil)
	c, err := OpenThread(api, "C4").Header(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sam", c.User.Username)
	assert.Equal(t, "Denim jacket", c.Product.Title)

	api.EXPECT().Conversation(gomock.Any(), "C5").Return(nil, &market.Error{Op: "get conversation", Kind: market.KindForbidden, Status: 403})
	_, err = OpenThread(api, "C5").Header(context.Background())
	assert.Equal(t, market.KindForbidden, market.KindOf(err))
}

func TestThread_PollingWithoutConversationNeverFetches(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	th := NewThread(api, "U2", "P7")
	h := th.StartPolling(context.Background(), time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	h.Stop()
	<-h.Done()
	assert.False(t, th.Messages().Loaded)
}

func TestThread_PollingReplacesMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	api.EXPECT().Messages(gomock.Any(), "C1", market.Page{Page: 2, Limit: 20}).
		Return([]market.Message{{ID: "M1"}}, nil).MinTimes(1)

	th := OpenThread(api, "C1", WithPage(market.Page{Page: 2, Limit: 20}))
	h := th.StartPolling(context.Background(), time.Millisecond)
	defer func() {
		h.Stop()
		<-h.Done()
	}()

	require.Eventually(t, func() bool { return th.Messages().Loaded }, time.Second, time.Millisecond)
	assert.Equal(t, uint64(1), th.Messages().Version)
}

func TestThread_MarkReadSkipsOwnAndReadMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	g := api.EXPECT()
	g.Messages(gomock.Any(), "C1", gomock.Any()).Return([]market.Message{
		{ID: "M1", SenderID: "U2"},
		{ID: "M2", SenderID: "U1"},
		{ID: "M3", SenderID: "U2", IsRead: true},
		{ID: "M4", SenderID: "U2"},
	}, nil)
	g.MarkRead(gomock.Any(), "M1").Return(nil)
	g.MarkRead(gomock.Any(), "M4").Return(errors.New("boom"))

	th := OpenThread(api, "C1", WithSelf("U1"))
	require.NoError(t, th.Refresh(context.Background()))

	err := th.MarkRead(context.Background())
	require.Error(t, err)

	read := map[string]bool{}
	for _, m := range th.Messages().Items {
		read[m.ID] = m.IsRead
	}
	assert.True(t, read["M1"])
	assert.False(t, read["M2"])
	assert.False(t, read["M4"])
}

func TestThread_SlowPollDoesNotOverwriteSentMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	before := []market.Message{{ID: "M1", Content: "hello"}}
	after := []market.Message{{ID: "M1", Content: "hello"}, {ID: "M2", Content: "hi"}}

	var (
		mu    sync.Mutex
		calls int
	)
	pollStarted := make(chan struct{})
	releasePoll := make(chan struct{})
	nextTick := make(chan struct{})

	g := api.EXPECT()
	g.SendMessage(gomock.Any(), market.OutgoingMessage{ConversationID: "C1", Content: "hi"}).
		Return(&market.Message{ID: "M2"}, nil)
	g.Messages(gomock.Any(), "C1", gomock.Any()).DoAndReturn(
		func(ctx context.Context, id string, page market.Page) ([]market.Message, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()

			switch n {
			case 1:
				// Poll tick that read the thread before the send.
				close(pollStarted)
				<-releasePoll
				return before, nil
			case 2:
				// Refetch after the send.
				return after, nil
			case 3:
				// The poll tick that follows the stale one: its apply is done.
				close(nextTick)
				<-ctx.Done()
				return nil, ctx.Err()
			default:
				<-ctx.Done()
				return nil, ctx.Err()
			}
		}).AnyTimes()

	th := OpenThread(api, "C1")
	h := th.StartPolling(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	<-pollStarted
	require.NoError(t, th.Send(context.Background(), "hi"))
	require.Len(t, th.Messages().Items, 2)

	close(releasePoll)
	select {
	case <-nextTick:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not come back for another tick")
	}

	assert.Len(t, th.Messages().Items, 2, "stale poll result replaced the post-send refetch")
	h.Stop()
	<-h.Done()
}
