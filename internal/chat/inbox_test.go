package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/market/mocks"
)

func TestInbox_RefreshReplacesAndFailKeepsList(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	g := api.EXPECT()
	gomock.InOrder(
		g.Conversations(gomock.Any()).Return([]market.Conversation{{ID: "C1", UnreadCount: 2}, {ID: "C2", UnreadCount: 1}}, nil),
		g.Conversations(gomock.Any()).Return(nil, errors.New("offline")),
	)

	in := NewInbox(api)
	require.NoError(t, in.Refresh(context.Background()))
	assert.Equal(t, 3, in.UnreadCount())

	require.Error(t, in.Refresh(context.Background()))
	snap := in.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
}

func TestInbox_PollingUnchangedListKeepsVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	var calls atomic.Int32
	list := []market.Conversation{{ID: "C1"}, {ID: "C2"}}
	api.EXPECT().Conversations(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]market.Conversation, error) {
		calls.Add(1)
		return list, nil
	}).AnyTimes()

	in := NewInbox(api)
	require.NoError(t, in.Refresh(context.Background()))

	h := in.StartPolling(context.Background(), time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 4 }, time.Second, time.Millisecond)
	h.Stop()
	<-h.Done()

	assert.Equal(t, uint64(1), in.Snapshot().Version)
}

func TestInbox_RefreshWinsOverOlderPollFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	stale := []market.Conversation{{ID: "C1", UnreadCount: 0}}
	fresh := []market.Conversation{{ID: "C1", UnreadCount: 1}, {ID: "C2", UnreadCount: 1}}

	var calls atomic.Int32
	pollStarted := make(chan struct{})
	releasePoll := make(chan struct{})
	nextTick := make(chan struct{})
	api.EXPECT().Conversations(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]market.Conversation, error) {
		switch calls.Add(1) {
		case 1:
			close(pollStarted)
			<-releasePoll
			return stale, nil
		case 2:
			return fresh, nil
		case 3:
			close(nextTick)
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}).AnyTimes()

	in := NewInbox(api)
	h := in.StartPolling(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	<-pollStarted
	require.NoError(t, in.Refresh(context.Background()))
	close(releasePoll)
	select {
	case <-nextTick:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not come back for another tick")
	}

	assert.Equal(t, 2, in.UnreadCount())
	assert.Len(t, in.Snapshot().Items, 2)
}
