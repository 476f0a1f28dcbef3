package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return Message{}
}

func TestHubBroadcastOrderingAndIsolation(t *testing.T) {
	hub := NewHub(logger.Nop())
	userA, userB := uuid.New(), uuid.New()

	a := hub.NewClient(userA)
	hub.AddChannel(a, UserChannel(userA))
	b := hub.NewClient(userB)
	hub.AddChannel(b, UserChannel(userB))

	hub.Broadcast(Message{Channel: UserChannel(userA), Event: EventQuestCompleted, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: UserChannel(userA), Event: EventLevelUp, Data: map[string]any{"seq": 2}})

	assert.Equal(t, EventQuestCompleted, recvMessage(t, a.Outbound, time.Second).Event)
	assert.Equal(t, EventLevelUp, recvMessage(t, a.Outbound, time.Second).Event)
	assert.Empty(t, b.Outbound)

	hub.CloseClient(a)
	hub.CloseClient(a)
	assert.Zero(t, hub.Subscribers(UserChannel(userA)))
	assert.Equal(t, 1, hub.Subscribers(UserChannel(userB)))
}

func TestHubServeHTTPStreamsEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	user := uuid.New()
	c := hub.NewClient(user)
	hub.AddChannel(c, UserChannel(user))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, c)
		close(done)
	}()

	hub.Broadcast(Message{Channel: UserChannel(user), Event: EventQuestCompleted, Data: map[string]any{"awarded_xp": 10}})
	require.Eventually(t, func() bool { return len(c.Outbound) == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "event: quest.completed"), body)
	assert.Contains(t, body, `"awarded_xp":10`)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}
