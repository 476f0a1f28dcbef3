package bus

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/realtime"
)

// These tests never reach a server; the client dials lazily.
func offlineBus(t *testing.T, prefix string) *redisBus {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })
	return newRedisBus(nil, rdb, prefix)
}

func TestRedisBusTopics(t *testing.T) {
	b := offlineBus(t, "")
	assert.Equal(t, "recharge.progression.user:42", b.topic("user:42"))

	b = offlineBus(t, "staging.events")
	assert.Equal(t, "staging.events.*", b.topic("*"))
}

func TestRedisBusDecodeRoutesByTopic(t *testing.T) {
	b := offlineBus(t, "")

	msg, err := b.decode("recharge.progression.user:7", `{"channel":"user:spoofed","event":"quest.completed","data":{"awarded_xp":10}}`)
	require.NoError(t, err)
	assert.Equal(t, "user:7", msg.Channel)
	assert.Equal(t, realtime.EventQuestCompleted, msg.Event)

	_, err = b.decode("other.user:7", `{"event":"quest.completed"}`)
	assert.Error(t, err)

	_, err = b.decode("recharge.progression.user:7", `not json`)
	assert.Error(t, err)
}

func TestRedisBusPublishRequiresChannel(t *testing.T) {
	b := offlineBus(t, "")
	err := b.Publish(context.Background(), realtime.Message{Event: realtime.EventLevelUp})
	assert.Error(t, err)
}
