package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
)

// DefaultChannel prefixes every redis channel the bus uses. A message for
// user:<id> travels on "<prefix>.user:<id>".
const DefaultChannel = "recharge.progression"

type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedisBus(log *logger.Logger, addr, prefix string) (Bus, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis bus: empty address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis bus: ping %s: %w", addr, err)
	}
	return newRedisBus(log, rdb, prefix), nil
}

func newRedisBus(log *logger.Logger, rdb *goredis.Client, prefix string) *redisBus {
	if log == nil {
		log = logger.Nop()
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultChannel
	}
	return &redisBus{log: log.With("component", "RedisBus", "prefix", prefix), rdb: rdb, prefix: prefix}
}

func (b *redisBus) topic(channel string) string { return b.prefix + "." + channel }

func (b *redisBus) Publish(ctx context.Context, msg realtime.Message) error {
	if msg.Channel == "" {
		return errors.New("redis bus: message without channel")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis bus: encode %s: %w", msg.Event, err)
	}
	return b.rdb.Publish(ctx, b.topic(msg.Channel), raw).Err()
}

// StartForwarder subscribes to every user topic under the prefix and hands
// decoded messages to onMsg until ctx ends.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return errors.New("redis bus: nil handler")
	}
	sub := b.rdb.PSubscribe(ctx, b.topic("*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis bus: subscribe: %w", err)
	}
	go func() {
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				msg, err := b.decode(m.Channel, m.Payload)
				if err != nil {
					b.log.Warn("dropping bus message", "topic", m.Channel, "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) decode(topic, payload string) (realtime.Message, error) {
	var msg realtime.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return msg, err
	}
	// The topic is authoritative for routing.
	channel, ok := strings.CutPrefix(topic, b.prefix+".")
	if !ok || channel == "" {
		return msg, fmt.Errorf("topic %q outside prefix", topic)
	}
	msg.Channel = channel
	return msg, nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
