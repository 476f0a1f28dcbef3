package bus

import (
	"context"
	"sync"

	"github.com/yungbote/recharge-backend/internal/realtime"
)

const memoryBusHistory = 256

// MemoryBus delivers messages in-process. It backs single-instance
// deployments without REDIS_ADDR and tests.
type MemoryBus struct {
	mu        sync.RWMutex
	listeners []func(realtime.Message)
	published []realtime.Message
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(ctx context.Context, msg realtime.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	b.published = append(b.published, msg)
	if len(b.published) > memoryBusHistory {
		b.published = b.published[len(b.published)-memoryBusHistory:]
	}
	listeners := append([]func(realtime.Message){}, b.listeners...)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn(msg)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return nil
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, onMsg)
	b.mu.Unlock()
	return nil
}

// Published returns a copy of the most recent messages.
func (b *MemoryBus) Published() []realtime.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]realtime.Message(nil), b.published...)
}

func (b *MemoryBus) Close() error { return nil }
