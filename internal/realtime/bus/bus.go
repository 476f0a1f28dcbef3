package bus

import (
	"context"

	"github.com/yungbote/recharge-backend/internal/realtime"
)

// Bus fans progression events out to every API instance.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
