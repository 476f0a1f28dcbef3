package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
	"github.com/yungbote/recharge-backend/internal/realtime/bus"
)

// eventPublisher pushes post-commit progression events onto the bus.
// Publishing is best effort and never fails the caller.
type eventPublisher struct {
	bus     bus.Bus
	metrics *observability.Metrics
	log     *logger.Logger
}

func (p eventPublisher) publish(ctx context.Context, userID uuid.UUID, event realtime.Event, data any) {
	p.send(ctx, realtime.UserChannel(userID), event, data)
}

func (p eventPublisher) send(ctx context.Context, channel string, event realtime.Event, data any) {
	if p.bus == nil {
		return
	}
	err := p.bus.Publish(context.WithoutCancel(ctx), realtime.Message{
		Channel: channel,
		Event:   event,
		Data:    data,
	})
	p.metrics.IncBusPublish(string(event), err)
	if err != nil && p.log != nil {
		p.log.Warn("event publish failed", "event", event, "channel", channel, "error", err)
	}
}

// RouteBusMessages splits bus traffic: catalog changes purge the local
// quest-set cache, everything else goes to deliver.
func RouteBusMessages(catalog CatalogService, deliver func(realtime.Message)) func(realtime.Message) {
	return func(m realtime.Message) {
		if m.Channel == realtime.CatalogChannel {
			catalog.InvalidateQuestSets()
			return
		}
		if deliver != nil {
			deliver(m)
		}
	}
}
