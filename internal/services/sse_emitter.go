package services

import (
	"context"

	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/realtime"
	"github.com/yungbote/playbook-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes through the bus; every instance's forwarder then
// broadcasts to its local hub. On publish failure the message is delivered to
// local clients only.
type RedisEmitter struct {
	Bus bus.Bus
	Hub *realtime.SSEHub
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil {
		if e.Log != nil {
			e.Log.Warn("SSE publish failed; delivering locally", "channel", msg.Channel, "error", err)
		}
		if e.Hub != nil {
			e.Hub.Broadcast(msg)
		}
	}
}
