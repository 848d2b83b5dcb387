package services

import (
	"context"

	"github.com/yungbote/playbook-backend/internal/realtime"
)

// CompositionNotifier announces committed changes so clients can refetch.
type CompositionNotifier interface {
	CatalogChanged(ctx context.Context, entityType string, entityID uint64, action string)
	ScenarioChanged(ctx context.Context, scenarioID uint64, action string)
	ScenarioItemsChanged(ctx context.Context, scenarioID uint64, itemIDs []uint64, action string)
	VisibilityChanged(ctx context.Context, scenarioID, itemID uint64, subitemIDs []uint64)
}

type compositionNotifier struct {
	emit SSEEmitter
}

func NewCompositionNotifier(emit SSEEmitter) CompositionNotifier {
	return &compositionNotifier{emit: emit}
}

func (n *compositionNotifier) CatalogChanged(ctx context.Context, entityType string, entityID uint64, action string) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(context.WithoutCancel(ctx), realtime.SSEMessage{
		Channel: realtime.ChannelCatalog,
		Event:   realtime.SSEEventCatalogChanged,
		Data: map[string]any{
			"entity_type": entityType,
			"entity_id":   entityID,
			"action":      action,
		},
	})
}

// ScenarioChanged goes to the scenario channel and to the catalog channel,
// which drives scenario lists.
func (n *compositionNotifier) ScenarioChanged(ctx context.Context, scenarioID uint64, action string) {
	if n == nil || n.emit == nil || scenarioID == 0 {
		return
	}
	data := map[string]any{"scenario_id": scenarioID, "action": action}
	ctx = context.WithoutCancel(ctx)
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ScenarioChannel(scenarioID),
		Event:   realtime.SSEEventScenarioChanged,
		Data:    data,
	})
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ChannelCatalog,
		Event:   realtime.SSEEventScenarioChanged,
		Data:    data,
	})
}

func (n *compositionNotifier) ScenarioItemsChanged(ctx context.Context, scenarioID uint64, itemIDs []uint64, action string) {
	if n == nil || n.emit == nil || scenarioID == 0 {
		return
	}
	n.emit.Emit(context.WithoutCancel(ctx), realtime.SSEMessage{
		Channel: realtime.ScenarioChannel(scenarioID),
		Event:   realtime.SSEEventScenarioItemsChanged,
		Data: map[string]any{
			"scenario_id": scenarioID,
			"item_ids":    itemIDs,
			"action":      action,
		},
	})
}

func (n *compositionNotifier) VisibilityChanged(ctx context.Context, scenarioID, itemID uint64, subitemIDs []uint64) {
	if n == nil || n.emit == nil || scenarioID == 0 {
		return
	}
	n.emit.Emit(context.WithoutCancel(ctx), realtime.SSEMessage{
		Channel: realtime.ScenarioChannel(scenarioID),
		Event:   realtime.SSEEventSubitemVisibilityChanged,
		Data: map[string]any{
			"scenario_id": scenarioID,
			"item_id":     itemID,
			"subitem_ids": subitemIDs,
		},
	})
}
