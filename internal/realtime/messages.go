package realtime

import "fmt"

type SSEEvent string

const (
	SSEEventCatalogChanged           SSEEvent = "CatalogChanged"
	SSEEventScenarioChanged          SSEEvent = "ScenarioChanged"
	SSEEventScenarioItemsChanged     SSEEvent = "ScenarioItemsChanged"
	SSEEventSubitemVisibilityChanged SSEEvent = "SubitemVisibilityChanged"
)

// ChannelCatalog carries content tree and scenario list changes.
const ChannelCatalog = "catalog"

func ScenarioChannel(scenarioID uint64) string {
	return fmt.Sprintf("scenario:%d", scenarioID)
}

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
