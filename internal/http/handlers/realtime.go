package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/http/response"
	"github.com/yungbote/playbook-backend/internal/observability"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/realtime"
)

const maxStreamChannels = 16

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log: log.With("handler", "RealtimeHandler"),
		hub: hub,
	}
}

// GET /api/events/stream?channel=catalog&channel=scenario:12
//
// With no channel the stream follows the catalog channel.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	channels, err := streamChannels(c.QueryArray("channel"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	client := h.hub.NewSSEClient(ctxutil.Actor(c.Request.Context()))
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.log.Debug("SSEStream open", "client_id", client.ID.String(), "channels", channels)
	observability.Current().SSEClientConnected()
	defer observability.Current().SSEClientDisconnected()

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
}

func streamChannels(raw []string) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, ch := range strings.Split(entry, ",") {
			ch = strings.TrimSpace(ch)
			if ch == "" || seen[ch] {
				continue
			}
			if ch != realtime.ChannelCatalog && !strings.HasPrefix(ch, "scenario:") {
				return nil, apierr.Validation("SSEStream", "unknown channel %q", ch)
			}
			seen[ch] = true
			out = append(out, ch)
		}
	}
	if len(out) > maxStreamChannels {
		return nil, apierr.Validation("SSEStream", "at most %d channels per stream", maxStreamChannels)
	}
	if len(out) == 0 {
		out = append(out, realtime.ChannelCatalog)
	}
	return out, nil
}
