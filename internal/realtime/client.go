package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	Actor    string
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	once     sync.Once
	Logger   *logger.Logger
}
