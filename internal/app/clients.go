package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/playbook-backend/internal/clients/redis"
	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/realtime/bus"
)

type Clients struct {
	Redis *goredis.Client
	Bus   bus.Bus
	Views cache.ViewCache
}

// wireClients connects optional infrastructure. Without REDIS_ADDR the view
// cache stays in process and events reach only local streams.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if !cfg.Redis.Enabled() {
		return Clients{Views: cache.NewMemory()}, nil
	}
	rdb, err := redis.New(ctx, cfg.Redis, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	b, err := bus.NewRedisBus(rdb, cfg.Redis.Channel, log)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis bus: %w", err)
	}
	return Clients{
		Redis: rdb,
		Bus:   b,
		Views: cache.NewRedis(rdb, cfg.Redis.KeyPrefix, log),
	}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
