package bus

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/realtime"
)

func TestRedisBusForwardsPublishedMessages(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis bus tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	channel := "playbook-test-bus-" + time.Now().UTC().Format("150405.000000")
	b, err := NewRedisBus(rdb, channel, logger.Nop())
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	want := realtime.SSEMessage{
		Channel: realtime.ScenarioChannel(7),
		Event:   realtime.SSEEventScenarioItemsChanged,
		Data:    map[string]any{"scenario_id": 7},
	}
	if err := b.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Channel != want.Channel || m.Event != want.Event {
			t.Fatalf("forwarded: want=%s/%s got=%s/%s", want.Channel, want.Event, m.Channel, m.Event)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no message forwarded")
	}
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(nil, "x", logger.Nop()); err == nil {
		t.Fatalf("NewRedisBus(nil): want error")
	}
}
