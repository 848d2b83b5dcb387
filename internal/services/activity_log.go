package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/db"
	"github.com/yungbote/playbook-backend/internal/data/repos"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ActivityEntry struct {
	Kind       string
	Action     string
	EntityType string
	EntityID   uint64
	Metadata   map[string]any
}

type ActivityLogService interface {
	// Record writes an entry for the request actor. Failures are logged and
	// never surface to the caller.
	Record(ctx context.Context, entry ActivityEntry)
	ListActivityLogs(ctx context.Context, filter repos.ActivityLogFilter) ([]*types.ActivityLog, error)
}

type activityLogService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ActivityLogRepo
}

func NewActivityLogService(db *gorm.DB, baseLog *logger.Logger, repo repos.ActivityLogRepo) ActivityLogService {
	return &activityLogService{
		db:   db,
		log:  baseLog.With("service", "ActivityLogService"),
		repo: repo,
	}
}

func (as *activityLogService) Record(ctx context.Context, entry ActivityEntry) {
	if as == nil || as.repo == nil {
		return
	}
	ctx = context.WithoutCancel(ctxutil.Default(ctx))
	kind := strings.TrimSpace(entry.Kind)
	if kind == "" {
		kind = types.ActivityKindContentEdit
	}
	row := &types.ActivityLog{
		Actor:      ctxutil.Actor(ctx),
		Kind:       kind,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		CreatedAt:  nowUTC(),
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		row.IPAddress = rd.IP
	}
	meta := entry.Metadata
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		meta = make(map[string]any, len(entry.Metadata)+1)
		for k, v := range entry.Metadata {
			meta[k] = v
		}
		meta["request_id"] = td.RequestID
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			as.log.Warn("activity metadata encode failed", "action", entry.Action, "error", err)
		} else {
			row.Metadata = datatypes.JSON(raw)
		}
	}
	if _, err := as.repo.Create(dbctx.Context{Ctx: ctx}, []*types.ActivityLog{row}); err != nil {
		as.log.Warn("activity log write failed", "action", entry.Action, "entity_id", entry.EntityID, "error", err)
	}
}

func (as *activityLogService) ListActivityLogs(ctx context.Context, filter repos.ActivityLogFilter) ([]*types.ActivityLog, error) {
	rows, err := as.repo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		as.log.Error("ListActivityLogs failed", "error", err)
		return nil, db.TranslateError("ListActivityLogs", fmt.Errorf("list activity logs: %w", err))
	}
	return rows, nil
}
