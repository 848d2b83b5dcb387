package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/data/db"
	"github.com/yungbote/playbook-backend/internal/data/repos"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ScenarioInput struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	FormattedDescription *string `json:"formatted_description"`
}

type ScenarioService interface {
	ListScenarios(ctx context.Context) ([]*types.Scenario, error)
	GetScenario(ctx context.Context, id uint64) (*types.Scenario, error)
	CreateScenario(ctx context.Context, in ScenarioInput) (*types.Scenario, error)
	UpdateScenario(ctx context.Context, id uint64, in ScenarioInput) (*types.Scenario, error)
	// DeleteScenario removes the scenario with its links and visibility rows.
	// Items and subitems are untouched.
	DeleteScenario(ctx context.Context, id uint64) error
}

type scenarioService struct {
	db         *gorm.DB
	log        *logger.Logger
	scenarios  repos.ScenarioRepo
	links      repos.ScenarioItemRepo
	visibility repos.SubitemVisibilityRepo
	views      *viewCache
	activity   ActivityLogService
	notify     CompositionNotifier
}

func NewScenarioService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scenarios repos.ScenarioRepo,
	links repos.ScenarioItemRepo,
	visibility repos.SubitemVisibilityRepo,
	views cache.ViewCache,
	activity ActivityLogService,
	notify CompositionNotifier,
) ScenarioService {
	serviceLog := baseLog.With("service", "ScenarioService")
	return &scenarioService{
		db:         db,
		log:        serviceLog,
		scenarios:  scenarios,
		links:      links,
		visibility: visibility,
		views:      newViewCache(views, 0, serviceLog),
		activity:   activity,
		notify:     notify,
	}
}

func (ss *scenarioService) ListScenarios(ctx context.Context) ([]*types.Scenario, error) {
	rows, err := ss.scenarios.ListRecent(dbctx.Context{Ctx: ctx})
	if err != nil {
		ss.log.Error("ListScenarios failed", "error", err)
		return nil, db.TranslateError("ListScenarios", fmt.Errorf("list scenarios: %w", err))
	}
	return rows, nil
}

func (ss *scenarioService) GetScenario(ctx context.Context, id uint64) (*types.Scenario, error) {
	s, err := ss.scenarios.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, db.TranslateError("GetScenario", fmt.Errorf("get scenario: %w", err))
	}
	if s == nil {
		return nil, apierr.NotFound("GetScenario", "scenario %d not found", id)
	}
	return s, nil
}

func (ss *scenarioService) CreateScenario(ctx context.Context, in ScenarioInput) (*types.Scenario, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("CreateScenario", "title is required")
	}
	ts := nowUTC()
	s := &types.Scenario{
		Title:                title,
		Description:          in.Description,
		FormattedDescription: trimPtr(in.FormattedDescription),
		CreatedBy:            actorPtr(ctx),
		CreatedAt:            ts,
		UpdatedBy:            actorPtr(ctx),
		UpdatedAt:            ts,
	}
	if _, err := ss.scenarios.Create(dbctx.Context{Ctx: ctx}, []*types.Scenario{s}); err != nil {
		ss.log.Error("CreateScenario failed", "error", err)
		return nil, db.TranslateError("CreateScenario", fmt.Errorf("create scenario: %w", err))
	}
	ss.log.Info("CreateScenario", "scenario_id", s.ID, "actor", ctxutil.Actor(ctx))
	ss.activity.Record(ctx, ActivityEntry{Action: "create_scenario", EntityType: "scenario", EntityID: s.ID})
	ss.notify.ScenarioChanged(ctx, s.ID, "created")
	return s, nil
}

func (ss *scenarioService) UpdateScenario(ctx context.Context, id uint64, in ScenarioInput) (*types.Scenario, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("UpdateScenario", "title is required")
	}
	var out *types.Scenario
	err := inTx(ctx, ss.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := ss.scenarios.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("UpdateScenario", "scenario %d not found", id)
		}
		if _, err := ss.scenarios.UpdateFields(dbc, id, map[string]interface{}{
			"title":                 title,
			"description":           in.Description,
			"formatted_description": nullable(trimPtr(in.FormattedDescription)),
			"updated_by":            ctxutil.Actor(ctx),
			"updated_at":            nowUTC(),
		}); err != nil {
			return fmt.Errorf("update scenario: %w", err)
		}
		out, err = ss.scenarios.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, db.TranslateError("UpdateScenario", err)
	}
	ss.activity.Record(ctx, ActivityEntry{Action: "update_scenario", EntityType: "scenario", EntityID: id})
	ss.notify.ScenarioChanged(ctx, id, "updated")
	return out, nil
}

func (ss *scenarioService) DeleteScenario(ctx context.Context, id uint64) error {
	err := inTx(ctx, ss.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := ss.scenarios.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		if s == nil {
			return apierr.NotFound("DeleteScenario", "scenario %d not found", id)
		}
		ids := []uint64{id}
		if err := ss.visibility.DeleteByScenarioIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete visibility rows: %w", err)
		}
		if err := ss.links.DeleteByScenarioIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete scenario links: %w", err)
		}
		if err := ss.scenarios.DeleteByIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete scenario: %w", err)
		}
		return nil
	})
	if err != nil {
		ss.log.Warn("DeleteScenario failed", "scenario_id", id, "error", err)
		return db.TranslateError("DeleteScenario", err)
	}
	ss.views.dropScenario(ctx, id)
	ss.activity.Record(ctx, ActivityEntry{Action: "delete_scenario", EntityType: "scenario", EntityID: id})
	ss.notify.ScenarioChanged(ctx, id, "deleted")
	return nil
}
