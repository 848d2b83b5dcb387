package audit

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

type ActivityLogFilter struct {
	// Query matches actor or IP address by substring, case-insensitive.
	Query string
	Kind  string
	Limit int
}

type ActivityLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.ActivityLog) ([]*types.ActivityLog, error)
	List(dbc dbctx.Context, filter ActivityLogFilter) ([]*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) Create(dbc dbctx.Context, rows []*types.ActivityLog) ([]*types.ActivityLog, error) {
	if len(rows) == 0 {
		return []*types.ActivityLog{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityLogRepo) List(dbc dbctx.Context, filter ActivityLogFilter) ([]*types.ActivityLog, error) {
	out := []*types.ActivityLog{}
	q := dbc.Resolve(r.db).Model(&types.ActivityLog{})
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("(LOWER(actor) LIKE ? ESCAPE '!' OR LOWER(ip_address) LIKE ? ESCAPE '!')", like, like)
	}
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(ClampLimit(filter.Limit)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
