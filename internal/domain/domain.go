package domain

import (
	"github.com/yungbote/playbook-backend/internal/domain/audit"
	"github.com/yungbote/playbook-backend/internal/domain/catalog"
	"github.com/yungbote/playbook-backend/internal/domain/scenario"
)

const (
	ActivityKindContentEdit = audit.KindContentEdit
	ActivityKindLogin       = audit.KindLogin
)

type Product = catalog.Product
type Item = catalog.Item
type Subitem = catalog.Subitem

type Scenario = scenario.Scenario
type ScenarioItem = scenario.ScenarioItem
type ScenarioItemView = scenario.ScenarioItemView
type SubitemVisibility = scenario.SubitemVisibility

type ActivityLog = audit.ActivityLog

// Models lists every persisted model in dependency order for migrations.
func Models() []any {
	return []any{
		&Product{},
		&Item{},
		&Subitem{},
		&Scenario{},
		&ScenarioItem{},
		&SubitemVisibility{},
		&ActivityLog{},
	}
}
