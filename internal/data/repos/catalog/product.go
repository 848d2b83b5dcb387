package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uint64) (*types.Product, error)
	ListRecent(dbc dbctx.Context) ([]*types.Product, error)
	UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint64) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns nil without error when the product does not exist.
func (r *productRepo) GetByID(dbc dbctx.Context, id uint64) (*types.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Product
	if err := dbc.Resolve(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *productRepo) ListRecent(dbc dbctx.Context) ([]*types.Product, error) {
	out := []*types.Product{}
	if err := dbc.Resolve(r.db).
		Order("updated_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := dbc.Resolve(r.db).
		Model(&types.Product{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *productRepo) DeleteByIDs(dbc dbctx.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("id IN ?", ids).
		Delete(&types.Product{}).Error
}
