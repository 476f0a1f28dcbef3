package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type ProfessionRepo interface {
	Create(dbc dbctx.Context, p *types.Profession) error
	CreateManyIfAbsent(dbc dbctx.Context, rows []*types.Profession) (int64, error)
	List(dbc dbctx.Context, includeInactive bool) ([]*types.Profession, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Profession, error)
	Update(dbc dbctx.Context, slug string, updates map[string]any) error
	SoftDelete(dbc dbctx.Context, slug string) (bool, error)
	GetDeletedBySlug(dbc dbctx.Context, slug string) (*types.Profession, error)
	Restore(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Count(dbc dbctx.Context) (int64, error)
}

type professionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfessionRepo(db *gorm.DB, baseLog *logger.Logger) ProfessionRepo {
	return &professionRepo{db: db, log: baseLog.With("repo", "ProfessionRepo")}
}

func (r *professionRepo) Create(dbc dbctx.Context, p *types.Profession) error {
	if p == nil {
		return nil
	}
	return dbc.DB(r.db).Create(p).Error
}

// CreateManyIfAbsent inserts rows whose slug is not taken yet.
func (r *professionRepo) CreateManyIfAbsent(dbc dbctx.Context, rows []*types.Profession) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *professionRepo) List(dbc dbctx.Context, includeInactive bool) ([]*types.Profession, error) {
	var out []*types.Profession
	q := dbc.DB(r.db).Model(&types.Profession{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("order_index ASC").Order("label ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetBySlug returns nil, nil when no live profession has slug.
func (r *professionRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Profession, error) {
	if slug == "" {
		return nil, nil
	}
	var row types.Profession
	err := dbc.DB(r.db).Where("slug = ?", slug).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *professionRepo) Update(dbc dbctx.Context, slug string, updates map[string]any) error {
	if slug == "" || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.Profession{}).
		Where("slug = ?", slug).
		Updates(updates).Error
}

// SoftDelete hides the profession from listings and assignment. Rows that
// reference the slug are left alone.
func (r *professionRepo) SoftDelete(dbc dbctx.Context, slug string) (bool, error) {
	if slug == "" {
		return false, nil
	}
	res := dbc.DB(r.db).Where("slug = ?", slug).Delete(&types.Profession{})
	return res.RowsAffected > 0, res.Error
}

// GetDeletedBySlug finds a soft-deleted profession still holding slug.
func (r *professionRepo) GetDeletedBySlug(dbc dbctx.Context, slug string) (*types.Profession, error) {
	var row types.Profession
	err := dbc.DB(r.db).Unscoped().
		Where("slug = ? AND deleted_at IS NOT NULL", slug).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Restore clears deleted_at and applies updates in one statement.
func (r *professionRepo) Restore(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["deleted_at"] = nil
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).Unscoped().
		Model(&types.Profession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *professionRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Unscoped().Model(&types.Profession{}).Count(&n).Error
	return n, err
}
