package catalog

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type MilestoneRepo interface {
	Upsert(dbc dbctx.Context, m *types.ProgressionMilestone) error
	CreateManyIfAbsent(dbc dbctx.Context, rows []*types.ProgressionMilestone) (int64, error)
	ListByProfession(dbc dbctx.Context, slug string) ([]*types.ProgressionMilestone, error)
	Get(dbc dbctx.Context, slug string, niveau int) (*types.ProgressionMilestone, error)
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

// Upsert writes the milestone for (profession_slug, niveau), replacing the
// display fields of an existing one.
func (r *milestoneRepo) Upsert(dbc dbctx.Context, m *types.ProgressionMilestone) error {
	if m == nil {
		return nil
	}
	m.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profession_slug"}, {Name: "niveau"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "icon", "objective", "reward", "order_index", "updated_at",
			}),
		}).
		Create(m).Error
}

func (r *milestoneRepo) CreateManyIfAbsent(dbc dbctx.Context, rows []*types.ProgressionMilestone) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profession_slug"}, {Name: "niveau"}},
			DoNothing: true,
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *milestoneRepo) ListByProfession(dbc dbctx.Context, slug string) ([]*types.ProgressionMilestone, error) {
	var out []*types.ProgressionMilestone
	err := dbc.DB(r.db).
		Where("profession_slug = ?", slug).
		Order("niveau ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) Get(dbc dbctx.Context, slug string, niveau int) (*types.ProgressionMilestone, error) {
	var row types.ProgressionMilestone
	err := dbc.DB(r.db).
		Where("profession_slug = ? AND niveau = ?", slug, niveau).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
