package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type QuestListFilter struct {
	ProfessionSlug  *string
	GenericOnly     bool
	IncludeDisabled bool
}

type QuestRepo interface {
	Create(dbc dbctx.Context, q *types.Quest) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quest, error)
	GetByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Quest, error)
	ListEnabledByProfession(dbc dbctx.Context, slug string) ([]*types.Quest, error)
	List(dbc dbctx.Context, f QuestListFilter) ([]*types.Quest, error)
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type questRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestRepo(db *gorm.DB, baseLog *logger.Logger) QuestRepo {
	return &questRepo{db: db, log: baseLog.With("repo", "QuestRepo")}
}

func (r *questRepo) Create(dbc dbctx.Context, q *types.Quest) error {
	if q == nil {
		return nil
	}
	return dbc.DB(r.db).Create(q).Error
}

func (r *questRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quest, error) {
	return r.get(dbc.DB(r.db), id)
}

// GetByIDUnscoped also returns soft-deleted quests so records assigned before
// a deletion can still be completed.
func (r *questRepo) GetByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Quest, error) {
	return r.get(dbc.DB(r.db).Unscoped(), id)
}

func (r *questRepo) get(t *gorm.DB, id uuid.UUID) (*types.Quest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Quest
	if err := t.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *questRepo) ListEnabledByProfession(dbc dbctx.Context, slug string) ([]*types.Quest, error) {
	var out []*types.Quest
	err := dbc.DB(r.db).
		Where("profession_slug = ? AND is_enabled = ?", slug, true).
		Order("order_index ASC").
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questRepo) List(dbc dbctx.Context, f QuestListFilter) ([]*types.Quest, error) {
	var out []*types.Quest
	q := dbc.DB(r.db).Model(&types.Quest{})
	switch {
	case f.GenericOnly:
		q = q.Where("profession_slug IS NULL")
	case f.ProfessionSlug != nil:
		q = q.Where("profession_slug = ?", *f.ProfessionSlug)
	}
	if !f.IncludeDisabled {
		q = q.Where("is_enabled = ?", true)
	}
	if err := q.Order("order_index ASC").Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questRepo) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.Quest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *questRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Quest{})
	return res.RowsAffected > 0, res.Error
}
