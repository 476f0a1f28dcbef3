package progress

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type ProgressionEventRepo interface {
	Create(dbc dbctx.Context, e *types.UserProgressionEvent) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserProgressionEvent, error)
}

type progressionEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressionEventRepo(db *gorm.DB, baseLog *logger.Logger) ProgressionEventRepo {
	return &progressionEventRepo{db: db, log: baseLog.With("repo", "ProgressionEventRepo")}
}

func (r *progressionEventRepo) Create(dbc dbctx.Context, e *types.UserProgressionEvent) error {
	if e == nil {
		return nil
	}
	return dbc.DB(r.db).Create(e).Error
}

func (r *progressionEventRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserProgressionEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []*types.UserProgressionEvent
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
