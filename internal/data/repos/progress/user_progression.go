package progress

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

type UserProgressionRepo interface {
	// Ensure returns the row for (user, profession), creating it at xp 0 and
	// the given niveau when missing.
	Ensure(dbc dbctx.Context, userID uuid.UUID, professionSlug string, niveau int) (*types.UserProgression, error)
	Get(dbc dbctx.Context, userID uuid.UUID, professionSlug string) (*types.UserProgression, error)
	// AddXP increments xp_total in place and returns the new total.
	AddXP(dbc dbctx.Context, id uuid.UUID, xp int64) (int64, error)
	SetNiveau(dbc dbctx.Context, id uuid.UUID, niveau int) error
}

type userProgressionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressionRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressionRepo {
	return &userProgressionRepo{db: db, log: baseLog.With("repo", "UserProgressionRepo")}
}

func (r *userProgressionRepo) Ensure(dbc dbctx.Context, userID uuid.UUID, professionSlug string, niveau int) (*types.UserProgression, error) {
	t := dbc.DB(r.db)
	now := time.Now().UTC()
	row := &types.UserProgression{
		UserID:         userID,
		ProfessionSlug: professionSlug,
		XPTotal:        0,
		Niveau:         niveau,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "profession_slug"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, professionSlug)
}

func (r *userProgressionRepo) Get(dbc dbctx.Context, userID uuid.UUID, professionSlug string) (*types.UserProgression, error) {
	var row types.UserProgression
	err := dbc.DB(r.db).
		Where("user_id = ? AND profession_slug = ?", userID, professionSlug).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userProgressionRepo) AddXP(dbc dbctx.Context, id uuid.UUID, xp int64) (int64, error) {
	t := dbc.DB(r.db)
	res := t.Model(&types.UserProgression{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"xp_total":   gorm.Expr("xp_total + ?", xp),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var total int64
	if err := t.Model(&types.UserProgression{}).
		Where("id = ?", id).
		Select("xp_total").
		Row().Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *userProgressionRepo) SetNiveau(dbc dbctx.Context, id uuid.UUID, niveau int) error {
	return dbc.DB(r.db).
		Model(&types.UserProgression{}).
		Where("id = ?", id).
		Update("niveau", niveau).Error
}
