package progress

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type UserQuestRepo interface {
	// InsertIfAbsent writes copy 0 unless it already exists. It reports
	// whether a row was inserted.
	InsertIfAbsent(dbc dbctx.Context, row *types.UserProfessionQuest) (bool, error)
	// InsertCopy always writes a row, at copy 0 when free and max+1 otherwise.
	InsertCopy(dbc dbctx.Context, row *types.UserProfessionQuest) error
	FindOldestPending(dbc dbctx.Context, userID uuid.UUID, questKey string) (*types.UserProfessionQuest, error)
	FindLatest(dbc dbctx.Context, userID uuid.UUID, questKey string) (*types.UserProfessionQuest, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, professionSlug string) ([]*types.UserProfessionQuest, error)
	CountByUserQuest(dbc dbctx.Context, userID uuid.UUID, questKey string) (int64, error)
}

type userQuestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserQuestRepo(db *gorm.DB, baseLog *logger.Logger) UserQuestRepo {
	return &userQuestRepo{db: db, log: baseLog.With("repo", "UserQuestRepo")}
}

func (r *userQuestRepo) InsertIfAbsent(dbc dbctx.Context, row *types.UserProfessionQuest) (bool, error) {
	if row == nil {
		return false, nil
	}
	prepareAssignment(row)
	row.CopyNo = 0
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "quest_key"}, {Name: "copy_no"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userQuestRepo) InsertCopy(dbc dbctx.Context, row *types.UserProfessionQuest) error {
	if row == nil {
		return nil
	}
	prepareAssignment(row)
	t := dbc.DB(r.db)

	var maxCopy sql.NullInt64
	if err := t.Model(&types.UserProfessionQuest{}).
		Where("user_id = ? AND quest_key = ?", row.UserID, row.QuestKey).
		Select("MAX(copy_no)").
		Row().Scan(&maxCopy); err != nil {
		return err
	}
	row.CopyNo = 0
	if maxCopy.Valid {
		row.CopyNo = int(maxCopy.Int64) + 1
	}
	return t.Create(row).Error
}

func prepareAssignment(row *types.UserProfessionQuest) {
	if row.Status == "" {
		row.Status = types.QuestStatusPending
	}
	if row.AssignedAt.IsZero() {
		row.AssignedAt = time.Now().UTC()
	}
}

// FindOldestPending returns the earliest assigned pending copy, or nil.
func (r *userQuestRepo) FindOldestPending(dbc dbctx.Context, userID uuid.UUID, questKey string) (*types.UserProfessionQuest, error) {
	var row types.UserProfessionQuest
	err := dbc.DB(r.db).
		Where("user_id = ? AND quest_key = ? AND status = ?", userID, questKey, types.QuestStatusPending).
		Order("assigned_at ASC").
		Order("copy_no ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// FindLatest returns the most recently assigned copy in any status, or nil.
func (r *userQuestRepo) FindLatest(dbc dbctx.Context, userID uuid.UUID, questKey string) (*types.UserProfessionQuest, error) {
	var row types.UserProfessionQuest
	err := dbc.DB(r.db).
		Where("user_id = ? AND quest_key = ?", userID, questKey).
		Order("assigned_at DESC").
		Order("copy_no DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userQuestRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, professionSlug string) ([]*types.UserProfessionQuest, error) {
	var out []*types.UserProfessionQuest
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if professionSlug != "" {
		q = q.Where("profession_slug = ?", professionSlug)
	}
	if err := q.Order("assigned_at ASC").Order("copy_no ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userQuestRepo) CountByUserQuest(dbc dbctx.Context, userID uuid.UUID, questKey string) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.UserProfessionQuest{}).
		Where("user_id = ? AND quest_key = ?", userID, questKey).
		Count(&n).Error
	return n, err
}
