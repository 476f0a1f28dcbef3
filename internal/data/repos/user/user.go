package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type UserRepo interface {
	// CreateIfAbsent inserts u unless its email is taken. It reports whether
	// a row was written; u.ID is only meaningful when it was.
	CreateIfAbsent(dbc dbctx.Context, u *types.User) (bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	UpdateProfession(dbc dbctx.Context, id uuid.UUID, professionSlug string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (r *userRepo) CreateIfAbsent(dbc dbctx.Context, u *types.User) (bool, error) {
	u.Email = normalizeEmail(u.Email)
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetByID returns nil, nil for an unknown user.
func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return r.first(dbc, "email = ?", email)
}

func (r *userRepo) first(dbc dbctx.Context, query string, arg any) (*types.User, error) {
	var u types.User
	err := dbc.DB(r.db).Where(query, arg).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfession returns gorm.ErrRecordNotFound for an unknown user.
func (r *userRepo) UpdateProfession(dbc dbctx.Context, id uuid.UUID, professionSlug string) error {
	res := dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("profession_slug", professionSlug)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
