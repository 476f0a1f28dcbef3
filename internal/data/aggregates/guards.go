package aggregates

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
)

// CASGuard flips row state only from an expected prior state, so two
// concurrent writers cannot both observe the same transition.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// Transition applies updates to the row of model with the given id when its
// status is one of from. It reports whether this call made the transition.
func (g CASGuard) Transition(dbc dbctx.Context, model any, id uuid.UUID, from []string, updates map[string]any) (bool, error) {
	if dbc.Tx == nil && g.db == nil {
		return false, ValidationError("cas: no db or transaction")
	}
	if model == nil || id == uuid.Nil {
		return false, ValidationError("cas: model and id are required")
	}
	if len(from) == 0 {
		return false, ValidationError("cas: no source status")
	}
	res := dbc.DB(g.db).Model(model).
		Where("id = ?", id).
		Where("status IN ?", from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
