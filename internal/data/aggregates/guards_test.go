package aggregates

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recharge-backend/internal/domain"
)

func TestCASGuardTransitionsOnce(t *testing.T) {
	db := testutil.DB(t)
	dbc := testutil.Ctx(t)
	u := testutil.SeedUser(t, dbc.Ctx, db, "cas@example.com")
	row := &types.UserProfessionQuest{
		UserID:         u.ID,
		QuestKey:       "seed:kine:stretch",
		ProfessionSlug: "kine",
		QuestSource:    string(types.QuestSourceSeed),
		Title:          "Stretch",
		Status:         types.QuestStatusPending,
	}
	require.NoError(t, db.Create(row).Error)

	g := NewCASGuard(db)
	pending := []string{string(types.QuestStatusPending)}
	done := map[string]any{"status": types.QuestStatusDone}

	ok, err := g.Transition(dbc, &types.UserProfessionQuest{}, row.ID, pending, done)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Transition(dbc, &types.UserProfessionQuest{}, row.ID, pending, done)
	require.NoError(t, err)
	assert.False(t, ok)

	var got types.UserProfessionQuest
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, types.QuestStatusDone, got.Status)
}

func TestCASGuardRejectsBadInput(t *testing.T) {
	g := NewCASGuard(testutil.DB(t))
	dbc := testutil.Ctx(t)

	_, err := g.Transition(dbc, nil, uuid.New(), []string{"pending"}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = g.Transition(dbc, &types.UserProfessionQuest{}, uuid.Nil, []string{"pending"}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = g.Transition(dbc, &types.UserProfessionQuest{}, uuid.New(), nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}
