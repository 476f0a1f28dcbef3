package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
)

func TestFullProgressionDefaults(t *testing.T) {
	h := newHarness(t)

	full, err := h.progression.Full(context.Background(), "infirmier", nil)
	require.NoError(t, err)
	assert.Equal(t, FullProgression{
		ProfessionSlug:    "infirmier",
		ProfessionLabel:   "Infirmier·ère",
		ProfessionIcon:    "🩺",
		ProgressionNiveau: 1,
		ProgressionXP:     0,
		NextObjective:     "2L d'eau/jour × 5 jours",
		TierMax:           5,
	}, full)
}

func TestFullProgressionCreatesRowLazily(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "lazy@example.com")

	_, err := h.progression.Full(ctx, "kine", &u.ID)
	require.NoError(t, err)

	var n int64
	require.NoError(t, h.db.Model(&types.UserProgression{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestFullProgressionErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.progression.Full(ctx, "astronaute", nil)
	assert.ErrorIs(t, err, apierr.ErrNotFound)

	id := uuid.New()
	_, err = h.progression.Full(ctx, "kine", &id)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestFullProgressionWithoutMilestone(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.CreateProfession(adminCtx(), ProfessionInput{Label: "Pompier"})
	require.NoError(t, err)

	full, err := h.progression.Full(context.Background(), "pompier", nil)
	require.NoError(t, err)
	assert.Equal(t, "", full.NextObjective)
}

func TestProgressionEventsAfterCompletion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "events@example.com")
	_, err := h.assignment.Assign(ctx, u.ID, "kine", true)
	require.NoError(t, err)
	_, err = h.completion.Complete(ctx, u.ID, types.SeedQuestID("kine", "3 exercices de mobilité personnelle").Key())
	require.NoError(t, err)

	events, err := h.progression.Events(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.EqualValues(t, 15, events[0].AwardedXP)
}
