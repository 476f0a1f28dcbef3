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
	"github.com/yungbote/recharge-backend/internal/realtime"
)

func TestCompleteTwiceAwardsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "fresh@example.com")
	_, err := h.assignment.Assign(ctx, u.ID, "infirmier", true)
	require.NoError(t, err)

	questID := types.SeedQuestID("infirmier", "Hydratation 2L au service").Key()

	res, err := h.completion.Complete(ctx, u.ID, questID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, res.AwardedXP)
	assert.Equal(t, 10, res.NewProgressionXP)
	assert.False(t, res.LevelUp)

	res, err = h.completion.Complete(ctx, u.ID, questID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.AwardedXP)
	assert.Equal(t, 10, res.NewProgressionXP)
	assert.False(t, res.LevelUp)

	msgs := h.bus.Published()
	var completed int
	for _, m := range msgs {
		if m.Event == realtime.EventQuestCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestCompleteUsesCatalogReward(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "reward@example.com")

	q, err := h.catalog.CreateQuest(adminCtx(), QuestInput{ProfessionSlug: ptr("kine"), Title: "Gainage", PointsReward: 25})
	require.NoError(t, err)
	_, err = h.assignment.Assign(ctx, u.ID, "kine", true)
	require.NoError(t, err)

	_, err = h.catalog.UpdateQuest(adminCtx(), q.ID, QuestPatch{PointsReward: ptr(60)})
	require.NoError(t, err)

	res, err := h.completion.Complete(ctx, u.ID, q.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 60, res.AwardedXP)
	assert.Equal(t, types.CatalogQuestID(q.ID).Key(), res.QuestID)
}

func TestCompleteLevelUpAndSaturation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "tier@example.com")

	q, err := h.catalog.CreateQuest(adminCtx(), QuestInput{ProfessionSlug: ptr("kine"), Title: "Marathon", PointsReward: 250})
	require.NoError(t, err)

	var levelUps int
	for i := 0; i < 3; i++ {
		_, err := h.assignment.Assign(ctx, u.ID, "kine", false)
		require.NoError(t, err)
		res, err := h.completion.Complete(ctx, u.ID, q.ID.String())
		require.NoError(t, err)
		assert.EqualValues(t, 250, res.AwardedXP)
		if res.LevelUp {
			levelUps++
		}
		assert.LessOrEqual(t, res.Niveau, res.TierMax)
		assert.LessOrEqual(t, res.NewProgressionXP, 100)
	}
	// 250 -> tier 3, 500 -> tier 5, 750 stays at tier 5.
	assert.Equal(t, 2, levelUps)

	full, err := h.progression.Full(ctx, "kine", &u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, full.ProgressionNiveau)
	assert.Equal(t, 100, full.ProgressionXP)
	assert.EqualValues(t, 750, full.XPTotal)
	assert.Equal(t, "40 jours suivis", full.NextObjective)
}

func TestCompleteUnknownQuestOrUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "unknown@example.com")

	for _, id := range []string{"garbage", uuid.NewString(), "seed:kine:nope"} {
		_, err := h.completion.Complete(ctx, u.ID, id)
		assert.ErrorIs(t, err, apierr.ErrNotFound, id)
	}

	_, err := h.completion.Complete(ctx, uuid.New(), types.SeedQuestID("kine", "3 exercices de mobilité personnelle").Key())
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestCompleteKnownQuestNeverAssigned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "never@example.com")

	res, err := h.completion.Complete(ctx, u.ID, types.SeedQuestID("kine", "3 exercices de mobilité personnelle").Key())
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.AwardedXP)
	assert.Equal(t, 1, res.Niveau)
	assert.Equal(t, "kine", res.ProfessionSlug)
	assert.Empty(t, h.bus.Published())
}
