package aggregates_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/recharge-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/recharge-backend/internal/data/repos"
	"github.com/yungbote/recharge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/progression"
)

func newCompletion(t *testing.T, db *gorm.DB, hooks aggregates.Hooks) aggregates.QuestCompletionAggregate {
	t.Helper()
	log := testutil.Logger(t)
	return aggregates.NewQuestCompletionAggregate(aggregates.QuestCompletionAggregateDeps{
		Base:        aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks},
		Calculator:  progression.MustCalculator(progression.NewDefaultConfig()),
		UserQuests:  repos.NewUserQuestRepo(db, log),
		Progression: repos.NewUserProgressionRepo(db, log),
		Events:      repos.NewProgressionEventRepo(db, log),
	})
}

func assignOne(t *testing.T, db *gorm.DB, u *types.User, slug, title string, idempotent bool) types.CatalogQuest {
	t.Helper()
	q := seedQuests(slug, title)
	_, err := newAssignment(t, db, nil, nil).Assign(context.Background(), aggregates.AssignQuestsInput{
		UserID:         u.ID,
		ProfessionSlug: slug,
		Quests:         q,
		Idempotent:     idempotent,
	})
	require.NoError(t, err)
	return q[0]
}

func TestQuestCompletionAwardsOnce(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "done@example.com")
	q := assignOne(t, db, u, "infirmier", "Hydratation", true)
	hooks := &aggtestutil.HooksRecorder{}
	agg := newCompletion(t, db, hooks)

	in := aggregates.CompleteQuestInput{UserID: u.ID, QuestKey: q.Identity.Key(), PointsReward: 10}
	res, err := agg.Complete(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "infirmier", res.ProfessionSlug)
	assert.EqualValues(t, 10, res.Outcome.Awarded)
	assert.EqualValues(t, 10, res.Outcome.After.XPTotal)
	assert.Equal(t, 10, res.Outcome.After.ProgressXP)
	assert.False(t, res.Outcome.LevelUp)

	res, err = agg.Complete(ctx, in)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.EqualValues(t, 0, res.Outcome.Awarded)
	assert.EqualValues(t, 10, res.Outcome.After.XPTotal)
	assert.Equal(t, 10, res.Outcome.After.ProgressXP)

	events, err := repos.NewProgressionEventRepo(db, testutil.Logger(t)).ListByUser(testutil.Ctx(t), u.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.EqualValues(t, 10, events[0].AwardedXP)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "Hydratation", payload["quest_title"])
	assert.EqualValues(t, 0, payload["copy_no"])
	assert.Equal(t, false, payload["level_up"])
	assert.Equal(t, []string{"success", "success"}, hooks.Statuses())
}

func TestQuestCompletionLevelUp(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "lvl@example.com")
	q := assignOne(t, db, u, "kine", "Stretch", true)

	prog, err := repos.NewUserProgressionRepo(db, testutil.Logger(t)).Ensure(testutil.Ctx(t), u.ID, "kine", 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&types.UserProgression{}).Where("id = ?", prog.ID).Update("xp_total", 95).Error)

	res, err := newCompletion(t, db, nil).Complete(ctx, aggregates.CompleteQuestInput{
		UserID: u.ID, QuestKey: q.Identity.Key(), PointsReward: 10,
	})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, res.Outcome.LevelUp)
	assert.Equal(t, 1, res.Outcome.Before.Niveau)
	assert.Equal(t, 2, res.Outcome.After.Niveau)
	assert.EqualValues(t, 105, res.Outcome.After.XPTotal)
}

func TestQuestCompletionUnassignedQuest(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "none@example.com")

	res, err := newCompletion(t, db, nil).Complete(ctx, aggregates.CompleteQuestInput{
		UserID:                 u.ID,
		QuestKey:               "seed:kine:stretch",
		PointsReward:           10,
		FallbackProfessionSlug: "kine",
	})
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Nil(t, res.Record)
	assert.Equal(t, "kine", res.ProfessionSlug)
	assert.EqualValues(t, 0, res.Outcome.After.XPTotal)
	assert.Equal(t, 1, res.Outcome.After.Niveau)
}

func TestQuestCompletionLegacyCopiesOldestFirst(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "copies@example.com")
	assignOne(t, db, u, "kine", "Stretch", false)
	q := assignOne(t, db, u, "kine", "Stretch", false)
	agg := newCompletion(t, db, nil)
	in := aggregates.CompleteQuestInput{UserID: u.ID, QuestKey: q.Identity.Key(), PointsReward: 15}

	for i, wantTotal := range []int64{15, 30, 30} {
		res, err := agg.Complete(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, i < 2, res.Completed, "call %d", i)
		assert.Equal(t, wantTotal, res.Outcome.After.XPTotal, "call %d", i)
		if i < 2 {
			assert.Equal(t, i, res.Record.CopyNo)
		}
	}
}

func TestQuestCompletionConcurrentCallsAwardOnce(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "race@example.com")
	q := assignOne(t, db, u, "infirmier", "Pause", true)
	agg := newCompletion(t, db, nil)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]aggregates.CompleteQuestResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = agg.Complete(ctx, aggregates.CompleteQuestInput{
				UserID: u.ID, QuestKey: q.Identity.Key(), PointsReward: 10,
			})
		}(i)
	}
	wg.Wait()

	completed := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Completed {
			completed++
		}
	}
	assert.Equal(t, 1, completed)

	prog, err := repos.NewUserProgressionRepo(db, testutil.Logger(t)).Get(testutil.Ctx(t), u.ID, "infirmier")
	require.NoError(t, err)
	require.NotNil(t, prog)
	assert.EqualValues(t, 10, prog.XPTotal)
}

func TestQuestCompletionValidation(t *testing.T) {
	db := testutil.DB(t)
	_, err := newCompletion(t, db, nil).Complete(context.Background(), aggregates.CompleteQuestInput{QuestKey: "x"})
	require.Error(t, err)
	assert.Equal(t, "invalid", aggregates.Status(err))
}
