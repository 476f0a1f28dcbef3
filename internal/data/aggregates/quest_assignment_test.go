package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/recharge-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/recharge-backend/internal/data/repos"
	"github.com/yungbote/recharge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recharge-backend/internal/domain"
)

func newAssignment(t *testing.T, db *gorm.DB, runner aggregates.TxRunner, hooks aggregates.Hooks) aggregates.QuestAssignmentAggregate {
	t.Helper()
	log := testutil.Logger(t)
	return aggregates.NewQuestAssignmentAggregate(aggregates.QuestAssignmentAggregateDeps{
		Base:        aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks},
		Users:       repos.NewUserRepo(db, log),
		UserQuests:  repos.NewUserQuestRepo(db, log),
		Progression: repos.NewUserProgressionRepo(db, log),
	})
}

func seedQuests(slug string, titles ...string) []types.CatalogQuest {
	out := make([]types.CatalogQuest, 0, len(titles))
	for i, title := range titles {
		out = append(out, types.FromSeedQuest(types.SeedQuest{ProfessionSlug: slug, Title: title, PointsReward: 10}, i))
	}
	return out
}

func TestQuestAssignmentIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "assign@example.com")
	hooks := &aggtestutil.HooksRecorder{}
	agg := newAssignment(t, db, nil, hooks)

	in := aggregates.AssignQuestsInput{
		UserID:         u.ID,
		ProfessionSlug: "infirmier",
		Quests:         seedQuests("infirmier", "Hydratation", "Pause"),
		Idempotent:     true,
	}
	res, err := agg.Assign(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assigned)

	res, err = agg.Assign(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Assigned)

	assert.Equal(t, []string{"success", "success"}, hooks.Statuses())
}

func TestQuestAssignmentLegacyAppendsCopies(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "legacy@example.com")
	agg := newAssignment(t, db, nil, nil)

	in := aggregates.AssignQuestsInput{
		UserID:         u.ID,
		ProfessionSlug: "kine",
		Quests:         seedQuests("kine", "Stretch"),
	}
	for i := 0; i < 2; i++ {
		res, err := agg.Assign(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Assigned)
	}

	n, err := repos.NewUserQuestRepo(db, testutil.Logger(t)).CountByUserQuest(testutil.Ctx(t), u.ID, in.Quests[0].Identity.Key())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestQuestAssignmentSetProfession(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "switch@example.com")
	agg := newAssignment(t, db, nil, nil)

	_, err := agg.Assign(ctx, aggregates.AssignQuestsInput{
		UserID:         u.ID,
		ProfessionSlug: "medecin",
		Quests:         seedQuests("medecin", "Marche"),
		Idempotent:     true,
		SetProfession:  true,
	})
	require.NoError(t, err)

	var got types.User
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	require.NotNil(t, got.ProfessionSlug)
	assert.Equal(t, "medecin", *got.ProfessionSlug)

	prog, err := repos.NewUserProgressionRepo(db, testutil.Logger(t)).Get(testutil.Ctx(t), u.ID, "medecin")
	require.NoError(t, err)
	require.NotNil(t, prog)
	assert.Equal(t, 1, prog.Niveau)
}

func TestQuestAssignmentValidation(t *testing.T) {
	db := testutil.DB(t)
	hooks := &aggtestutil.HooksRecorder{}
	agg := newAssignment(t, db, nil, hooks)

	_, err := agg.Assign(context.Background(), aggregates.AssignQuestsInput{ProfessionSlug: "kine"})
	require.Error(t, err)
	assert.Equal(t, "invalid", aggregates.Status(err))
	assert.Empty(t, hooks.Statuses())
}

func TestQuestAssignmentRunnerFailures(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "fail@example.com")
	in := aggregates.AssignQuestsInput{
		UserID:         u.ID,
		ProfessionSlug: "kine",
		Quests:         seedQuests("kine", "Stretch"),
		Idempotent:     true,
	}

	runner := &aggtestutil.InjectedTxRunner{FailBegin: errors.New("begin failed")}
	hooks := &aggtestutil.HooksRecorder{}
	_, err := newAssignment(t, db, runner, hooks).Assign(ctx, in)
	require.Error(t, err)
	assert.Equal(t, []string{"failure"}, hooks.Statuses())
	assert.Equal(t, 1, runner.Calls)
	assert.Equal(t, 0, runner.Commits)

	// Transient failures replay the whole transaction before giving up.
	runner = &aggtestutil.InjectedTxRunner{FailCommit: aggregates.RetryableError("commit lost")}
	hooks = &aggtestutil.HooksRecorder{}
	_, err = newAssignment(t, db, runner, hooks).Assign(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, aggregates.ErrRetryable)
	assert.Equal(t, []string{"retryable"}, hooks.Statuses())
	assert.Equal(t, 3, hooks.Outcomes()[0].Attempts)
	assert.Equal(t, 3, runner.Rollbacks)
}
