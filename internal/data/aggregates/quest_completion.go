package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/recharge-backend/internal/data/repos"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/progression"
)

type CompleteQuestInput struct {
	UserID   uuid.UUID
	QuestKey string
	// PointsReward comes from the catalog, never from the assignment row.
	PointsReward int
	// FallbackProfessionSlug is used to report progression when the user
	// holds no record for the quest.
	FallbackProfessionSlug string
}

type CompleteQuestResult struct {
	// Completed is true only for the call that flipped a record to done.
	Completed      bool
	ProfessionSlug string
	Record         *types.UserProfessionQuest
	Outcome        progression.Outcome
}

type QuestCompletionAggregateDeps struct {
	Base BaseDeps

	Calculator  *progression.Calculator
	UserQuests  repos.UserQuestRepo
	Progression repos.UserProgressionRepo
	Events      repos.ProgressionEventRepo
}

type QuestCompletionAggregate interface {
	Complete(ctx context.Context, in CompleteQuestInput) (CompleteQuestResult, error)
}

type questCompletionAggregate struct {
	deps QuestCompletionAggregateDeps
}

func NewQuestCompletionAggregate(deps QuestCompletionAggregateDeps) QuestCompletionAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Calculator == nil {
		deps.Calculator = progression.MustCalculator(progression.NewDefaultConfig())
	}
	return &questCompletionAggregate{deps: deps}
}

func (a *questCompletionAggregate) Complete(ctx context.Context, in CompleteQuestInput) (CompleteQuestResult, error) {
	const op = "Progress.QuestCompletion.Complete"
	var out CompleteQuestResult
	if in.UserID == uuid.Nil || in.QuestKey == "" {
		return out, MapError(op, ValidationError("user id and quest key are required"))
	}
	if in.PointsReward < 0 {
		return out, MapError(op, ValidationError("points reward must not be negative"))
	}
	calc := a.deps.Calculator

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = CompleteQuestResult{ProfessionSlug: in.FallbackProfessionSlug}

		rec, err := a.deps.UserQuests.FindOldestPending(dbc, in.UserID, in.QuestKey)
		if err != nil {
			return err
		}
		if rec == nil {
			last, err := a.deps.UserQuests.FindLatest(dbc, in.UserID, in.QuestKey)
			if err != nil {
				return err
			}
			if last != nil {
				out.ProfessionSlug = last.ProfessionSlug
				out.Record = last
			}
			return a.unchanged(dbc, in.UserID, &out)
		}
		out.ProfessionSlug = rec.ProfessionSlug
		out.Record = rec

		now := time.Now().UTC()
		ok, err := a.deps.Base.CASGuard.Transition(dbc,
			&types.UserProfessionQuest{},
			rec.ID,
			[]string{string(types.QuestStatusPending)},
			map[string]any{"status": types.QuestStatusDone, "completed_at": now},
		)
		if err != nil {
			return err
		}
		if !ok {
			// A concurrent completion won the record.
			return a.unchanged(dbc, in.UserID, &out)
		}
		rec.Status = types.QuestStatusDone
		rec.CompletedAt = &now

		prog, err := a.deps.Progression.Ensure(dbc, in.UserID, rec.ProfessionSlug, 1)
		if err != nil {
			return err
		}
		award := int64(in.PointsReward)
		total, err := a.deps.Progression.AddXP(dbc, prog.ID, award)
		if err != nil {
			return err
		}
		outcome, err := calc.Award(total-award, award)
		if err != nil {
			return ValidationError(err.Error())
		}
		if err := a.deps.Progression.SetNiveau(dbc, prog.ID, outcome.After.Niveau); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"quest_title":  rec.Title,
			"quest_source": rec.QuestSource,
			"copy_no":      rec.CopyNo,
			"level_up":     outcome.LevelUp,
		})
		if err != nil {
			return fmt.Errorf("encode event payload: %w", err)
		}
		if err := a.deps.Events.Create(dbc, &types.UserProgressionEvent{
			UserID:         in.UserID,
			ProfessionSlug: rec.ProfessionSlug,
			QuestKey:       in.QuestKey,
			AwardedXP:      award,
			XPTotal:        total,
			NiveauBefore:   outcome.Before.Niveau,
			NiveauAfter:    outcome.After.Niveau,
			Payload:        datatypes.JSON(payload),
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		out.Completed = true
		out.Outcome = outcome
		return nil
	})
	if err != nil {
		return CompleteQuestResult{}, err
	}
	return out, nil
}

// unchanged fills out with a zero award over the current progression.
func (a *questCompletionAggregate) unchanged(dbc dbctx.Context, userID uuid.UUID, out *CompleteQuestResult) error {
	var xp int64
	if out.ProfessionSlug != "" {
		prog, err := a.deps.Progression.Get(dbc, userID, out.ProfessionSlug)
		if err != nil {
			return err
		}
		if prog != nil {
			xp = prog.XPTotal
		}
	}
	snap := a.deps.Calculator.Snapshot(xp)
	out.Completed = false
	out.Outcome = progression.Outcome{Before: snap, After: snap}
	return nil
}
