package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/recharge-backend/internal/data/repos"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
)

type AssignQuestsInput struct {
	UserID         uuid.UUID
	ProfessionSlug string
	Quests         []types.CatalogQuest
	Idempotent     bool
	// SetProfession also moves the user onto ProfessionSlug and makes sure a
	// progression row exists, in the same transaction as the assignment.
	SetProfession bool
}

type AssignQuestsResult struct {
	Assigned int
}

type QuestAssignmentAggregateDeps struct {
	Base BaseDeps

	Users       repos.UserRepo
	UserQuests  repos.UserQuestRepo
	Progression repos.UserProgressionRepo
}

type QuestAssignmentAggregate interface {
	Assign(ctx context.Context, in AssignQuestsInput) (AssignQuestsResult, error)
}

type questAssignmentAggregate struct {
	deps QuestAssignmentAggregateDeps
}

func NewQuestAssignmentAggregate(deps QuestAssignmentAggregateDeps) QuestAssignmentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &questAssignmentAggregate{deps: deps}
}

func (a *questAssignmentAggregate) Assign(ctx context.Context, in AssignQuestsInput) (AssignQuestsResult, error) {
	const op = "Progress.QuestAssignment.Assign"
	var out AssignQuestsResult
	if in.UserID == uuid.Nil || in.ProfessionSlug == "" {
		return out, MapError(op, ValidationError("user id and profession slug are required"))
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = AssignQuestsResult{}
		if in.SetProfession {
			if err := a.deps.Users.UpdateProfession(dbc, in.UserID, in.ProfessionSlug); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		for _, q := range in.Quests {
			row := &types.UserProfessionQuest{
				UserID:         in.UserID,
				QuestKey:       q.Identity.Key(),
				ProfessionSlug: in.ProfessionSlug,
				QuestSource:    string(q.Source),
				Title:          q.Title,
				Status:         types.QuestStatusPending,
				AssignedAt:     now,
			}
			if in.Idempotent {
				inserted, err := a.deps.UserQuests.InsertIfAbsent(dbc, row)
				if err != nil {
					return err
				}
				if inserted {
					out.Assigned++
				}
				continue
			}
			if err := a.deps.UserQuests.InsertCopy(dbc, row); err != nil {
				return err
			}
			out.Assigned++
		}
		if in.SetProfession {
			if _, err := a.deps.Progression.Ensure(dbc, in.UserID, in.ProfessionSlug, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return AssignQuestsResult{}, err
	}
	a.deps.Base.Log.Debug("quests assigned",
		"user_id", in.UserID,
		"profession_slug", in.ProfessionSlug,
		"idempotent", in.Idempotent,
		"assigned", out.Assigned,
	)
	return out, nil
}
