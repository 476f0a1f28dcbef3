package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/repos"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	Profession  repos.ProfessionRepo
	Quest       repos.QuestRepo
	Milestone   repos.MilestoneRepo
	UserQuest   repos.UserQuestRepo
	Progression repos.UserProgressionRepo
	Event       repos.ProgressionEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		Profession:  repos.NewProfessionRepo(db, log),
		Quest:       repos.NewQuestRepo(db, log),
		Milestone:   repos.NewMilestoneRepo(db, log),
		UserQuest:   repos.NewUserQuestRepo(db, log),
		Progression: repos.NewUserProgressionRepo(db, log),
		Event:       repos.NewProgressionEventRepo(db, log),
	}
}
