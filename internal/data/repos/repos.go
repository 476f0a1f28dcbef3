package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/repos/catalog"
	"github.com/yungbote/recharge-backend/internal/data/repos/progress"
	"github.com/yungbote/recharge-backend/internal/data/repos/user"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ProfessionRepo = catalog.ProfessionRepo
type QuestRepo = catalog.QuestRepo
type QuestListFilter = catalog.QuestListFilter
type MilestoneRepo = catalog.MilestoneRepo

type UserQuestRepo = progress.UserQuestRepo
type UserProgressionRepo = progress.UserProgressionRepo
type ProgressionEventRepo = progress.ProgressionEventRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewProfessionRepo(db *gorm.DB, baseLog *logger.Logger) ProfessionRepo {
	return catalog.NewProfessionRepo(db, baseLog)
}
func NewQuestRepo(db *gorm.DB, baseLog *logger.Logger) QuestRepo {
	return catalog.NewQuestRepo(db, baseLog)
}
func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return catalog.NewMilestoneRepo(db, baseLog)
}

func NewUserQuestRepo(db *gorm.DB, baseLog *logger.Logger) UserQuestRepo {
	return progress.NewUserQuestRepo(db, baseLog)
}
func NewUserProgressionRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressionRepo {
	return progress.NewUserProgressionRepo(db, baseLog)
}
func NewProgressionEventRepo(db *gorm.DB, baseLog *logger.Logger) ProgressionEventRepo {
	return progress.NewProgressionEventRepo(db, baseLog)
}
