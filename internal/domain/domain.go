package domain

import (
	"github.com/yungbote/recharge-backend/internal/domain/catalog"
	"github.com/yungbote/recharge-backend/internal/domain/progress"
	"github.com/yungbote/recharge-backend/internal/domain/user"
)

// Catalog
type (
	Profession           = catalog.Profession
	Quest                = catalog.Quest
	SeedQuest            = catalog.SeedQuest
	CatalogQuest         = catalog.CatalogQuest
	QuestIdentity        = catalog.QuestIdentity
	QuestType            = catalog.QuestType
	QuestSource          = catalog.QuestSource
	ProgressionMilestone = catalog.ProgressionMilestone
)

// Progress
type (
	UserProfessionQuest  = progress.UserProfessionQuest
	UserProgression      = progress.UserProgression
	UserProgressionEvent = progress.UserProgressionEvent
	QuestStatus          = progress.QuestStatus
)

// User
type (
	User = user.User
)

const (
	QuestTypeDaily   = catalog.QuestTypeDaily
	QuestTypeWeekly  = catalog.QuestTypeWeekly
	QuestTypeSpecial = catalog.QuestTypeSpecial

	IdentityCatalog = catalog.IdentityCatalog
	IdentitySeed    = catalog.IdentitySeed

	QuestSourceAdmin = catalog.QuestSourceAdmin
	QuestSourceSeed  = catalog.QuestSourceSeed

	QuestStatusPending = progress.StatusPending
	QuestStatusDone    = progress.StatusDone
)

var (
	FromAdminQuest     = catalog.FromAdminQuest
	FromSeedQuest      = catalog.FromSeedQuest
	CatalogQuestID     = catalog.CatalogQuestID
	SeedQuestID        = catalog.SeedQuestID
	ParseQuestIdentity = catalog.ParseQuestIdentity

	ErrInvalidQuestIdentity = catalog.ErrInvalidQuestIdentity
)
