package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestType string

const (
	QuestTypeDaily   QuestType = "daily"
	QuestTypeWeekly  QuestType = "weekly"
	QuestTypeSpecial QuestType = "special"
)

func (t QuestType) Valid() bool {
	switch t {
	case QuestTypeDaily, QuestTypeWeekly, QuestTypeSpecial:
		return true
	}
	return false
}

type QuestSource string

const (
	QuestSourceAdmin QuestSource = "admin"
	QuestSourceSeed  QuestSource = "seed"
)

// Quest is an admin-authored catalog quest. A nil ProfessionSlug marks a
// generic quest that belongs to no profession pool.
type Quest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfessionSlug *string   `gorm:"column:profession_slug;index" json:"profession_slug"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Description    string    `gorm:"column:description;not null;default:''" json:"description"`
	Type           QuestType `gorm:"column:type;not null;default:daily" json:"type"`
	PointsReward   int       `gorm:"column:points_reward;not null" json:"points_reward"`
	Level          int       `gorm:"column:level;not null" json:"level"`
	OrderIndex     int       `gorm:"column:order_index;not null" json:"order_index"`
	IsEnabled      bool      `gorm:"column:is_enabled;not null" json:"is_enabled"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Quest) TableName() string { return "quest" }

func (q *Quest) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// SeedQuest is a recommended quest from the embedded seed catalog. It is
// never persisted and cannot be edited.
type SeedQuest struct {
	ProfessionSlug string    `yaml:"-" json:"profession_slug"`
	Title          string    `yaml:"title" json:"title"`
	Description    string    `yaml:"description" json:"description"`
	Type           QuestType `yaml:"type" json:"type"`
	PointsReward   int       `yaml:"points_reward" json:"points_reward"`
}

// CatalogQuest is the source-independent view the assignment and completion
// paths work with.
type CatalogQuest struct {
	Identity     QuestIdentity
	Source       QuestSource
	Title        string
	Description  string
	Type         QuestType
	PointsReward int
	Level        int
	OrderIndex   int
}

func FromAdminQuest(q *Quest) CatalogQuest {
	return CatalogQuest{
		Identity:     CatalogQuestID(q.ID),
		Source:       QuestSourceAdmin,
		Title:        q.Title,
		Description:  q.Description,
		Type:         q.Type,
		PointsReward: q.PointsReward,
		Level:        q.Level,
		OrderIndex:   q.OrderIndex,
	}
}

func FromSeedQuest(q SeedQuest, order int) CatalogQuest {
	typ := q.Type
	if !typ.Valid() {
		typ = QuestTypeDaily
	}
	return CatalogQuest{
		Identity:     SeedQuestID(q.ProfessionSlug, q.Title),
		Source:       QuestSourceSeed,
		Title:        q.Title,
		Description:  q.Description,
		Type:         typ,
		PointsReward: q.PointsReward,
		Level:        1,
		OrderIndex:   order,
	}
}
