package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestStatus string

const (
	StatusPending QuestStatus = "pending"
	StatusDone    QuestStatus = "done"
)

// UserProfessionQuest is one assigned quest. Rows written in idempotent mode
// always use CopyNo 0, so the unique index makes them one per
// (user, quest). Legacy non-idempotent assignment appends higher copies.
type UserProfessionQuest struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_upq_user_quest_copy,priority:1;index:idx_upq_user_profession,priority:1" json:"user_id"`
	QuestKey       string      `gorm:"column:quest_key;not null;uniqueIndex:idx_upq_user_quest_copy,priority:2" json:"quest_id"`
	CopyNo         int         `gorm:"column:copy_no;not null;uniqueIndex:idx_upq_user_quest_copy,priority:3" json:"copy_no"`
	ProfessionSlug string      `gorm:"column:profession_slug;not null;index:idx_upq_user_profession,priority:2" json:"profession_slug"`
	QuestSource    string      `gorm:"column:quest_source;not null" json:"source"`
	Title          string      `gorm:"column:title;not null" json:"title"`
	Status         QuestStatus `gorm:"column:status;not null;index" json:"status"`
	AssignedAt     time.Time   `gorm:"column:assigned_at;not null" json:"assigned_at"`
	CompletedAt    *time.Time  `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (UserProfessionQuest) TableName() string { return "user_profession_quest" }

func (q *UserProfessionQuest) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
