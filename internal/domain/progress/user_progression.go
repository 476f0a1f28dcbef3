package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserProgression holds accumulated XP per (user, profession). Niveau is
// rewritten from XPTotal on every award.
type UserProgression struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_progression_user_profession,priority:1" json:"user_id"`
	ProfessionSlug string    `gorm:"column:profession_slug;not null;uniqueIndex:idx_user_progression_user_profession,priority:2" json:"profession_slug"`
	XPTotal        int64     `gorm:"column:xp_total;not null" json:"xp_total"`
	Niveau         int       `gorm:"column:niveau;not null" json:"niveau"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgression) TableName() string { return "user_progression" }

func (p *UserProgression) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UserProgressionEvent records every XP award.
type UserProgressionEvent struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_progression_event_user,priority:1" json:"user_id"`
	ProfessionSlug string         `gorm:"column:profession_slug;not null" json:"profession_slug"`
	QuestKey       string         `gorm:"column:quest_key;not null" json:"quest_id"`
	AwardedXP      int64          `gorm:"column:awarded_xp;not null" json:"awarded_xp"`
	XPTotal        int64          `gorm:"column:xp_total;not null" json:"xp_total"`
	NiveauBefore   int            `gorm:"column:niveau_before;not null" json:"niveau_before"`
	NiveauAfter    int            `gorm:"column:niveau_after;not null" json:"niveau_after"`
	Payload        datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_progression_event_user,priority:2" json:"created_at"`
}

func (UserProgressionEvent) TableName() string { return "user_progression_event" }

func (e *UserProgressionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
