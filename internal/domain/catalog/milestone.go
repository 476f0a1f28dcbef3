package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressionMilestone is curated content describing what a tier asks of
// the user. It is looked up for display, never derived from XP.
type ProgressionMilestone struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfessionSlug string    `gorm:"column:profession_slug;not null;uniqueIndex:idx_milestone_profession_niveau,priority:1" json:"profession_slug"`
	Niveau         int       `gorm:"column:niveau;not null;uniqueIndex:idx_milestone_profession_niveau,priority:2" json:"niveau"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Icon           string    `gorm:"column:icon;not null;default:''" json:"icon"`
	Objective      string    `gorm:"column:objective;not null" json:"objective"`
	Reward         string    `gorm:"column:reward;not null;default:''" json:"reward"`
	OrderIndex     int       `gorm:"column:order_index;not null" json:"order_index"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ProgressionMilestone) TableName() string { return "progression_milestone" }

func (m *ProgressionMilestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
