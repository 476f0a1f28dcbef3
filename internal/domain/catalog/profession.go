package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profession struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug       string    `gorm:"column:slug;not null;uniqueIndex:idx_profession_slug" json:"slug"`
	Label      string    `gorm:"column:label;not null" json:"label"`
	Icon       string    `gorm:"column:icon;not null;default:''" json:"icon"`
	OrderIndex int       `gorm:"column:order_index;not null;index" json:"order_index"`
	IsActive   bool      `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profession) TableName() string { return "profession" }

func (p *Profession) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
