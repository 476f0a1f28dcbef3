package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User anchors a user id and its current profession. Identity and
// authentication live outside this service.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name           string    `gorm:"not null;default:'';column:name" json:"name"`
	ProfessionSlug *string   `gorm:"column:profession_slug;index" json:"profession_slug"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
