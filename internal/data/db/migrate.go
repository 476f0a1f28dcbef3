package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/recharge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&types.Profession{},
		&types.Quest{},
		&types.ProgressionMilestone{},

		// Users
		&types.User{},

		// Assignment + progression
		&types.UserProfessionQuest{},
		&types.UserProgression{},
		&types.UserProgressionEvent{},
	)
}

// EnsureProgressIndexes adds indexes gorm tags cannot express.
func EnsureProgressIndexes(db *gorm.DB) error {
	// Completion looks for the oldest pending copy of a quest per user.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_upq_pending_lookup
		ON user_profession_quest (user_id, quest_key, status, copy_no);
	`).Error; err != nil {
		return fmt.Errorf("create idx_upq_pending_lookup: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_quest_profession_enabled
		ON quest (profession_slug, is_enabled, order_index);
	`).Error; err != nil {
		return fmt.Errorf("create idx_quest_profession_enabled: %w", err)
	}
	return nil
}

// Migrate runs the schema migration and index setup.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := EnsureProgressIndexes(db); err != nil {
		return err
	}
	return nil
}
