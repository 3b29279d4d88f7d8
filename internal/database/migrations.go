package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/chattu/internal/models"
)

// ChatTimelineIndex orders a chat's messages by creation time. Retention
// deletes and history reads both scan it.
const ChatTimelineIndex = "idx_messages_chat_created"

// AutoMigrate creates or updates the users and messages tables and the
// composite chat timeline index.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return err
	}

	migrator := db.Migrator()
	if migrator.HasIndex(&models.Message{}, ChatTimelineIndex) {
		return nil
	}
	stmt := fmt.Sprintf("CREATE INDEX %s ON messages (chat_id, created_at)", ChatTimelineIndex)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", ChatTimelineIndex, err)
	}
	return nil
}
