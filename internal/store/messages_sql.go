package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/chattu/internal/models"
	"github.com/charlesng35/chattu/internal/realtime"
)

// SQLMessageStore persists messages through gorm.
type SQLMessageStore struct {
	db *gorm.DB
}

// NewSQLMessageStore constructs a store once the database handle is supplied.
func NewSQLMessageStore(db *gorm.DB) (*SQLMessageStore, error) {
	if db == nil {
		return nil, errors.New("sql message store: db is required")
	}
	return &SQLMessageStore{db: db}, nil
}

// PersistMessage inserts record. Replays of the same id are ignored.
func (s *SQLMessageStore) PersistMessage(ctx context.Context, record realtime.MessageRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("sql message store: message id is required")
	}
	message := models.Message{
		BaseModel:  models.BaseModel{ID: record.ID},
		ChatID:     record.ChatID,
		SenderID:   record.SenderID,
		SenderName: record.SenderName,
		Content:    record.Content,
	}
	if !record.CreatedAt.IsZero() {
		message.CreatedAt = record.CreatedAt.UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&message).Error
}

// CountByChat returns the number of stored messages for chatID.
func (s *SQLMessageStore) CountByChat(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	return count, err
}

// Get loads one message by id.
func (s *SQLMessageStore) Get(ctx context.Context, id string) (models.Message, error) {
	var message models.Message
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return message, ErrNotFound
	}
	return message, err
}

// DeleteOlderThan removes messages created before cutoff and returns how many went.
func (s *SQLMessageStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.Message{})
	return result.RowsAffected, result.Error
}
