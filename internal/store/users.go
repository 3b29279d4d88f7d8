package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/chattu/internal/models"
)

// UserDirectory resolves account records for the handshake authenticator.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) (*UserDirectory, error) {
	if db == nil {
		return nil, errors.New("user directory: db is required")
	}
	return &UserDirectory{db: db}, nil
}

// FindUser returns the user with id or ErrNotFound.
func (d *UserDirectory) FindUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	id = strings.TrimSpace(id)
	if id == "" {
		return user, ErrNotFound
	}
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}
