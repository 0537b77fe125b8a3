package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/qaforum/models"
)

// ErrUsernameTaken is returned when registering a name that already exists.
var ErrUsernameTaken = errors.New("username already taken")

// CreateUser inserts a user, rejecting duplicate usernames.
func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser loads a user by id.
func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrap(err, "user", id)
	}
	return &u, nil
}

// FindUserByUsername loads a user by exact username.
func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return &u, nil
}

// SetUserRole changes the role of a user.
func (s *GormStore) SetUserRole(ctx context.Context, id uint, role string) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(u).Update("role", role).Error; err != nil {
		return nil, wrap(err, "set role of user", id)
	}
	u.Role = role
	return u, nil
}
