package dbmysql

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// UserRepository is the thin "resolve user" collaborator the core needs.
// Account lifecycle is owned elsewhere.
type UserRepository interface {
	ByID(ctx context.Context, userID uint64) (*User, error)
	ByHandle(ctx context.Context, handle string) (*User, error)
	SetAvatarURL(ctx context.Context, userID uint64, url string) error
	SetBannerURL(ctx context.Context, userID uint64, url string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ByID(ctx context.Context, userID uint64) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ByHandle(ctx context.Context, handle string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetAvatarURL(ctx context.Context, userID uint64, url string) error {
	return r.setProfileField(ctx, userID, "avatar_url", url)
}

func (r *userRepository) SetBannerURL(ctx context.Context, userID uint64, url string) error {
	return r.setProfileField(ctx, userID, "banner_url", url)
}

func (r *userRepository) setProfileField(ctx context.Context, userID uint64, column, url string) error {
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{column: url, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
