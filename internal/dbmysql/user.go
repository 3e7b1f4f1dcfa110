package dbmysql

import "time"

// User is the slim author record the core needs: identity, profile media
// fields bound by the upload broker, and the denormalized follower counter.
// Registration and credentials live in the auth service, not here.
type User struct {
	UserID        uint64    `gorm:"primaryKey;autoIncrement;column:user_id" json:"user_id"`
	Handle        string    `gorm:"size:50;uniqueIndex;not null" json:"handle"`
	DisplayName   string    `gorm:"size:100" json:"display_name"`
	AvatarURL     string    `gorm:"size:500" json:"avatar_url"`
	BannerURL     string    `gorm:"size:500" json:"banner_url"`
	FollowerCount int64     `gorm:"not null;default:0" json:"follower_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
