package dbmysql

import "time"

// Follow and Like are presence-only edges: the row existing is the "on"
// state. The composite unique indexes are what serialize racing toggles.

type Follow struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID uint64    `gorm:"column:follower_id;not null;index:idx_follower_followee,unique" json:"follower_id"`
	FolloweeID uint64    `gorm:"column:followee_id;not null;index:idx_follower_followee,unique" json:"followee_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}

type Like struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"column:user_id;not null;index:idx_user_portfolio,unique" json:"user_id"`
	PortfolioID uint64    `gorm:"column:portfolio_id;not null;index:idx_user_portfolio,unique" json:"portfolio_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}
