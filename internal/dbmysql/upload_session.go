package dbmysql

import "time"

// UploadSession is a time-boxed grant to write one object into the store,
// consumed exactly once by a matching confirm call.
type UploadSession struct {
	SessionID         string    `gorm:"primaryKey;size:36;column:session_id" json:"session_id"`
	UploaderID        uint64    `gorm:"column:uploader_id;not null;index" json:"uploader_id"`
	IntendedUse       string    `gorm:"size:20;not null" json:"intended_use"` // avatar, banner, thumbnail, block_image
	ObjectKey         string    `gorm:"size:255;not null;uniqueIndex" json:"object_key"`
	ContentType       string    `gorm:"size:100;not null" json:"content_type"`
	Size              int64     `gorm:"not null" json:"size"`
	TargetPortfolioID *uint64   `gorm:"column:target_portfolio_id" json:"target_portfolio_id,omitempty"`
	TargetBlockID     *uint64   `gorm:"column:target_block_id" json:"target_block_id,omitempty"`
	Consumed          bool      `gorm:"not null;default:false" json:"consumed"`
	ExpiresAt         time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UploadSession) TableName() string {
	return "upload_sessions"
}
