package dbmysql

import (
	"time"

	"gorm.io/datatypes"
)

// Notification rows are written only by the fan-out's database observer,
// never directly by user-facing handlers.
type Notification struct {
	NotificationID uint64         `gorm:"primaryKey;autoIncrement;column:notification_id" json:"notification_id"`
	RecipientID    uint64         `gorm:"column:recipient_id;not null;index" json:"recipient_id"`
	ActorID        *uint64        `gorm:"column:actor_id" json:"actor_id,omitempty"`
	Type           string         `gorm:"size:30;not null" json:"type"`
	Header         string         `gorm:"size:200" json:"header"`
	Content        string         `gorm:"size:1000" json:"content"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	IsRead         bool           `gorm:"column:is_read;not null;default:false;index" json:"is_read"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
