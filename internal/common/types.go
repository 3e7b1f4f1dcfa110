package common

import (
	"time"
)

type NotificationType string

const (
	NewFollowerType     NotificationType = "new_follower"
	ContentLikedType    NotificationType = "content_liked"
	ContentApprovedType NotificationType = "content_approved"
	ContentRejectedType NotificationType = "content_rejected"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NewFollowerType, ContentLikedType, ContentApprovedType, ContentRejectedType:
		return true
	}
	return false
}

type NotificationMetadata map[string]interface{}

// NotificationEvent is what the state machine and the social service hand to
// the fan-out. Observers decide how to persist or forward it.
type NotificationEvent struct {
	Type        NotificationType
	RecipientID uint64
	ActorID     *uint64 // who triggered it, nil for system events
	Header      string
	Content     string
	Metadata    NotificationMetadata
}

type NotificationResponse struct {
	ID        uint64               `json:"id"`
	Type      string               `json:"type"`
	Header    string               `json:"header"`
	Content   string               `json:"content"`
	Read      bool                 `json:"read"`
	Metadata  NotificationMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// Observer receives every fan-out event. Update errors are logged by the
// manager, never propagated to the triggering operation.
type Observer interface {
	Update(event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event NotificationEvent)
	NotifyAsync(event NotificationEvent)
}
