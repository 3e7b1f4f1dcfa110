package notif

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"gorm.io/datatypes"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

// DatabaseNotificationObserver persists every event as a notification row.
// It is the one observer that is always subscribed.
type DatabaseNotificationObserver struct {
	repo NotificationRepository
}

func NewDatabaseNotificationObserver(repo NotificationRepository) *DatabaseNotificationObserver {
	return &DatabaseNotificationObserver{
		repo: repo,
	}
}

func (d *DatabaseNotificationObserver) Name() string {
	return "database_observer"
}

func (d *DatabaseNotificationObserver) Update(event common.NotificationEvent) error {
	var metadata datatypes.JSON
	if event.Metadata != nil {
		raw, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata = datatypes.JSON(raw)
	}

	notification := &dbmysql.Notification{
		RecipientID: event.RecipientID,
		ActorID:     event.ActorID,
		Type:        string(event.Type),
		Header:      event.Header,
		Content:     event.Content,
		Metadata:    metadata,
	}

	if err := d.repo.Create(context.Background(), notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	return nil
}

// EventPublishObserver forwards events onto NATS for other services to pick
// up. It is subscribed only when a NATS connection is configured.
type EventPublishObserver struct {
	conn          *nats.Conn
	subjectPrefix string
}

func NewEventPublishObserver(conn *nats.Conn, subjectPrefix string) *EventPublishObserver {
	return &EventPublishObserver{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (p *EventPublishObserver) Name() string {
	return "event_publish_observer"
}

func (p *EventPublishObserver) Update(event common.NotificationEvent) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type":         event.Type,
		"recipient_id": event.RecipientID,
		"actor_id":     event.ActorID,
		"header":       event.Header,
		"content":      event.Content,
		"metadata":     event.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.subjectPrefix, event.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
