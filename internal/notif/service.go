package notif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/config"
)

// NotificationService is the only writer of notifications in the system. The
// state machine and the social service call its Send helpers after their own
// transactions commit; the helpers never return the fan-out's errors.
type NotificationService struct {
	manager *FanoutManager
	repo    NotificationRepository
}

func NewNotificationService(cfg *config.Config, repo NotificationRepository, natsConn *nats.Conn) *NotificationService {
	manager := NewFanoutManager(cfg.Notification.Workers, cfg.Notification.ChannelBufferSize)

	dbObserver := NewDatabaseNotificationObserver(repo)
	manager.Subscribe(dbObserver)

	if natsConn != nil {
		publishObserver := NewEventPublishObserver(natsConn, cfg.NATS.Subject)
		manager.Subscribe(publishObserver)
	}

	return &NotificationService{
		manager: manager,
		repo:    repo,
	}
}

func (s *NotificationService) Shutdown() {
	s.manager.Shutdown()
}

func (s *NotificationService) send(event common.NotificationEvent) {
	if !event.Type.IsValid() {
		log.Printf("dropping notification with unknown type %q", event.Type)
		return
	}
	s.manager.Notify(event)
}

func (s *NotificationService) SendContentApproved(ctx context.Context, ownerID, portfolioID uint64, title string) {
	s.send(common.NotificationEvent{
		Type:        common.ContentApprovedType,
		RecipientID: ownerID,
		Header:      "Portfolio published",
		Content:     fmt.Sprintf("%q has been approved and is now public", title),
		Metadata: common.NotificationMetadata{
			"portfolio_id": portfolioID,
		},
	})
}

func (s *NotificationService) SendContentRejected(ctx context.Context, ownerID, portfolioID uint64, title, note string) {
	s.send(common.NotificationEvent{
		Type:        common.ContentRejectedType,
		RecipientID: ownerID,
		Header:      "Portfolio needs changes",
		Content:     fmt.Sprintf("%q was not approved: %s", title, note),
		Metadata: common.NotificationMetadata{
			"portfolio_id": portfolioID,
			"note":         note,
		},
	})
}

func (s *NotificationService) SendNewFollower(ctx context.Context, followeeID, followerID uint64, followerHandle string) {
	content := "You have a new follower"
	if followerHandle != "" {
		content = fmt.Sprintf("%s started following you", followerHandle)
	}
	s.send(common.NotificationEvent{
		Type:        common.NewFollowerType,
		RecipientID: followeeID,
		ActorID:     &followerID,
		Header:      "New follower",
		Content:     content,
		Metadata: common.NotificationMetadata{
			"follower_id": followerID,
		},
	})
}

func (s *NotificationService) SendContentLiked(ctx context.Context, ownerID, likerID, portfolioID uint64, title string) {
	// Liking your own work never notifies.
	if ownerID == likerID {
		return
	}
	s.send(common.NotificationEvent{
		Type:        common.ContentLikedType,
		RecipientID: ownerID,
		ActorID:     &likerID,
		Header:      "Portfolio liked",
		Content:     fmt.Sprintf("Someone liked %q", title),
		Metadata: common.NotificationMetadata{
			"portfolio_id": portfolioID,
			"liker_id":     likerID,
		},
	})
}

// NotificationPage is the poll response: the page plus the unread total.
type NotificationPage struct {
	Notifications []common.NotificationResponse `json:"notifications"`
	UnreadCount   int64                         `json:"unread_count"`
}

func (s *NotificationService) List(ctx context.Context, actor common.Actor, limit, offset int) (*NotificationPage, error) {
	rows, err := s.repo.ByRecipient(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]common.NotificationResponse, 0, len(rows))
	for _, row := range rows {
		resp := common.NotificationResponse{
			ID:        row.NotificationID,
			Type:      row.Type,
			Header:    row.Header,
			Content:   row.Content,
			Read:      row.IsRead,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Metadata) > 0 {
			var metadata common.NotificationMetadata
			if err := json.Unmarshal(row.Metadata, &metadata); err == nil {
				resp.Metadata = metadata
			}
		}
		out = append(out, resp)
	}

	return &NotificationPage{Notifications: out, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor common.Actor, notificationID uint64) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NewNotFound("notification %d not found", notificationID)
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor common.Actor) error {
	return s.repo.MarkAllAsRead(ctx, actor.UserID)
}
