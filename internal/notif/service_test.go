package notif

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/config"
	"artfolio/internal/dbmysql"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *dbmysql.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ByRecipient(ctx context.Context, recipientID uint64, limit, offset int) ([]*dbmysql.Notification, error) {
	args := m.Called(ctx, recipientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbmysql.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint64) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint64) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo NotificationRepository) *NotificationService {
	cfg := &config.Config{}
	cfg.Notification.Workers = 1
	cfg.Notification.ChannelBufferSize = 10
	return NewNotificationService(cfg, repo, nil)
}

func TestSendContentApproved_WritesNotificationRow(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *dbmysql.Notification) bool {
		return n.RecipientID == 1 &&
			n.Type == string(common.ContentApprovedType) &&
			len(n.Metadata) > 0
	})).Return(nil)

	service.SendContentApproved(context.Background(), 1, 7, "Ceramics")
	repo.AssertExpectations(t)
}

func TestSendContentRejected_CarriesNote(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *dbmysql.Notification) bool {
		return n.Type == string(common.ContentRejectedType) &&
			assert.ObjectsAreEqual(uint64(1), n.RecipientID)
	})).Return(nil)

	service.SendContentRejected(context.Background(), 1, 7, "Ceramics", "blurry images")
	repo.AssertExpectations(t)
}

func TestSendNewFollower_SetsActor(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *dbmysql.Notification) bool {
		return n.Type == string(common.NewFollowerType) &&
			n.RecipientID == 9 &&
			n.ActorID != nil && *n.ActorID == 5
	})).Return(nil)

	service.SendNewFollower(context.Background(), 9, 5, "caller")
	repo.AssertExpectations(t)
}

func TestSendContentLiked_SelfLikeIsSkipped(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	service.SendContentLiked(context.Background(), 5, 5, 7, "Ceramics")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSend_StoreFailureDoesNotPropagate(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	// Must not panic; the triggering operation already committed.
	service.SendContentApproved(context.Background(), 1, 7, "Ceramics")
}

func TestSend_UnknownTypeDropped(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	service.send(common.NotificationEvent{Type: "carrier_pigeon", RecipientID: 1})
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestList_MapsRowsAndUnreadCount(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	actorID := uint64(5)
	rows := []*dbmysql.Notification{
		{
			NotificationID: 1,
			RecipientID:    9,
			ActorID:        &actorID,
			Type:           string(common.NewFollowerType),
			Header:         "New follower",
			Content:        "caller started following you",
			Metadata:       datatypes.JSON(`{"follower_id":5}`),
			IsRead:         false,
			CreatedAt:      time.Now(),
		},
		{
			NotificationID: 2,
			RecipientID:    9,
			Type:           string(common.ContentApprovedType),
			Header:         "Portfolio published",
			IsRead:         true,
			CreatedAt:      time.Now(),
		},
	}

	repo.On("ByRecipient", mock.Anything, uint64(9), 20, 0).Return(rows, nil)
	repo.On("UnreadCount", mock.Anything, uint64(9)).Return(int64(1), nil)

	page, err := service.List(context.Background(), common.Actor{UserID: 9}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.UnreadCount)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, uint64(1), page.Notifications[0].ID)
	assert.False(t, page.Notifications[0].Read)
	assert.EqualValues(t, 5, page.Notifications[0].Metadata["follower_id"])
	assert.True(t, page.Notifications[1].Read)
}

func TestMarkRead_NotFound(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	repo.On("MarkAsRead", mock.Anything, uint64(99), uint64(9)).Return(gorm.ErrRecordNotFound)

	err := service.MarkRead(context.Background(), common.Actor{UserID: 9}, 99)
	require.Error(t, err)
	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMarkAllRead(t *testing.T) {
	repo := new(MockNotificationRepository)
	service := newTestService(repo)
	defer service.Shutdown()

	repo.On("MarkAllAsRead", mock.Anything, uint64(9)).Return(nil)

	require.NoError(t, service.MarkAllRead(context.Background(), common.Actor{UserID: 9}))
	repo.AssertExpectations(t)
}
