package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

type MockSocialRepository struct {
	mock.Mock
}

func (m *MockSocialRepository) ToggleFollow(ctx context.Context, followerID, followeeID uint64) (bool, int64, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockSocialRepository) ToggleLike(ctx context.Context, userID, portfolioID uint64) (bool, int64, error) {
	args := m.Called(ctx, userID, portfolioID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockSocialRepository) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialRepository) HasLiked(ctx context.Context, userID, portfolioID uint64) (bool, error) {
	args := m.Called(ctx, userID, portfolioID)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.User), args.Error(1)
}

func (m *MockUserRepository) ByHandle(ctx context.Context, handle string) (*dbmysql.User, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.User), args.Error(1)
}

func (m *MockUserRepository) SetAvatarURL(ctx context.Context, userID uint64, url string) error {
	args := m.Called(ctx, userID, url)
	return args.Error(0)
}

func (m *MockUserRepository) SetBannerURL(ctx context.Context, userID uint64, url string) error {
	args := m.Called(ctx, userID, url)
	return args.Error(0)
}

type MockPortfolioSource struct {
	mock.Mock
}

func (m *MockPortfolioSource) ByID(ctx context.Context, portfolioID uint64) (*dbmysql.Portfolio, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.Portfolio), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendNewFollower(ctx context.Context, followeeID, followerID uint64, followerHandle string) {
	m.Called(ctx, followeeID, followerID, followerHandle)
}

func (m *MockNotifier) SendContentLiked(ctx context.Context, ownerID, likerID, portfolioID uint64, title string) {
	m.Called(ctx, ownerID, likerID, portfolioID, title)
}

func publishedPortfolio() *dbmysql.Portfolio {
	return &dbmysql.Portfolio{
		PortfolioID: 7,
		AuthorID:    1,
		Title:       "Work",
		Status:      dbmysql.StatusPublished,
		LikeCount:   4,
	}
}

func TestToggleFollow_SelfFollowRejected(t *testing.T) {
	service := NewSocialService(new(MockSocialRepository), new(MockUserRepository), new(MockPortfolioSource), new(MockNotifier))

	_, err := service.ToggleFollow(context.Background(), common.Actor{UserID: 5}, 5)
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestToggleFollow_UnknownFollowee(t *testing.T) {
	users := new(MockUserRepository)
	service := NewSocialService(new(MockSocialRepository), users, new(MockPortfolioSource), new(MockNotifier))

	users.On("ByID", mock.Anything, uint64(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.ToggleFollow(context.Background(), common.Actor{UserID: 5}, 9)
	require.Error(t, err)
	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestToggleFollow_CreateNotifiesWithHandle(t *testing.T) {
	repo := new(MockSocialRepository)
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	service := NewSocialService(repo, users, new(MockPortfolioSource), notifier)

	users.On("ByID", mock.Anything, uint64(9)).Return(&dbmysql.User{UserID: 9, Handle: "callee"}, nil)
	users.On("ByID", mock.Anything, uint64(5)).Return(&dbmysql.User{UserID: 5, Handle: "caller"}, nil)
	repo.On("ToggleFollow", mock.Anything, uint64(5), uint64(9)).Return(true, int64(11), nil)
	notifier.On("SendNewFollower", mock.Anything, uint64(9), uint64(5), "caller").Return()

	state, err := service.ToggleFollow(context.Background(), common.Actor{UserID: 5}, 9)
	require.NoError(t, err)
	assert.True(t, state.Following)
	assert.Equal(t, int64(11), state.FollowerCount)
	notifier.AssertExpectations(t)
}

func TestToggleFollow_RemoveDoesNotNotify(t *testing.T) {
	repo := new(MockSocialRepository)
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	service := NewSocialService(repo, users, new(MockPortfolioSource), notifier)

	users.On("ByID", mock.Anything, uint64(9)).Return(&dbmysql.User{UserID: 9}, nil)
	repo.On("ToggleFollow", mock.Anything, uint64(5), uint64(9)).Return(false, int64(10), nil)

	state, err := service.ToggleFollow(context.Background(), common.Actor{UserID: 5}, 9)
	require.NoError(t, err)
	assert.False(t, state.Following)
	notifier.AssertNotCalled(t, "SendNewFollower", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleLike_SelfLikeRejected(t *testing.T) {
	portfolios := new(MockPortfolioSource)
	service := NewSocialService(new(MockSocialRepository), new(MockUserRepository), portfolios, new(MockNotifier))

	portfolios.On("ByID", mock.Anything, uint64(7)).Return(publishedPortfolio(), nil)

	_, err := service.ToggleLike(context.Background(), common.Actor{UserID: 1}, 7)
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestToggleLike_UnpublishedHiddenAsNotFound(t *testing.T) {
	portfolios := new(MockPortfolioSource)
	service := NewSocialService(new(MockSocialRepository), new(MockUserRepository), portfolios, new(MockNotifier))

	pf := publishedPortfolio()
	pf.Status = dbmysql.StatusPendingReview
	portfolios.On("ByID", mock.Anything, uint64(7)).Return(pf, nil)

	_, err := service.ToggleLike(context.Background(), common.Actor{UserID: 5}, 7)
	require.Error(t, err)
	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestToggleLike_CreateNotifiesOwner(t *testing.T) {
	repo := new(MockSocialRepository)
	portfolios := new(MockPortfolioSource)
	notifier := new(MockNotifier)
	service := NewSocialService(repo, new(MockUserRepository), portfolios, notifier)

	portfolios.On("ByID", mock.Anything, uint64(7)).Return(publishedPortfolio(), nil)
	repo.On("ToggleLike", mock.Anything, uint64(5), uint64(7)).Return(true, int64(5), nil)
	notifier.On("SendContentLiked", mock.Anything, uint64(1), uint64(5), uint64(7), "Work").Return()

	state, err := service.ToggleLike(context.Background(), common.Actor{UserID: 5}, 7)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, int64(5), state.LikeCount)
	notifier.AssertExpectations(t)
}

func TestToggleLike_RemoveDoesNotNotify(t *testing.T) {
	repo := new(MockSocialRepository)
	portfolios := new(MockPortfolioSource)
	notifier := new(MockNotifier)
	service := NewSocialService(repo, new(MockUserRepository), portfolios, notifier)

	portfolios.On("ByID", mock.Anything, uint64(7)).Return(publishedPortfolio(), nil)
	repo.On("ToggleLike", mock.Anything, uint64(5), uint64(7)).Return(false, int64(3), nil)

	state, err := service.ToggleLike(context.Background(), common.Actor{UserID: 5}, 7)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	notifier.AssertNotCalled(t, "SendContentLiked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetFollow_AlreadyInDesiredStateIsNoop(t *testing.T) {
	repo := new(MockSocialRepository)
	users := new(MockUserRepository)
	service := NewSocialService(repo, users, new(MockPortfolioSource), new(MockNotifier))

	repo.On("IsFollowing", mock.Anything, uint64(5), uint64(9)).Return(true, nil)
	users.On("ByID", mock.Anything, uint64(9)).Return(&dbmysql.User{UserID: 9, FollowerCount: 11}, nil)

	state, err := service.SetFollow(context.Background(), common.Actor{UserID: 5}, 9, true)
	require.NoError(t, err)
	assert.True(t, state.Following)
	assert.Equal(t, int64(11), state.FollowerCount)
	repo.AssertNotCalled(t, "ToggleFollow", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetFollow_DifferentStateToggles(t *testing.T) {
	repo := new(MockSocialRepository)
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	service := NewSocialService(repo, users, new(MockPortfolioSource), notifier)

	repo.On("IsFollowing", mock.Anything, uint64(5), uint64(9)).Return(false, nil)
	users.On("ByID", mock.Anything, uint64(9)).Return(&dbmysql.User{UserID: 9, Handle: "callee"}, nil)
	users.On("ByID", mock.Anything, uint64(5)).Return(&dbmysql.User{UserID: 5, Handle: "caller"}, nil)
	repo.On("ToggleFollow", mock.Anything, uint64(5), uint64(9)).Return(true, int64(1), nil)
	notifier.On("SendNewFollower", mock.Anything, uint64(9), uint64(5), "caller").Return()

	state, err := service.SetFollow(context.Background(), common.Actor{UserID: 5}, 9, true)
	require.NoError(t, err)
	assert.True(t, state.Following)
	repo.AssertExpectations(t)
}

func TestSetLike_UnlikeWhenNotLikedIsNoop(t *testing.T) {
	repo := new(MockSocialRepository)
	portfolios := new(MockPortfolioSource)
	service := NewSocialService(repo, new(MockUserRepository), portfolios, new(MockNotifier))

	repo.On("HasLiked", mock.Anything, uint64(5), uint64(7)).Return(false, nil)
	portfolios.On("ByID", mock.Anything, uint64(7)).Return(publishedPortfolio(), nil)

	state, err := service.SetLike(context.Background(), common.Actor{UserID: 5}, 7, false)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, int64(4), state.LikeCount)
	repo.AssertNotCalled(t, "ToggleLike", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleFollow_ConcurrentLoserSurfacesConflict(t *testing.T) {
	repo := new(MockSocialRepository)
	users := new(MockUserRepository)
	service := NewSocialService(repo, users, new(MockPortfolioSource), new(MockNotifier))

	users.On("ByID", mock.Anything, uint64(9)).Return(&dbmysql.User{UserID: 9}, nil)
	repo.On("ToggleFollow", mock.Anything, uint64(5), uint64(9)).
		Return(false, int64(0), common.NewConflict("follow edge changed concurrently"))

	_, err := service.ToggleFollow(context.Background(), common.Actor{UserID: 5}, 9)
	require.Error(t, err)
	var conflict *common.ConflictError
	assert.ErrorAs(t, err, &conflict)
}
