package social

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

// PortfolioSource resolves like targets: only published portfolios take likes.
type PortfolioSource interface {
	ByID(ctx context.Context, portfolioID uint64) (*dbmysql.Portfolio, error)
}

// Notifier is the fan-out slice the social graph triggers. Emission happens
// only on edge creation, never on removal.
type Notifier interface {
	SendNewFollower(ctx context.Context, followeeID, followerID uint64, followerHandle string)
	SendContentLiked(ctx context.Context, ownerID, likerID, portfolioID uint64, title string)
}

// FollowState and LikeState are the authoritative post-toggle results.
type FollowState struct {
	FolloweeID    uint64 `json:"followee_id"`
	Following     bool   `json:"following"`
	FollowerCount int64  `json:"follower_count"`
}

type LikeState struct {
	PortfolioID uint64 `json:"portfolio_id"`
	Liked       bool   `json:"liked"`
	LikeCount   int64  `json:"like_count"`
}

type SocialService interface {
	ToggleFollow(ctx context.Context, actor common.Actor, followeeID uint64) (*FollowState, error)
	ToggleLike(ctx context.Context, actor common.Actor, portfolioID uint64) (*LikeState, error)

	// SetFollow and SetLike adapt the toggles to the REST surface, where
	// POST means "on" and DELETE means "off": a request that asks for the
	// state we are already in is a no-op success.
	SetFollow(ctx context.Context, actor common.Actor, followeeID uint64, want bool) (*FollowState, error)
	SetLike(ctx context.Context, actor common.Actor, portfolioID uint64, want bool) (*LikeState, error)
}

type socialService struct {
	repo       SocialRepository
	users      dbmysql.UserRepository
	portfolios PortfolioSource
	notifier   Notifier
}

func NewSocialService(repo SocialRepository, users dbmysql.UserRepository, portfolios PortfolioSource, notifier Notifier) SocialService {
	return &socialService{repo: repo, users: users, portfolios: portfolios, notifier: notifier}
}

func (s *socialService) ToggleFollow(ctx context.Context, actor common.Actor, followeeID uint64) (*FollowState, error) {
	if actor.UserID == followeeID {
		return nil, common.NewValidation("cannot follow yourself")
	}

	if _, err := s.users.ByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("user %d not found", followeeID)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	following, count, err := s.repo.ToggleFollow(ctx, actor.UserID, followeeID)
	if err != nil {
		return nil, err
	}

	if following {
		follower, err := s.users.ByID(ctx, actor.UserID)
		handle := ""
		if err == nil {
			handle = follower.Handle
		}
		s.notifier.SendNewFollower(ctx, followeeID, actor.UserID, handle)
	}

	return &FollowState{FolloweeID: followeeID, Following: following, FollowerCount: count}, nil
}

func (s *socialService) ToggleLike(ctx context.Context, actor common.Actor, portfolioID uint64) (*LikeState, error) {
	pf, err := s.portfolios.ByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("portfolio %d not found", portfolioID)
		}
		return nil, fmt.Errorf("failed to resolve portfolio: %w", err)
	}

	if actor.UserID == pf.AuthorID {
		return nil, common.NewValidation("cannot like your own portfolio")
	}
	if pf.Status != dbmysql.StatusPublished {
		return nil, common.NewNotFound("portfolio %d not found", portfolioID)
	}

	liked, count, err := s.repo.ToggleLike(ctx, actor.UserID, portfolioID)
	if err != nil {
		return nil, err
	}

	if liked {
		s.notifier.SendContentLiked(ctx, pf.AuthorID, actor.UserID, portfolioID, pf.Title)
	}

	return &LikeState{PortfolioID: portfolioID, Liked: liked, LikeCount: count}, nil
}

func (s *socialService) SetFollow(ctx context.Context, actor common.Actor, followeeID uint64, want bool) (*FollowState, error) {
	if actor.UserID == followeeID {
		return nil, common.NewValidation("cannot follow yourself")
	}

	following, err := s.repo.IsFollowing(ctx, actor.UserID, followeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check follow state: %w", err)
	}
	if following == want {
		user, err := s.users.ByID(ctx, followeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, common.NewNotFound("user %d not found", followeeID)
			}
			return nil, fmt.Errorf("failed to resolve user: %w", err)
		}
		return &FollowState{FolloweeID: followeeID, Following: following, FollowerCount: user.FollowerCount}, nil
	}
	return s.ToggleFollow(ctx, actor, followeeID)
}

func (s *socialService) SetLike(ctx context.Context, actor common.Actor, portfolioID uint64, want bool) (*LikeState, error) {
	liked, err := s.repo.HasLiked(ctx, actor.UserID, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like state: %w", err)
	}
	if liked == want {
		pf, err := s.portfolios.ByID(ctx, portfolioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, common.NewNotFound("portfolio %d not found", portfolioID)
			}
			return nil, fmt.Errorf("failed to resolve portfolio: %w", err)
		}
		return &LikeState{PortfolioID: portfolioID, Liked: liked, LikeCount: pf.LikeCount}, nil
	}
	return s.ToggleLike(ctx, actor, portfolioID)
}
