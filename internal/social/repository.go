package social

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

// SocialRepository owns the follow/like edges and their denormalized
// counters. Each toggle is one transaction: the edge insert-or-delete and the
// counter bump commit or fail together, so the counters cannot drift.
type SocialRepository interface {
	// ToggleFollow flips the (follower, followee) edge. It reports whether
	// the edge exists after the call and the followee's follower count.
	ToggleFollow(ctx context.Context, followerID, followeeID uint64) (active bool, count int64, err error)

	// ToggleLike flips the (user, portfolio) edge and reports the new state
	// plus the portfolio's like count.
	ToggleLike(ctx context.Context, userID, portfolioID uint64) (active bool, count int64, err error)

	IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error)
	HasLiked(ctx context.Context, userID, portfolioID uint64) (bool, error)
}

type socialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) ToggleFollow(ctx context.Context, followerID, followeeID uint64) (bool, int64, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&dbmysql.Follow{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			active = false
			return bumpCounter(tx, &dbmysql.User{}, "user_id", followeeID, "follower_count", -1)
		}

		edge := &dbmysql.Follow{FollowerID: followerID, FolloweeID: followeeID}
		if err := tx.Create(edge).Error; err != nil {
			// A concurrent toggle inserted the edge between our delete and
			// create. The unique index decides the winner; the loser
			// re-fetches.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.NewConflict("follow edge changed concurrently")
			}
			return err
		}
		active = true
		return bumpCounter(tx, &dbmysql.User{}, "user_id", followeeID, "follower_count", 1)
	})
	if err != nil {
		return false, 0, err
	}

	count, err := r.followerCount(ctx, followeeID)
	return active, count, err
}

func (r *socialRepository) ToggleLike(ctx context.Context, userID, portfolioID uint64) (bool, int64, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND portfolio_id = ?", userID, portfolioID).
			Delete(&dbmysql.Like{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			active = false
			return bumpCounter(tx, &dbmysql.Portfolio{}, "portfolio_id", portfolioID, "like_count", -1)
		}

		edge := &dbmysql.Like{UserID: userID, PortfolioID: portfolioID}
		if err := tx.Create(edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.NewConflict("like edge changed concurrently")
			}
			return err
		}
		active = true
		return bumpCounter(tx, &dbmysql.Portfolio{}, "portfolio_id", portfolioID, "like_count", 1)
	})
	if err != nil {
		return false, 0, err
	}

	count, err := r.likeCount(ctx, portfolioID)
	return active, count, err
}

func (r *socialRepository) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error
	return n > 0, err
}

func (r *socialRepository) HasLiked(ctx context.Context, userID, portfolioID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Like{}).
		Where("user_id = ? AND portfolio_id = ?", userID, portfolioID).
		Count(&n).Error
	return n > 0, err
}

func (r *socialRepository) followerCount(ctx context.Context, userID uint64) (int64, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Select("follower_count").
		Where("user_id = ?", userID).First(&user).Error
	return user.FollowerCount, err
}

func (r *socialRepository) likeCount(ctx context.Context, portfolioID uint64) (int64, error) {
	var pf dbmysql.Portfolio
	err := r.db.WithContext(ctx).Select("like_count").
		Where("portfolio_id = ?", portfolioID).First(&pf).Error
	return pf.LikeCount, err
}

func bumpCounter(tx *gorm.DB, model interface{}, idColumn string, id uint64, column string, delta int) error {
	return tx.Model(model).
		Where(idColumn+" = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
