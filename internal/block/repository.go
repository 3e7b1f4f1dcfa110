package block

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artfolio/internal/dbmysql"
)

// BlockRepository owns all block-row access. Every mutation runs in a single
// transaction that also bumps the owning portfolio's updated_at, so the
// contiguous 0..N-1 sort order never breaks observably.
type BlockRepository interface {
	ByID(ctx context.Context, portfolioID, blockID uint64) (*dbmysql.ContentBlock, error)
	ByPortfolio(ctx context.Context, portfolioID uint64) ([]*dbmysql.ContentBlock, error)
	CountByPortfolio(ctx context.Context, portfolioID uint64) (int64, error)
	Append(ctx context.Context, b *dbmysql.ContentBlock) error
	UpdatePayload(ctx context.Context, portfolioID, blockID uint64, payload datatypes.JSON) error
	Reorder(ctx context.Context, portfolioID uint64, positions map[uint64]int) error
	Remove(ctx context.Context, portfolioID, blockID uint64) error
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) ByID(ctx context.Context, portfolioID, blockID uint64) (*dbmysql.ContentBlock, error) {
	var b dbmysql.ContentBlock
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND block_id = ?", portfolioID, blockID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blockRepository) ByPortfolio(ctx context.Context, portfolioID uint64) ([]*dbmysql.ContentBlock, error) {
	var blocks []*dbmysql.ContentBlock
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("sort_order ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *blockRepository) CountByPortfolio(ctx context.Context, portfolioID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.ContentBlock{}).
		Where("portfolio_id = ?", portfolioID).
		Count(&count).Error
	return count, err
}

// Append inserts at the current tail sort order. The tail is read with a
// locking SELECT so two concurrent appends to the same portfolio cannot both
// claim the same slot.
func (r *blockRepository) Append(ctx context.Context, b *dbmysql.ContentBlock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&dbmysql.ContentBlock{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("portfolio_id = ?", b.PortfolioID).
			Select("COALESCE(MAX(sort_order) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		b.SortOrder = next
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return touchPortfolio(tx, b.PortfolioID)
	})
}

func (r *blockRepository) UpdatePayload(ctx context.Context, portfolioID, blockID uint64, payload datatypes.JSON) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&dbmysql.ContentBlock{}).
			Where("portfolio_id = ? AND block_id = ?", portfolioID, blockID).
			Update("payload", payload)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return touchPortfolio(tx, portfolioID)
	})
}

// Reorder atomically reassigns sort orders from the position map. The service
// has already checked the map is an exact permutation of the current blocks.
func (r *blockRepository) Reorder(ctx context.Context, portfolioID uint64, positions map[uint64]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for blockID, position := range positions {
			result := tx.Model(&dbmysql.ContentBlock{}).
				Where("portfolio_id = ? AND block_id = ?", portfolioID, blockID).
				Update("sort_order", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return touchPortfolio(tx, portfolioID)
	})
}

// Remove deletes the block and shifts every later block down one slot.
func (r *blockRepository) Remove(ctx context.Context, portfolioID, blockID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b dbmysql.ContentBlock
		if err := tx.Where("portfolio_id = ? AND block_id = ?", portfolioID, blockID).
			First(&b).Error; err != nil {
			return err
		}
		if err := tx.Delete(&b).Error; err != nil {
			return err
		}
		if err := tx.Model(&dbmysql.ContentBlock{}).
			Where("portfolio_id = ? AND sort_order > ?", portfolioID, b.SortOrder).
			Update("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
			return err
		}
		return touchPortfolio(tx, portfolioID)
	})
}

func touchPortfolio(tx *gorm.DB, portfolioID uint64) error {
	return tx.Model(&dbmysql.Portfolio{}).
		Where("portfolio_id = ?", portfolioID).
		Update("updated_at", time.Now()).Error
}
