package portfolio

import (
	"context"
	"time"

	"gorm.io/gorm"

	"artfolio/internal/dbmysql"
)

type PortfolioRepository interface {
	Create(ctx context.Context, pf *dbmysql.Portfolio) error
	ByID(ctx context.Context, portfolioID uint64) (*dbmysql.Portfolio, error)
	BySlug(ctx context.Context, authorID uint64, slug string) (*dbmysql.Portfolio, error)
	Save(ctx context.Context, pf *dbmysql.Portfolio) error
	SetThumbnail(ctx context.Context, portfolioID uint64, url string) error
	PendingReview(ctx context.Context, limit, offset int) ([]*dbmysql.Portfolio, error)
	ByAuthor(ctx context.Context, authorID uint64) ([]*dbmysql.Portfolio, error)
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) Create(ctx context.Context, pf *dbmysql.Portfolio) error {
	return r.db.WithContext(ctx).Create(pf).Error
}

func (r *portfolioRepository) ByID(ctx context.Context, portfolioID uint64) (*dbmysql.Portfolio, error) {
	var pf dbmysql.Portfolio
	err := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).First(&pf).Error
	if err != nil {
		return nil, err
	}
	return &pf, nil
}

func (r *portfolioRepository) BySlug(ctx context.Context, authorID uint64, slug string) (*dbmysql.Portfolio, error) {
	var pf dbmysql.Portfolio
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND slug = ?", authorID, slug).
		First(&pf).Error
	if err != nil {
		return nil, err
	}
	return &pf, nil
}

func (r *portfolioRepository) Save(ctx context.Context, pf *dbmysql.Portfolio) error {
	return r.db.WithContext(ctx).Save(pf).Error
}

func (r *portfolioRepository) SetThumbnail(ctx context.Context, portfolioID uint64, url string) error {
	result := r.db.WithContext(ctx).Model(&dbmysql.Portfolio{}).
		Where("portfolio_id = ?", portfolioID).
		Updates(map[string]interface{}{"thumbnail_url": url, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PendingReview lists the moderation queue, oldest submission first.
func (r *portfolioRepository) PendingReview(ctx context.Context, limit, offset int) ([]*dbmysql.Portfolio, error) {
	var portfolios []*dbmysql.Portfolio

	query := r.db.WithContext(ctx).
		Where("status = ?", dbmysql.StatusPendingReview).
		Order("updated_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&portfolios).Error; err != nil {
		return nil, err
	}
	return portfolios, nil
}

func (r *portfolioRepository) ByAuthor(ctx context.Context, authorID uint64) ([]*dbmysql.Portfolio, error) {
	var portfolios []*dbmysql.Portfolio
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&portfolios).Error
	if err != nil {
		return nil, err
	}
	return portfolios, nil
}
