package upload

import (
	"context"
	"time"

	"gorm.io/gorm"

	"artfolio/internal/dbmysql"
)

type UploadRepository interface {
	Create(ctx context.Context, session *dbmysql.UploadSession) error
	ByID(ctx context.Context, sessionID string) (*dbmysql.UploadSession, error)

	// Consume flips the consumed flag, returning false when a concurrent
	// confirm got there first. The conditional update is what makes
	// duplicate confirms collapse into one.
	Consume(ctx context.Context, sessionID string) (bool, error)

	ExpiredUnconsumed(ctx context.Context, before time.Time, limit int) ([]*dbmysql.UploadSession, error)
	Delete(ctx context.Context, sessionID string) error
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, session *dbmysql.UploadSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *uploadRepository) ByID(ctx context.Context, sessionID string) (*dbmysql.UploadSession, error) {
	var session dbmysql.UploadSession
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *uploadRepository) Consume(ctx context.Context, sessionID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&dbmysql.UploadSession{}).
		Where("session_id = ? AND consumed = ?", sessionID, false).
		Update("consumed", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *uploadRepository) ExpiredUnconsumed(ctx context.Context, before time.Time, limit int) ([]*dbmysql.UploadSession, error) {
	var sessions []*dbmysql.UploadSession
	query := r.db.WithContext(ctx).
		Where("consumed = ? AND expires_at < ?", false, before).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *uploadRepository) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&dbmysql.UploadSession{}).Error
}
