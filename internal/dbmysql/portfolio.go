package dbmysql

import "time"

// Portfolio status values. These serialize as the literal strings clients see.
const (
	StatusDraft         = "draft"
	StatusPendingReview = "pending_review"
	StatusRejected      = "rejected"
	StatusPublished     = "published"
	StatusArchived      = "archived"
)

// Portfolio is the author-owned document. Status is mutated only through the
// state machine service; LikeCount only through the social service.
type Portfolio struct {
	PortfolioID  uint64     `gorm:"primaryKey;autoIncrement;column:portfolio_id" json:"portfolio_id"`
	AuthorID     uint64     `gorm:"column:author_id;not null;index:idx_author_slug,unique" json:"author_id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Slug         string     `gorm:"size:120;not null;index:idx_author_slug,unique" json:"slug"`
	Status       string     `gorm:"size:20;not null;default:'draft';index" json:"status"`
	ReviewNote   string     `gorm:"size:1000" json:"review_note,omitempty"`
	ThumbnailURL string     `gorm:"size:500" json:"thumbnail_url,omitempty"`
	LikeCount    int64      `gorm:"not null;default:0" json:"like_count"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PublishedAt  *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}
