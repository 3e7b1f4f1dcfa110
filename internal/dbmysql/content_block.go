package dbmysql

import (
	"time"

	"gorm.io/datatypes"
)

// ContentBlock is one ordered, typed unit of a portfolio body. Payload shape
// is determined by Kind; validation lives in the block package. For any
// portfolio the SortOrder values form a contiguous 0..N-1 permutation.
type ContentBlock struct {
	BlockID     uint64         `gorm:"primaryKey;autoIncrement;column:block_id" json:"block_id"`
	PortfolioID uint64         `gorm:"column:portfolio_id;not null;index:idx_portfolio_sort" json:"portfolio_id"`
	Kind        string         `gorm:"size:20;not null" json:"kind"`
	SortOrder   int            `gorm:"column:sort_order;not null;index:idx_portfolio_sort" json:"order"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ContentBlock) TableName() string {
	return "content_blocks"
}
