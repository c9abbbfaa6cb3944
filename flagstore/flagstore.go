package flagstore

import (
	"context"
	"time"
)

// Row persisted for every FLAG decision, queued for manual review.
type FlaggedPost struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	RequestID   string    `gorm:"index" json:"requestId"`
	UserID      string    `gorm:"index" json:"userId"`
	Platform    string    `json:"platform"`
	Action      string    `json:"action"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	Reasons     string    `json:"reasons"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Persistence sink for flagged analysis results.
type FlagStore interface {
	Add(ctx context.Context, rec *FlaggedPost) error
	Recent(ctx context.Context, limit int) ([]FlaggedPost, error)
}
