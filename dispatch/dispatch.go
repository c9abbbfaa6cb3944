package dispatch

import (
	"context"
	"errors"
	"time"
)

// Work item handed to the deep-analysis pipeline when a post is flagged.
type Task struct {
	RequestID   string    `json:"requestId"`
	UserID      string    `json:"userId"`
	Platform    string    `json:"platform"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	Reasons     []string  `json:"reasons"`
	ProcessedAt time.Time `json:"processedAt"`
}

var ErrQueueFull = errors.New("deep analysis queue is full")

// Outbound queue toward the deep-analysis workers. Enqueue must not block
// the caller: implementations either hand off immediately or fail fast
// (at-most-once delivery is acceptable downstream).
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
}
