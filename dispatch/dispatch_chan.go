package dispatch

import (
	"context"
	"log/slog"
)

// Bounded in-process queue. A full buffer drops the task with an error and
// a metric rather than blocking the analysis response; the flagged result
// is still persisted by the flag store, so a drop loses only the deep
// analysis, not the review record.
type ChanQueue struct {
	tasks  chan *Task
	logger *slog.Logger
}

var _ Queue = (*ChanQueue)(nil)

func NewChanQueue(size int, logger *slog.Logger) *ChanQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 256
	}
	return &ChanQueue{
		tasks:  make(chan *Task, size),
		logger: logger.With("component", "dispatch"),
	}
}

func (q *ChanQueue) Enqueue(ctx context.Context, task *Task) error {
	select {
	case q.tasks <- task:
		tasksEnqueued.Inc()
		return nil
	default:
		tasksDropped.Inc()
		return ErrQueueFull
	}
}

// Channel for a consumer loop to drain. The queue does not close it.
func (q *ChanQueue) Tasks() <-chan *Task {
	return q.tasks
}
