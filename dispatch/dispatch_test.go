package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanQueueHandoff(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	q := NewChanQueue(2, nil)

	require.NoError(t, q.Enqueue(ctx, &Task{RequestID: "a"}))
	require.NoError(t, q.Enqueue(ctx, &Task{RequestID: "b"}))

	// buffer is full; the third task is dropped, not blocked on
	err := q.Enqueue(ctx, &Task{RequestID: "c"})
	assert.ErrorIs(err, ErrQueueFull)

	got := <-q.Tasks()
	assert.Equal("a", got.RequestID)
	got = <-q.Tasks()
	assert.Equal("b", got.RequestID)

	// space freed up again
	assert.NoError(q.Enqueue(ctx, &Task{RequestID: "d"}))
}
