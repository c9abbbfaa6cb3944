package social

import (
	"context"

	"github.com/meridian-social/palisade/rules"
)

// Client returning a fixed post sequence, for tests and local development.
type StaticClient struct {
	Posts []Post
	Err   error
}

var _ Client = (*StaticClient)(nil)

func (c *StaticClient) GetEnrichedData(ctx context.Context, userID string, cfg rules.PlatformConfig) ([]Post, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Posts, nil
}
