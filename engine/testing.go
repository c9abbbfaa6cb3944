package engine

import (
	"log/slog"
	"time"

	"github.com/meridian-social/palisade/cachestore"
	"github.com/meridian-social/palisade/dispatch"
	"github.com/meridian-social/palisade/flagstore"
	"github.com/meridian-social/palisade/rules"
	"github.com/meridian-social/palisade/social"
)

// Engine wired with in-memory collaborators and the embedded default
// ruleset, for tests.
func EngineTestFixture() Engine {
	cache := cachestore.NewMemCacheStore(16, time.Hour)
	store := rules.NewStore(cache, rules.StaticSource{}, slog.Default())
	client := &social.StaticClient{
		Posts: TestPostHistory("somebody", 1),
	}
	return Engine{
		Logger: slog.Default(),
		Rules:  store,
		Flags:  flagstore.NewMemFlagStore(),
		Queue:  dispatch.NewChanQueue(16, nil),
		Clients: map[social.Platform]social.Client{
			social.PlatformTwitter: client,
		},
	}
}

// A post history of the given length for an unremarkable, unverified
// author, newest first, one hour apart.
func TestPostHistory(screenName string, count int) []social.Post {
	author := social.AuthorProfile{
		ID:             "12345",
		Name:           "Some Body",
		ScreenName:     screenName,
		Description:    "just a bio",
		FollowersCount: 50,
		Verified:       false,
	}
	newest := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]social.Post, count)
	for i := range posts {
		posts[i] = social.Post{
			ID:        "post",
			Text:      "an unremarkable post",
			CreatedAt: newest.Add(-time.Duration(i) * time.Hour),
			Author:    author,
		}
	}
	return posts
}
