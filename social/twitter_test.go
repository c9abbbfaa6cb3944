package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meridian-social/palisade/cachestore"
	"github.com/meridian-social/palisade/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userFixture = `{"result": {"data": {"user": {"result": {"rest_id": "12345"}}}}}`

const timelineFixture = `{"result": {"timeline": {"instructions": [
	{"type": "TimelineClearCache"},
	{"type": "TimelineAddEntries", "entries": [
		{"content": {"itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {
			"rest_id": "t1",
			"legacy": {"full_text": "newest post", "created_at": "Wed Oct 10 20:19:24 +0000 2018", "favorite_count": 3, "retweet_count": 1, "reply_count": 0},
			"core": {"user_results": {"result": {"rest_id": "12345", "legacy": {
				"name": "Some Body", "screen_name": "somebody", "description": "just a bio",
				"followers_count": 42, "friends_count": 7, "verified": false}}}}
		}}}}},
		{"content": {"itemContent": {"itemType": "TimelineTimelineCursor"}}},
		{"content": {"itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {
			"rest_id": "t2",
			"legacy": {"full_text": "older post", "created_at": "Wed Oct 10 18:19:24 +0000 2018", "favorite_count": 0, "retweet_count": 0, "reply_count": 0},
			"core": {"user_results": {"result": {"rest_id": "12345", "legacy": {
				"name": "Some Body", "screen_name": "somebody", "description": "just a bio",
				"followers_count": 42, "friends_count": 7, "verified": false}}}}
		}}}}}
	]}
]}}}`

func testTwitterServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(userFixture))
	})
	mux.HandleFunc("/user-tweets", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("user") != "12345" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(timelineFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTwitterGetEnrichedData(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var hits atomic.Int64
	srv := testTwitterServer(t, &hits)

	cache := cachestore.NewMemCacheStore(10, time.Hour)
	client := NewTwitterClient(TwitterClientConfig{Host: srv.URL, APIKey: "test-key", RateLimit: 100}, cache, nil)

	cfg := rules.PlatformConfig{CachePrefix: "spam:twitter:user:", CacheTTL: 900, PostHistoryCount: 20}
	posts, err := client.GetEnrichedData(ctx, "somebody", cfg)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal("newest post", posts[0].Text)
	assert.Equal("somebody", posts[0].Author.ScreenName)
	assert.Equal(int64(42), posts[0].Author.FollowersCount)
	assert.False(posts[0].Author.Verified)
	assert.Equal(2018, posts[0].CreatedAt.Year())
	assert.True(posts[0].CreatedAt.After(posts[1].CreatedAt))

	// second call is served from cache; no additional API hits
	before := hits.Load()
	again, err := client.GetEnrichedData(ctx, "somebody", cfg)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(posts[0].ID, again[0].ID)
	assert.True(posts[0].CreatedAt.Equal(again[0].CreatedAt))
	assert.Equal(before, hits.Load())
}

func TestTwitterMissingTimeline(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userFixture))
	})
	mux.HandleFunc("/user-tweets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewTwitterClient(TwitterClientConfig{Host: srv.URL, RateLimit: 100}, nil, nil)
	_, err := client.GetEnrichedData(ctx, "somebody", rules.PlatformConfig{PostHistoryCount: 5})
	assert.Error(err)
}
