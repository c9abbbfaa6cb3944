package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meridian-social/palisade/cachestore"
	"github.com/meridian-social/palisade/rules"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Twitter enriched-data client. Resolves a handle to the numeric user id,
// fetches the recent post timeline, and flattens the nested API payload to
// []Post. Normalized results are cached per user with the TTL and key
// prefix from the ruleset's platform section (cache-aside, same policy as
// the ruleset store).
type TwitterClient struct {
	Host    string
	APIHost string
	APIKey  string
	HTTP    *http.Client
	Limiter *rate.Limiter
	Cache   cachestore.CacheStore
	Logger  *slog.Logger
}

var _ Client = (*TwitterClient)(nil)

type TwitterClientConfig struct {
	Host   string
	APIKey string
	// requests per second against the upstream API
	RateLimit int
}

func NewTwitterClient(config TwitterClientConfig, cache cachestore.CacheStore, logger *slog.Logger) *TwitterClient {
	if logger == nil {
		logger = slog.Default()
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 5
	}
	return &TwitterClient{
		Host:    config.Host,
		APIHost: "twitter241.p.rapidapi.com",
		APIKey:  config.APIKey,
		HTTP:    robustHTTPClient(logger),
		Limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		Cache:   cache,
		Logger:  logger.With("component", "twitter"),
	}
}

// HTTP client with retry on connection errors, 5xx, and 429 (respecting
// Retry-After), logging intermediate failures at WARN.
func robustHTTPClient(logger *slog.Logger) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledSlog{logger})
	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second
	return client
}

// re-maps retryablehttp log levels on to slog (ERROR becomes WARN, because
// of retries; DEBUG becomes INFO, which is where retries are logged)
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

func (l leveledSlog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

func (c *TwitterClient) GetEnrichedData(ctx context.Context, userID string, cfg rules.PlatformConfig) ([]Post, error) {
	cacheKey := cfg.CachePrefix + userID

	if c.Cache != nil {
		cached, err := c.Cache.Get(ctx, cacheKey)
		if err != nil {
			c.Logger.Warn("enriched data cache read failed", "err", err, "user", userID)
		} else if cached != "" {
			var posts []Post
			if err := json.Unmarshal([]byte(cached), &posts); err == nil {
				return posts, nil
			}
			c.Logger.Warn("corrupt enriched data cache entry", "user", userID)
		}
	}

	numericID, err := c.resolveUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("user", numericID)
	params.Set("count", strconv.Itoa(cfg.PostHistoryCount))
	var timeline timelineResponse
	if err := c.get(ctx, "/user-tweets?"+params.Encode(), &timeline); err != nil {
		return nil, fmt.Errorf("fetching user timeline: %w", err)
	}

	posts, err := flattenTimeline(&timeline)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		raw, err := json.Marshal(posts)
		if err == nil {
			ttl := time.Duration(cfg.CacheTTL) * time.Second
			if err := c.Cache.Set(ctx, cacheKey, string(raw), ttl); err != nil {
				c.Logger.Warn("enriched data cache write failed", "err", err, "user", userID)
			}
		}
	}
	return posts, nil
}

func (c *TwitterClient) resolveUserID(ctx context.Context, handle string) (string, error) {
	params := url.Values{}
	params.Set("username", handle)
	var resp userLookupResponse
	if err := c.get(ctx, "/user?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("resolving user id: %w", err)
	}
	restID := resp.Result.Data.User.Result.RestID
	if restID == "" {
		return "", fmt.Errorf("user id not found for handle: %s", handle)
	}
	return restID, nil
}

func (c *TwitterClient) get(ctx context.Context, endpoint string, out any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Host+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-host", c.APIHost)
	req.Header.Set("x-rapidapi-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream API request failed: status=%d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// wire shapes for the upstream API; only the fields we read

type userLookupResponse struct {
	Result struct {
		Data struct {
			User struct {
				Result struct {
					RestID string `json:"rest_id"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	} `json:"result"`
}

type timelineResponse struct {
	Result struct {
		Timeline struct {
			Instructions []timelineInstruction `json:"instructions"`
		} `json:"timeline"`
	} `json:"result"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
}

type timelineEntry struct {
	Content struct {
		ItemContent struct {
			ItemType     string `json:"itemType"`
			TweetResults struct {
				Result *tweetResult `json:"result"`
			} `json:"tweet_results"`
		} `json:"itemContent"`
	} `json:"content"`
}

type tweetResult struct {
	RestID string `json:"rest_id"`
	Legacy struct {
		FullText      string `json:"full_text"`
		CreatedAt     string `json:"created_at"`
		FavoriteCount int64  `json:"favorite_count"`
		RetweetCount  int64  `json:"retweet_count"`
		ReplyCount    int64  `json:"reply_count"`
	} `json:"legacy"`
	Core struct {
		UserResults struct {
			Result struct {
				RestID string `json:"rest_id"`
				Legacy struct {
					Name           string `json:"name"`
					ScreenName     string `json:"screen_name"`
					Description    string `json:"description"`
					FollowersCount int64  `json:"followers_count"`
					FriendsCount   int64  `json:"friends_count"`
					Verified       bool   `json:"verified"`
				} `json:"legacy"`
			} `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
}

// twitter legacy timestamp format, e.g. "Wed Oct 10 20:19:24 +0000 2018"
const twitterTimeLayout = time.RubyDate

func flattenTimeline(timeline *timelineResponse) ([]Post, error) {
	instructions := timeline.Result.Timeline.Instructions
	if instructions == nil {
		return nil, fmt.Errorf("upstream API response is missing timeline instructions")
	}
	var posts []Post
	for _, ins := range instructions {
		if ins.Type != "TimelineAddEntries" {
			continue
		}
		for _, entry := range ins.Entries {
			ic := entry.Content.ItemContent
			if ic.ItemType != "TimelineTweet" || ic.TweetResults.Result == nil {
				continue
			}
			tweet := ic.TweetResults.Result
			author := tweet.Core.UserResults.Result
			createdAt, err := time.Parse(twitterTimeLayout, tweet.Legacy.CreatedAt)
			if err != nil {
				// tolerate a missing timestamp; the velocity signal treats
				// zero-span histories conservatively
				createdAt = time.Time{}
			}
			posts = append(posts, Post{
				ID:            tweet.RestID,
				Text:          tweet.Legacy.FullText,
				CreatedAt:     createdAt,
				FavoriteCount: tweet.Legacy.FavoriteCount,
				RetweetCount:  tweet.Legacy.RetweetCount,
				ReplyCount:    tweet.Legacy.ReplyCount,
				Author: AuthorProfile{
					ID:             author.RestID,
					Name:           author.Legacy.Name,
					ScreenName:     author.Legacy.ScreenName,
					Description:    author.Legacy.Description,
					FollowersCount: author.Legacy.FollowersCount,
					FollowingCount: author.Legacy.FriendsCount,
					Verified:       author.Legacy.Verified,
				},
			})
		}
	}
	return posts, nil
}
