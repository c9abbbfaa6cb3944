package social

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-social/palisade/rules"
)

type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformFacebook Platform = "facebook"
)

func ParsePlatform(raw string) (Platform, error) {
	switch Platform(raw) {
	case PlatformTwitter, PlatformLinkedIn, PlatformFacebook:
		return Platform(raw), nil
	}
	return "", fmt.Errorf("unknown platform: %q", raw)
}

// Denormalized snapshot of an author profile, carried on every post record
// so the most recent post always resolves a current profile.
type AuthorProfile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ScreenName     string `json:"screen_name"`
	Description    string `json:"description"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	Verified       bool   `json:"verified"`
}

// A single post with its author snapshot. Sequences of posts are ordered
// most-recent-first, matching upstream API behavior.
type Post struct {
	ID            string        `json:"id"`
	Text          string        `json:"text"`
	CreatedAt     time.Time     `json:"created_at"`
	FavoriteCount int64         `json:"favorite_count"`
	RetweetCount  int64         `json:"retweet_count"`
	ReplyCount    int64         `json:"reply_count"`
	Author        AuthorProfile `json:"author"`
}

// Capability for fetching a user's recent posts with author snapshots from
// one platform. Implementations own their retry and caching behavior; the
// caller passes the platform section of the active ruleset so cache
// placement follows rule configuration.
type Client interface {
	GetEnrichedData(ctx context.Context, userID string, cfg rules.PlatformConfig) ([]Post, error)
}
