package engine

import (
	"testing"
	"time"

	"github.com/meridian-social/palisade/rules"
	"github.com/meridian-social/palisade/social"

	"github.com/stretchr/testify/assert"
)

func TestKeywordMatchScore(t *testing.T) {
	assert := assert.New(t)
	rs := rules.DefaultRuleSet()

	assert.Equal(0.0, KeywordMatchScore("", rs))
	assert.Equal(0.0, KeywordMatchScore("a perfectly normal post", rs))
	assert.Equal(1.0, KeywordMatchScore("visit our CASINO tonight", rs))
	// keywords count once each, not per occurrence
	assert.Equal(1.0, KeywordMatchScore("casino casino casino", rs))
	assert.Equal(2.0, KeywordMatchScore("free money at the casino", rs))
	// partial words do not match
	assert.Equal(0.0, KeywordMatchScore("casinos are interesting architecture", rs))
}

func TestHashtagScore(t *testing.T) {
	assert := assert.New(t)
	rs := rules.DefaultRuleSet()

	assert.Equal(0.0, HashtagScore("no tags at all", rs))
	assert.Equal(0.0, HashtagScore("#harmless #tags", rs))
	assert.Equal(1.0, HashtagScore("please #followback", rs))
	assert.Equal(2.0, HashtagScore("#FollowBack #F4F #ok", rs))
}

func TestURLScore(t *testing.T) {
	assert := assert.New(t)
	rs := rules.DefaultRuleSet()

	assert.Equal(0.0, URLScore("nothing to see", rs))
	assert.Equal(1.0, URLScore("go to https://example.com now", rs))
	assert.Equal(3.0, URLScore("www.occamm.com www.reddit.com www.google.com", rs))
}

func TestCapitalWordsScore(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.0, CapitalWordsScore(""))
	assert.Equal(0.0, CapitalWordsScore("all lower case here"))
	// any capital letter counts, not just all-caps words
	assert.Equal(2.0, CapitalWordsScore("Hello there WORLD"))
	// URLs are stripped before counting
	assert.Equal(1.0, CapitalWordsScore("CLICK https://EXAMPLE.COM/NOW"))
	// digit/punctuation-only words never count
	assert.Equal(0.0, CapitalWordsScore("123 ... 456"))
}

func TestBehaviorFlags(t *testing.T) {
	assert := assert.New(t)
	rs := rules.DefaultRuleSet()

	author := social.AuthorProfile{
		ScreenName:     "somebody",
		FollowersCount: 50,
		Verified:       true,
	}
	assert.Equal(0.0, LowFollowerFlag(author, rs))
	assert.Equal(0.0, NotVerifiedFlag(author))
	assert.Equal(0.0, SpamUsernameFlag(author, rs))

	author.FollowersCount = 10 // at the threshold counts as low
	author.Verified = false
	author.ScreenName = "promo_bot"
	assert.Equal(1.0, LowFollowerFlag(author, rs))
	assert.Equal(1.0, NotVerifiedFlag(author))
	assert.Equal(1.0, SpamUsernameFlag(author, rs))
}

func TestPostFrequencyScore(t *testing.T) {
	assert := assert.New(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(0.0, PostFrequencyScore(nil))
	assert.Equal(1.0, PostFrequencyScore([]time.Time{base}))

	// two posts an hour apart: 2 posts / 1 hour
	assert.Equal(2.0, PostFrequencyScore([]time.Time{base, base.Add(-time.Hour)}))

	// four posts over two hours, unsorted input
	ts := []time.Time{base.Add(-2 * time.Hour), base, base.Add(-90 * time.Minute), base.Add(-30 * time.Minute)}
	assert.Equal(2.0, PostFrequencyScore(ts))

	// identical timestamps: raw count, not a division by zero
	assert.Equal(2.0, PostFrequencyScore([]time.Time{base, base}))
}

func TestExtractSignalsOrderAndPurity(t *testing.T) {
	assert := assert.New(t)
	rs := rules.DefaultRuleSet()

	posts := TestPostHistory("somebody", 3)
	vec := ExtractSignals("hello www.example.com", posts, rs)

	names := make([]string, len(vec))
	for i, sig := range vec {
		names[i] = sig.Name
	}
	assert.Equal([]string{
		SignalSpamKeywords,
		SignalSpamHashtags,
		SignalExcessiveURLs,
		SignalExcessiveCaps,
		SignalLowFollowerCount,
		SignalNotVerified,
		SignalSpamUsername,
		SignalBioSpamKeywords,
		SignalBioSpamHashtags,
		SignalBioExcessiveURLs,
		SignalPostingFrequency,
	}, names)

	// input data is not mutated
	assert.Equal("an unremarkable post", posts[0].Text)

	// extraction is deterministic
	assert.Equal(vec, ExtractSignals("hello www.example.com", posts, rs))
}
