package engine

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/meridian-social/palisade/keyword"
	"github.com/meridian-social/palisade/rules"
	"github.com/meridian-social/palisade/social"
)

// Signal names, also used as reason strings in analysis results. These are
// part of the public result shape; renaming one is a breaking change for
// downstream consumers.
const (
	SignalSpamKeywords     = "spam keywords"
	SignalSpamHashtags     = "spam hashtags"
	SignalExcessiveURLs    = "excessive urls"
	SignalExcessiveCaps    = "excessive caps"
	SignalLowFollowerCount = "low follower count"
	SignalNotVerified      = "not verified"
	SignalSpamUsername     = "spam username"
	SignalBioSpamKeywords  = "spam bio"
	SignalBioSpamHashtags  = "spam bio hashtags"
	SignalBioExcessiveURLs = "spam bio urls"
	SignalPostingFrequency = "posting too often"
)

// One raw extractor output paired with its configured weight.
type Signal struct {
	Name   string
	Raw    float64
	Weight float64
}

// Raw extractor outputs in fixed evaluation order. The order determines
// reason ordering in results, nothing else.
type SignalVector []Signal

// Runs every extractor against the request content, the most recent author
// profile, and the full post history, producing the signal vector in
// evaluation order. Pure: neither the ruleset nor the input data is
// mutated.
func ExtractSignals(content string, data []social.Post, rs *rules.RuleSet) SignalVector {
	author := data[0].Author
	timestamps := make([]time.Time, len(data))
	for i, post := range data {
		timestamps[i] = post.CreatedAt
	}
	w := rs.Scoring.Weights
	return SignalVector{
		{SignalSpamKeywords, KeywordMatchScore(content, rs), w.SpamKeywords},
		{SignalSpamHashtags, HashtagScore(content, rs), w.SpamHashtags},
		{SignalExcessiveURLs, URLScore(content, rs), w.ExcessiveURLs},
		{SignalExcessiveCaps, CapitalWordsScore(content), w.CapitalWords},
		{SignalLowFollowerCount, LowFollowerFlag(author, rs), w.LowFollowers},
		{SignalNotVerified, NotVerifiedFlag(author), w.NotVerified},
		{SignalSpamUsername, SpamUsernameFlag(author, rs), w.SpamUsername},
		{SignalBioSpamKeywords, KeywordMatchScore(author.Description, rs), w.BioSpamKeywords},
		{SignalBioSpamHashtags, HashtagScore(author.Description, rs), w.BioSpamHashtags},
		{SignalBioExcessiveURLs, URLScore(author.Description, rs), w.BioExcessiveURLs},
		{SignalPostingFrequency, PostFrequencyScore(timestamps), w.PostingFrequency},
	}
}

// Counts how many configured spam keywords appear in the text as whole
// words, case-insensitive. Each keyword counts once regardless of
// occurrence count.
func KeywordMatchScore(text string, rs *rules.RuleSet) float64 {
	return float64(keyword.MatchCount(text, rs.ContentRules.SpamKeywords))
}

// Counts extracted #hashtags whose normalized form is in the configured
// spam hashtag set. No hashtags means zero.
func HashtagScore(text string, rs *rules.RuleSet) float64 {
	tags := keyword.ExtractHashtags(text)
	if len(tags) == 0 {
		return 0
	}
	count := 0
	for _, tag := range tags {
		if rs.IsSpamHashtag(tag) {
			count++
		}
	}
	return float64(count)
}

// Counts non-overlapping matches of the configured URL pattern.
func URLScore(text string, rs *rules.RuleSet) float64 {
	return float64(len(rs.URLPattern().FindAllString(text, -1)))
}

var urlStripPattern = regexp.MustCompile(`https?://\S+`)

// Counts words containing at least one capital letter, after stripping
// URLs. Intentionally coarse: a single leading capital counts, so this
// measures "shouty" style rather than strict all-caps. Downstream weight
// tuning depends on this exact behavior; do not tighten it to an all-caps
// check.
func CapitalWordsScore(text string) float64 {
	stripped := urlStripPattern.ReplaceAllString(text, "")
	count := 0
	for _, word := range strings.Fields(stripped) {
		hasLetter := false
		hasUpper := false
		for _, r := range word {
			if unicode.IsLetter(r) {
				hasLetter = true
				if unicode.IsUpper(r) {
					hasUpper = true
					break
				}
			}
		}
		if hasLetter && hasUpper {
			count++
		}
	}
	return float64(count)
}

// 1 if the author's follower count is at or below the configured
// threshold.
func LowFollowerFlag(author social.AuthorProfile, rs *rules.RuleSet) float64 {
	if author.FollowersCount <= rs.BehaviorRules.UserReputation.LowFollowerThreshold {
		return 1
	}
	return 0
}

// 1 if the author is not verified.
func NotVerifiedFlag(author social.AuthorProfile) float64 {
	if !author.Verified {
		return 1
	}
	return 0
}

// 1 if the author's handle contains any configured spam username
// substring.
func SpamUsernameFlag(author social.AuthorProfile, rs *rules.RuleSet) float64 {
	for _, sub := range rs.ContentRules.SpamUsernames {
		if sub != "" && strings.Contains(author.ScreenName, sub) {
			return 1
		}
	}
	return 0
}

// Posting velocity in posts per hour across the observed history. With
// fewer than two timestamps the raw count is returned (0 or 1); a zero
// time span likewise returns the raw count rather than dividing by zero.
func PostFrequencyScore(timestamps []time.Time) float64 {
	if len(timestamps) < 2 {
		return float64(len(timestamps))
	}
	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	spanHours := sorted[len(sorted)-1].Sub(sorted[0]).Hours()
	if spanHours <= 0 {
		return float64(len(timestamps))
	}
	return float64(len(timestamps)) / spanHours
}
