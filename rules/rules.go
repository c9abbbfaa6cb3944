package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/meridian-social/palisade/keyword"
)

// RuleSet is the versioned bundle of content patterns, behavior thresholds,
// signal weights, and decision thresholds driving spam scoring. Instances
// are immutable once parsed; a config rollout produces a new instance via
// the Store rather than mutating a live one.
type RuleSet struct {
	ContentRules     ContentRules              `json:"contentRules"`
	BehaviorRules    BehaviorRules             `json:"behaviorRules"`
	Scoring          Scoring                   `json:"scoring"`
	Thresholds       Thresholds                `json:"thresholds"`
	PlatformSpecific map[string]PlatformConfig `json:"platformSpecific"`

	urlPattern *regexp.Regexp
	hashtagSet map[string]bool
}

type ContentRules struct {
	SpamKeywords  []string `json:"spamKeywords"`
	SpamHashtags  []string `json:"spamHashtags"`
	URLRegex      string   `json:"urlRegex"`
	SpamUsernames []string `json:"spamUsernames"`
}

type BehaviorRules struct {
	UserReputation UserReputation `json:"userReputation"`
}

type UserReputation struct {
	LowFollowerThreshold int64 `json:"lowFollowerThreshold"`
}

// One weight per named signal. All weights must be finite and non-negative;
// negative or NaN weights would break score monotonicity.
type Weights struct {
	SpamKeywords     float64 `json:"spamKeywords"`
	SpamHashtags     float64 `json:"spamHashtags"`
	ExcessiveURLs    float64 `json:"excessiveURLs"`
	CapitalWords     float64 `json:"capitalWords"`
	LowFollowers     float64 `json:"lowFollowers"`
	NotVerified      float64 `json:"notVerified"`
	SpamUsername     float64 `json:"spamUsername"`
	BioSpamKeywords  float64 `json:"bioSpamKeywords"`
	BioSpamHashtags  float64 `json:"bioSpamHashtags"`
	BioExcessiveURLs float64 `json:"bioExcessiveURLs"`
	PostingFrequency float64 `json:"postingFrequency"`
}

type Scoring struct {
	Weights Weights `json:"weights"`
}

type Thresholds struct {
	Flag  float64 `json:"flag"`
	Block float64 `json:"block"`
}

type PlatformConfig struct {
	CachePrefix      string `json:"cachePrefix"`
	CacheTTL         int    `json:"cacheTTL"`
	PostHistoryCount int    `json:"postHistoryCount"`
}

// Parses and validates a JSON ruleset document, pre-compiling the URL
// pattern and normalizing the spam hashtag set.
func ParseRuleSet(raw []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("parsing ruleset: %w", err)
	}
	if err := rs.compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) compile() error {
	if err := rs.validate(); err != nil {
		return err
	}
	pat, err := regexp.Compile(rs.ContentRules.URLRegex)
	if err != nil {
		return fmt.Errorf("compiling ruleset URL pattern: %w", err)
	}
	rs.urlPattern = pat
	rs.hashtagSet = make(map[string]bool, len(rs.ContentRules.SpamHashtags))
	for _, tag := range rs.ContentRules.SpamHashtags {
		rs.hashtagSet[keyword.NormalizeHashtag(tag)] = true
	}
	return nil
}

func (rs *RuleSet) validate() error {
	if rs.Thresholds.Flag < 0 {
		return fmt.Errorf("ruleset flag threshold must be non-negative: %f", rs.Thresholds.Flag)
	}
	if rs.Thresholds.Block < rs.Thresholds.Flag {
		return fmt.Errorf("ruleset block threshold (%f) below flag threshold (%f)", rs.Thresholds.Block, rs.Thresholds.Flag)
	}
	for name, w := range map[string]float64{
		"spamKeywords":     rs.Scoring.Weights.SpamKeywords,
		"spamHashtags":     rs.Scoring.Weights.SpamHashtags,
		"excessiveURLs":    rs.Scoring.Weights.ExcessiveURLs,
		"capitalWords":     rs.Scoring.Weights.CapitalWords,
		"lowFollowers":     rs.Scoring.Weights.LowFollowers,
		"notVerified":      rs.Scoring.Weights.NotVerified,
		"spamUsername":     rs.Scoring.Weights.SpamUsername,
		"bioSpamKeywords":  rs.Scoring.Weights.BioSpamKeywords,
		"bioSpamHashtags":  rs.Scoring.Weights.BioSpamHashtags,
		"bioExcessiveURLs": rs.Scoring.Weights.BioExcessiveURLs,
		"postingFrequency": rs.Scoring.Weights.PostingFrequency,
	} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("ruleset weight %q must be a finite non-negative number: %f", name, w)
		}
	}
	return nil
}

// Compiled pattern for the configured URL regex.
func (rs *RuleSet) URLPattern() *regexp.Regexp {
	return rs.urlPattern
}

func (rs *RuleSet) IsSpamHashtag(tag string) bool {
	return rs.hashtagSet[keyword.NormalizeHashtag(tag)]
}

func (rs *RuleSet) PlatformConfig(platform string) (PlatformConfig, bool) {
	cfg, ok := rs.PlatformSpecific[platform]
	return cfg, ok
}
