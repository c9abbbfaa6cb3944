package keyword

import (
	"regexp"
	"slices"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// Helper to check a single token against a list of tokens
func TokenInSet(tok string, set []string) bool {
	return slices.Contains(set, tok)
}

// Counts how many of the configured keywords appear in the text as whole
// words, case-insensitive. Each keyword counts at most once, regardless of
// how many times it occurs. Multi-word keywords match as a consecutive run
// of tokens.
func MatchCount(text string, keywords []string) int {
	if len(keywords) == 0 || text == "" {
		return 0
	}
	toks := TokenizeText(text)
	set := make(map[string]bool, len(toks))
	for _, t := range toks {
		set[t] = true
	}
	count := 0
	for _, kw := range keywords {
		kwToks := TokenizeText(kw)
		switch len(kwToks) {
		case 0:
			continue
		case 1:
			if set[kwToks[0]] {
				count++
			}
		default:
			if containsRun(toks, kwToks) {
				count++
			}
		}
	}
	return count
}

func containsRun(toks, run []string) bool {
	for i := 0; i+len(run) <= len(toks); i++ {
		if slices.Equal(toks[i:i+len(run)], run) {
			return true
		}
	}
	return false
}

// Pulls all #hashtag substrings out of free-form text, with the leading '#'
// removed. Order of appearance is preserved; duplicates are kept.
func ExtractHashtags(text string) []string {
	var tags []string
	for _, m := range hashtagPattern.FindAllString(text, -1) {
		tags = append(tags, strings.TrimPrefix(m, "#"))
	}
	return tags
}

func NormalizeHashtag(raw string) string {
	return strings.ToLower(strings.TrimPrefix(raw, "#"))
}
