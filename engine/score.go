package engine

import (
	"time"

	"github.com/meridian-social/palisade/rules"
)

type Action string

const (
	ActionAllow Action = "ALLOW"
	ActionFlag  Action = "FLAG"
	ActionBlock Action = "BLOCK"
)

// Outcome of one analysis. Returned to the caller and, on FLAG, forwarded
// to the review store and the deep-analysis queue.
type AnalysisResult struct {
	Action      Action    `json:"action"`
	Confidence  float64   `json:"confidence"`
	Score       float64   `json:"score"`
	Reasons     []string  `json:"reasons"`
	RequestID   string    `json:"requestId"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Combines the signal vector into a total score, the threshold-based
// action, the reason list, and a confidence value.
//
// Confidence is derived from the fraction r of signals that fired, not
// from score magnitude: below half the signals, confidence is (1-r)*100 —
// few activations read as high confidence in a clean post — and from half
// upward it is r*100. The inversion at r=0.5 is a compatibility-bound
// behavior of the original scoring design and is under product review; do
// not normalize it to a monotone mapping here.
func AggregateSignals(vec SignalVector, rs *rules.RuleSet) (score float64, action Action, confidence float64, reasons []string) {
	positive := 0
	reasons = []string{}
	for _, sig := range vec {
		score += sig.Raw * sig.Weight
		if sig.Raw > 0 {
			positive++
			reasons = append(reasons, sig.Name)
		}
	}

	switch {
	case score >= rs.Thresholds.Block:
		action = ActionBlock
	case score >= rs.Thresholds.Flag:
		action = ActionFlag
	default:
		action = ActionAllow
	}

	r := float64(positive) / float64(len(vec))
	if r < 0.5 {
		confidence = (1 - r) * 100
	} else {
		confidence = r * 100
	}
	return score, action, confidence, reasons
}
