package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meridian-social/palisade/dispatch"
	"github.com/meridian-social/palisade/flagstore"
	"github.com/meridian-social/palisade/rules"
	"github.com/meridian-social/palisade/social"
)

// A validated inbound analysis request. Immutable for the duration of the
// request; never persisted.
type AnalysisRequest struct {
	Content        string          `json:"content"`
	UserID         string          `json:"userID"`
	Platform       social.Platform `json:"platform"`
	RequestID      string          `json:"requestId"`
	ClientMetadata *ClientMetadata `json:"clientMetadata,omitempty"`
}

type ClientMetadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Runtime for scoring posts: resolves the active ruleset, runs the signal
// extractors and aggregation, and hands FLAG outcomes to the review store
// and deep-analysis queue.
//
// Engines are safe for concurrent use; per-request state never leaves the
// stack, and the only shared resource is the ruleset cache, whose
// repopulation is idempotent.
type Engine struct {
	Logger  *slog.Logger
	Rules   *rules.Store
	Flags   flagstore.FlagStore
	Queue   dispatch.Queue
	Clients map[social.Platform]social.Client

	// bound on the fire-and-continue notification work after the
	// response is returned
	NotifyTimeout time.Duration
}

func (eng *Engine) notifyTimeout() time.Duration {
	if eng.NotifyTimeout > 0 {
		return eng.NotifyTimeout
	}
	return 10 * time.Second
}

// Resolves the platform capability for a request.
func (eng *Engine) Client(platform social.Platform) (social.Client, error) {
	client, ok := eng.Clients[platform]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported platform: %s", ErrInvalidRequest, platform)
	}
	return client, nil
}

// Fetches enriched data for the request's author via the platform
// capability, then analyzes the post. This is the full inbound path the
// API server calls.
func (eng *Engine) ProcessRequest(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	if err := eng.validateRequest(req); err != nil {
		return nil, err
	}
	client, err := eng.Client(req.Platform)
	if err != nil {
		return nil, err
	}
	rs, err := eng.Rules.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	cfg, ok := rs.PlatformConfig(string(req.Platform))
	if !ok {
		return nil, fmt.Errorf("%w: no ruleset configuration for platform: %s", ErrInvalidRequest, req.Platform)
	}
	data, err := client.GetEnrichedData(ctx, req.UserID, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return eng.AnalyzePost(ctx, req, data)
}

// Scores a single post given externally supplied enriched data. Fails if
// the request is structurally invalid, the enriched data resolves no
// author, or no ruleset can be obtained; extractor-level oddities (empty
// text, missing bio) never fail the analysis.
func (eng *Engine) AnalyzePost(ctx context.Context, req *AnalysisRequest, data []social.Post) (res *AnalysisResult, err error) {
	// similar to an HTTP server, we want to recover any panics from rule evaluation
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("analysis execution exception", "err", r, "user", req.UserID, "requestId", req.RequestID)
			err = fmt.Errorf("analysis failed")
		}
	}()
	start := time.Now()

	if err := eng.validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := eng.Client(req.Platform); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty post history", ErrMalformedEnrichedData)
	}

	rs, err := eng.Rules.Load(ctx)
	if err != nil {
		analysisErrorCount.WithLabelValues("ruleset").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	vec := ExtractSignals(req.Content, data, rs)
	score, action, confidence, reasons := AggregateSignals(vec, rs)

	result := &AnalysisResult{
		Action:      action,
		Confidence:  confidence,
		Score:       score,
		Reasons:     reasons,
		RequestID:   req.RequestID,
		ProcessedAt: time.Now().UTC(),
	}

	analysisCount.WithLabelValues(string(req.Platform), string(action)).Inc()
	analysisDuration.WithLabelValues(string(req.Platform)).Observe(time.Since(start).Seconds())
	eng.Logger.Info("post analyzed",
		"requestId", req.RequestID,
		"user", req.UserID,
		"platform", req.Platform,
		"action", action,
		"score", score,
		"confidence", confidence,
		"reasons", reasons,
	)

	if action == ActionFlag {
		eng.notifyFlagged(ctx, req, result)
	}
	return result, nil
}

func (eng *Engine) validateRequest(req *AnalysisRequest) error {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: missing user identity", ErrInvalidRequest)
	}
	if req.Content == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidRequest)
	}
	return nil
}

// Hands a flagged result to the review store and the deep-analysis queue
// without blocking the response on either. Both collaborators own their
// failure modes; here their errors are logged and counted, nothing more.
func (eng *Engine) notifyFlagged(ctx context.Context, req *AnalysisRequest, result *AnalysisResult) {
	logger := eng.Logger.With("requestId", result.RequestID, "user", req.UserID)
	logger.Info("post flagged, persisting for manual review and queueing deep analysis")

	rec := &flagstore.FlaggedPost{
		RequestID:   result.RequestID,
		UserID:      req.UserID,
		Platform:    string(req.Platform),
		Action:      string(result.Action),
		Score:       result.Score,
		Confidence:  result.Confidence,
		Reasons:     strings.Join(result.Reasons, ","),
		ProcessedAt: result.ProcessedAt,
	}
	task := &dispatch.Task{
		RequestID:   result.RequestID,
		UserID:      req.UserID,
		Platform:    string(req.Platform),
		Score:       result.Score,
		Confidence:  result.Confidence,
		Reasons:     result.Reasons,
		ProcessedAt: result.ProcessedAt,
	}

	// detached from the request's cancellation: the response does not
	// wait for these, but they should not be torn down with it either
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eng.notifyTimeout())
	go func() {
		defer cancel()
		if eng.Flags != nil {
			if err := eng.Flags.Add(notifyCtx, rec); err != nil {
				notifyErrorCount.WithLabelValues("flagstore").Inc()
				logger.Error("persisting flagged result failed", "err", err)
			}
		}
		if eng.Queue != nil {
			if err := eng.Queue.Enqueue(notifyCtx, task); err != nil {
				notifyErrorCount.WithLabelValues("dispatch").Inc()
				logger.Error("queueing deep analysis failed", "err", err)
			}
		}
	}()
}
