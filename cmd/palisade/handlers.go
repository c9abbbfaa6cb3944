package main

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-social/palisade/engine"
	"github.com/meridian-social/palisade/social"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	serviceName       = "spam-detection"
	maxContentLength  = 5000
	recentFlagsLimit  = 50
	recentFlagsMaxReq = 200
)

var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type analyzeRequestBody struct {
	Content        string                 `json:"content"`
	UserID         string                 `json:"userID"`
	Platform       string                 `json:"platform"`
	RequestID      string                 `json:"requestId"`
	ClientMetadata *engine.ClientMetadata `json:"clientMetadata,omitempty"`
}

type analyzeResponseBody struct {
	Result    *engine.AnalysisResult `json:"result"`
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Timestamp string                 `json:"timestamp"`
}

type errorResponseBody struct {
	Error     string `json:"error"`
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponseBody{
		Error:     msg,
		Status:    "error",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
)

func (s *Server) handleAnalyze(c echo.Context) error {
	var body analyzeRequestBody
	if err := c.Bind(&body); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		return errorResponse(c, http.StatusBadRequest, "content cannot be empty")
	}
	if len(content) > maxContentLength {
		return errorResponse(c, http.StatusBadRequest, "content too long")
	}
	content = htmlEscaper.Replace(content)

	userID := strings.TrimSpace(body.UserID)
	if !userIDPattern.MatchString(userID) {
		return errorResponse(c, http.StatusBadRequest, "invalid userID format")
	}

	platform, err := social.ParsePlatform(strings.TrimSpace(body.Platform))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "unsupported platform")
	}

	requestID := strings.TrimSpace(body.RequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	req := &engine.AnalysisRequest{
		Content:        content,
		UserID:         userID,
		Platform:       platform,
		RequestID:      requestID,
		ClientMetadata: body.ClientMetadata,
	}

	result, err := s.engine.ProcessRequest(c.Request().Context(), req)
	if err != nil {
		// internal detail stays in the logs; the client gets the kind only
		s.logger.Error("analysis failed", "err", err, "requestId", requestID)
		switch {
		case errors.Is(err, engine.ErrInvalidRequest):
			return errorResponse(c, http.StatusBadRequest, "invalid analysis request")
		case errors.Is(err, engine.ErrMalformedEnrichedData):
			return errorResponse(c, http.StatusBadGateway, "social data unavailable for user")
		case errors.Is(err, engine.ErrUpstreamUnavailable):
			return errorResponse(c, http.StatusServiceUnavailable, "analysis temporarily unavailable")
		default:
			return errorResponse(c, http.StatusInternalServerError, "analysis failed")
		}
	}

	return c.JSON(http.StatusOK, analyzeResponseBody{
		Result:    result,
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Operator endpoint: deletes the cached ruleset so the next analysis
// reloads it from the durable source.
func (s *Server) handleInvalidateRules(c echo.Context) error {
	if err := s.rulesStore.Invalidate(c.Request().Context()); err != nil {
		s.logger.Error("ruleset invalidation failed", "err", err)
		return errorResponse(c, http.StatusServiceUnavailable, "cache unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Operator endpoint: most recently flagged posts awaiting manual review.
func (s *Server) handleRecentFlags(c echo.Context) error {
	limit := recentFlagsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, recentFlagsMaxReq)
		}
	}
	recent, err := s.engine.Flags.Recent(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error("listing flagged posts failed", "err", err)
		return errorResponse(c, http.StatusInternalServerError, "flag store unavailable")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"flags":   recent,
		"status":  "ok",
		"service": serviceName,
	})
}
