package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meridian-social/palisade/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	eng := engine.EngineTestFixture()
	s := &Server{
		logger:     slog.Default(),
		engine:     &eng,
		rulesStore: eng.Rules,
	}
	s.echo = s.buildEcho()
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	assert := assert.New(t)
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/analyze", `{
		"content": "this is a test tweet www.occamm.com www.reddit.com www.google.com",
		"userID": "somebody",
		"platform": "twitter",
		"requestId": "req-http"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal("ok", resp.Status)
	assert.Equal("spam-detection", resp.Service)
	require.NotNil(t, resp.Result)
	assert.Equal(engine.ActionAllow, resp.Result.Action)
	assert.Equal("req-http", resp.Result.RequestID)
	assert.Contains(resp.Result.Reasons, "excessive urls")
}

func TestHandleAnalyzeValidation(t *testing.T) {
	assert := assert.New(t)
	s := testServer(t)

	fixtures := []struct {
		name string
		body string
	}{
		{name: "empty content", body: `{"content": "  ", "userID": "somebody", "platform": "twitter"}`},
		{name: "bad userID", body: `{"content": "hi", "userID": "no spaces!", "platform": "twitter"}`},
		{name: "unknown platform", body: `{"content": "hi", "userID": "somebody", "platform": "myspace"}`},
		{name: "too long", body: `{"content": "` + strings.Repeat("a", 5001) + `", "userID": "somebody", "platform": "twitter"}`},
	}
	for _, fix := range fixtures {
		rec := doJSON(t, s, http.MethodPost, "/api/analyze", fix.body)
		assert.Equal(http.StatusBadRequest, rec.Code, fix.name)
	}
}

func TestHandleAnalyzeGeneratesRequestID(t *testing.T) {
	assert := assert.New(t)
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/analyze", `{
		"content": "a quiet post",
		"userID": "somebody",
		"platform": "twitter"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(resp.Result.RequestID)
}

func TestHandleHealth(t *testing.T) {
	assert := assert.New(t)
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), `"status":"ok"`)
}

func TestHandleInvalidateRules(t *testing.T) {
	assert := assert.New(t)
	s := testServer(t)

	// prime the cache, then invalidate it
	_, err := s.rulesStore.Load(t.Context())
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPost, "/admin/rules/invalidate", "")
	assert.Equal(http.StatusOK, rec.Code)

	// a fresh load still succeeds, via the source
	_, err = s.rulesStore.Load(t.Context())
	assert.NoError(err)
}
