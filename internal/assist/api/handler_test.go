package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/markpad/internal/assist"
)

// fakeReviser returns a canned result or error.
type fakeReviser struct {
	result *assist.Result
	err    error
	gotReq assist.Request
}

func (f *fakeReviser) Revise(_ context.Context, req assist.Request) (*assist.Result, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestHandler(reviser Reviser) http.Handler {
	return NewHandler(Config{
		Service:        reviser,
		RateLimit:      100,
		AllowedOrigins: []string{"http://127.0.0.1:5173"},
	}).Routes()
}

func postAnalyze(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_Success(t *testing.T) {
	reviser := &fakeReviser{result: &assist.Result{Markdown: "# Better", Summary: "- improved"}}
	handler := newTestHandler(reviser)

	rec := postAnalyze(t, handler, `{"markdown": "# Title", "instructions": "improve"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "# Better", resp.Markdown)
	require.Equal(t, "- improved", resp.Summary)
	require.Equal(t, "# Title", reviser.gotReq.Markdown)
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	handler := newTestHandler(&fakeReviser{})

	rec := postAnalyze(t, handler, "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Invalid JSON body", resp.Error)
}

func TestAnalyze_MissingFields(t *testing.T) {
	handler := newTestHandler(&fakeReviser{})

	rec := postAnalyze(t, handler, `{"markdown": "only one"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_ErrorKindMapsToStatus(t *testing.T) {
	tests := []struct {
		kind   assist.ErrorKind
		status int
	}{
		{assist.ErrTimeout, http.StatusRequestTimeout},
		{assist.ErrConnection, http.StatusServiceUnavailable},
		{assist.ErrRateLimited, http.StatusTooManyRequests},
		{assist.ErrAuth, http.StatusUnauthorized},
		{assist.ErrUpstream, http.StatusBadGateway},
		{assist.ErrOther, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			handler := newTestHandler(&fakeReviser{
				err: &assist.Error{Kind: tc.kind},
			})

			rec := postAnalyze(t, handler, `{"markdown": "m", "instructions": "i"}`)

			require.Equal(t, tc.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tc.kind.UserMessage(), resp.Error)
		})
	}
}

func TestAnalyze_RateLimit(t *testing.T) {
	handler := NewHandler(Config{
		Service:    &fakeReviser{result: &assist.Result{Markdown: "x"}},
		RateLimit:  2,
		RateWindow: time.Hour,
	}).Routes()

	for i := 0; i < 2; i++ {
		rec := postAnalyze(t, handler, `{"markdown": "m", "instructions": "i"}`)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := postAnalyze(t, handler, `{"markdown": "m", "instructions": "i"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAnalyze_CORSAllowedOrigin(t *testing.T) {
	handler := newTestHandler(&fakeReviser{result: &assist.Result{Markdown: "x"}})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"markdown": "m", "instructions": "i"}`))
	req.Header.Set("Origin", "http://127.0.0.1:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "http://127.0.0.1:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnalyze_CORSUnknownOriginGetsNoHeader(t *testing.T) {
	handler := newTestHandler(&fakeReviser{result: &assist.Result{Markdown: "x"}})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"markdown": "m", "instructions": "i"}`))
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	handler := newTestHandler(&fakeReviser{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(&fakeReviser{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok": true}`, rec.Body.String())
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	require.Equal(t, "10.1.2.3", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "203.0.113.9", clientKey(req))
}
