package mw

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
)

const testToken = "s3cret-token"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// --- RawTokenAuth tests ---

func TestRawTokenAuth_ValidBearerToken(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRawTokenAuth_ValidXAPIKeyHeader(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-API-Key", testToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRawTokenAuth_QueryToken(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+testToken, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRawTokenAuth_MissingKey(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called when key is missing")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "API token required")
}

func TestRawTokenAuth_InvalidKey(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called with invalid key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-key-12345")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid API token")
}

func TestRawTokenAuth_Disabled(t *testing.T) {
	handler := RawTokenAuth(testLogger(), "")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRawTokenAuth_BearerPrefixPrecedence(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(okHandler))

	// A Bearer token wins over X-API-Key.
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-API-Key", "wrong-key")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRawTokenAuth_AuthorizationWithoutBearerFallsToXAPIKey(t *testing.T) {
	handler := RawTokenAuth(testLogger(), testToken)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "not-a-bearer-token")
	req.Header.Set("X-API-Key", testToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- HumaAuth tests ---

type pingOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func ping(_ context.Context, _ *struct{}) (*pingOutput, error) {
	out := &pingOutput{}
	out.Body.Status = "ok"
	return out, nil
}

func newAuthAPI(t *testing.T, token string) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	api.UseMiddleware(HumaAuth(api, testLogger(), token))
	PublicGet(api, "/public", ping)
	ProtectedGet(api, "/protected", ping)
	return api
}

func TestHumaAuth_PublicRouteNeedsNoToken(t *testing.T) {
	api := newAuthAPI(t, testToken)
	resp := api.Get("/public")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHumaAuth_ProtectedRoute(t *testing.T) {
	api := newAuthAPI(t, testToken)

	resp := api.Get("/protected")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "API token required")

	resp = api.Get("/protected", "Authorization: Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/protected", "Authorization: Bearer "+testToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/protected", "X-API-Key: "+testToken)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHumaAuth_NoTokenConfigured(t *testing.T) {
	api := newAuthAPI(t, "")
	resp := api.Get("/protected")
	assert.Equal(t, http.StatusOK, resp.Code)
}

// --- operationRequiresAuth tests ---

func TestOperationRequiresAuth_WithSecurity(t *testing.T) {
	op := &huma.Operation{
		Security: []map[string][]string{
			{SecurityScheme: {}},
		},
	}
	assert.True(t, operationRequiresAuth(op))
}

func TestOperationRequiresAuth_WithoutSecurity(t *testing.T) {
	assert.False(t, operationRequiresAuth(&huma.Operation{}))
	assert.False(t, operationRequiresAuth(nil))
}

func TestOperationRequiresAuth_WithOtherSecurityScheme(t *testing.T) {
	op := &huma.Operation{
		Security: []map[string][]string{
			{"otherScheme": {}},
		},
	}
	assert.False(t, operationRequiresAuth(op))
}

func TestOperationRequiresAuth_EmptySecuritySlice(t *testing.T) {
	op := &huma.Operation{
		Security: []map[string][]string{},
	}
	assert.False(t, operationRequiresAuth(op))
}

// --- keyPrefix tests ---

func TestKeyPrefix(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"long key", "abcdefghij", "abcd"},
		{"exactly 4", "abcd", "abcd"},
		{"short key", "ab", "ab"},
		{"empty key", "", ""},
		{"single char", "x", "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, keyPrefix(tc.key))
		})
	}
}
