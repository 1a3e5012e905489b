package mw

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// extractKey reads the API token from the Authorization: Bearer header,
// falling back to X-API-Key.
func extractKey(header func(string) string) string {
	key := header("Authorization")
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(key, bearerPrefix) {
		return key[len(bearerPrefix):]
	}
	return header("X-API-Key")
}

func tokenMatches(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// HumaAuth returns a Huma middleware that checks the static API token on
// operations carrying the SecurityScheme requirement. An empty token
// disables the check; the agent then relies on listening on loopback only.
func HumaAuth(api huma.API, logger *slog.Logger, token string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if token == "" || !operationRequiresAuth(ctx.Operation()) {
			next(ctx)
			return
		}

		key := extractKey(ctx.Header)
		if key == "" {
			logger.Warn("API token missing",
				"method", ctx.Method(),
				"path", ctx.URL().Path,
				"remote_addr", ctx.RemoteAddr(),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "API token required")
			return
		}
		if !tokenMatches(token, key) {
			logger.Warn("Invalid API token used",
				"key_prefix", keyPrefix(key),
				"method", ctx.Method(),
				"path", ctx.URL().Path,
				"remote_addr", ctx.RemoteAddr(),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid API token")
			return
		}
		next(ctx)
	}
}

// RawTokenAuth is HumaAuth for handlers registered directly on the router,
// such as the WebSocket feed. Browsers cannot set headers on a WebSocket
// upgrade, so a ?token= query parameter is accepted as well.
func RawTokenAuth(logger *slog.Logger, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := extractKey(r.Header.Get)
			if key == "" {
				key = r.URL.Query().Get("token")
			}

			if key == "" {
				logger.Warn("API token missing",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Unauthorized: API token required", http.StatusUnauthorized)
				return
			}
			if !tokenMatches(token, key) {
				logger.Warn("Invalid API token used",
					"key_prefix", keyPrefix(key),
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Unauthorized: invalid API token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// operationRequiresAuth reports whether op declares the SecurityScheme.
func operationRequiresAuth(op *huma.Operation) bool {
	if op == nil {
		return false
	}
	for _, req := range op.Security {
		if _, ok := req[SecurityScheme]; ok {
			return true
		}
	}
	return false
}

// keyPrefix returns the first 4 characters of a key for safe logging.
func keyPrefix(key string) string {
	if len(key) >= 4 {
		return key[:4]
	}
	return key
}
