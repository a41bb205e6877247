package auth

import (
	"context"
	"log/slog"
	"net/http"

	"switchboard-ai/hermes/pkg/proxy"
	"switchboard-ai/hermes/pkg/proxy/types"
)

// Middleware is HTTP middleware enforcing bearer-token authentication.
// Rejections are OpenAI error envelopes, not plain text, so OpenAI SDKs
// surface them cleanly.
type Middleware struct {
	validator *TokenValidator
}

// NewMiddleware creates authentication middleware around a validator.
func NewMiddleware(validator *TokenValidator) *Middleware {
	return &Middleware{validator: validator}
}

// Handle wraps an HTTP handler with token authentication. On success the
// token's info is stored in the request context; on failure a 401 envelope
// is written and the handler never runs, so no upstream call is made.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := proxy.ExtractBearerToken(r)

		info, err := m.validator.Validate(token)
		if err != nil {
			slog.Warn("authentication failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)

			_ = proxy.WriteErrorResponse(w, types.NewAuthenticationError(
				"Invalid or missing access token",
			))
			return
		}

		slog.Debug("token authenticated",
			"holder", info.Description,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), tokenInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Context key for token info.
type contextKey string

const tokenInfoKey contextKey = "token_info"

// GetTokenInfo retrieves the authenticated token's info from the context.
func GetTokenInfo(ctx context.Context) (*TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoKey).(*TokenInfo)
	return info, ok
}
