package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type contextKey struct{}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}

// WithIdentity attaches an identity to ctx. Exposed for tests.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware validates the bearer token once per request and injects the
// caller identity into the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeUnauthorized(w, "no token provided")
			return
		}

		identity, err := v.ParseValidate(token)
		if err != nil {
			log.Debug().Err(err).Msg("rejected request token")
			writeUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// IdentityFromRequest authenticates a WebSocket upgrade request. The token
// may arrive as a query parameter or an Authorization header; it is
// validated once, at connect time.
func (v *Verifier) IdentityFromRequest(r *http.Request) (*Identity, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = BearerToken(r.Header.Get("Authorization"))
	}
	return v.ParseValidate(token)
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
