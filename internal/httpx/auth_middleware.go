package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"bookshelf/internal/platform/crypto"
)

// TokenVerifier decodes identity tokens.
type TokenVerifier interface {
	Verify(token string) (crypto.Identity, error)
}

// AuthMiddleware binds the caller's identity to the request context when a
// valid bearer token is present. Missing or invalid tokens leave the request
// anonymous; handlers decide whether identity is required.
func AuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "ignoring invalid token",
					"request_id", RequestIDFrom(r),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithIdentity(r.Context(), Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Email:    claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len(prefix):])
	return token, token != ""
}
