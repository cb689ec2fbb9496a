package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/aas-cloud/doorpilot/internal/domain"
)

// TokenVerifier validates a bearer token and resolves the caller.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware resolves the caller identity from the Authorization
// header and stores it in the request context. A missing token is not
// an error: the request proceeds anonymously and role checks happen in
// the usecases. Only a present-but-invalid token is rejected. A nil
// verifier disables authentication entirely (every caller anonymous).
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(header, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			user, err := verifier.Verify(r.Context(), header[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, safeDomainMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
		})
	}
}
