package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
)

type ctxKey int

const authCtxKey ctxKey = iota

func withAuthContext(ctx context.Context, ac domain.AuthContext) context.Context {
	return context.WithValue(ctx, authCtxKey, ac)
}

// AuthFromContext retrieves the AuthContext injected by the auth middleware.
func AuthFromContext(ctx context.Context) (domain.AuthContext, bool) {
	ac, ok := ctx.Value(authCtxKey).(domain.AuthContext)
	return ac, ok
}

func extractCredential(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// authMiddleware resolves the caller's AuthContext from X-Api-Key or a
// Bearer token, and gates the admin subtree to ADMIN-role keys.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred := extractCredential(r)
		if cred == "" {
			mapError(w, errs.Unauthorized("API key is required"))
			return
		}

		ac, err := s.apiKeys.Authenticate(r.Context(), cred)
		if err != nil {
			mapError(w, err)
			return
		}

		if strings.HasPrefix(r.URL.Path, adminPrefix) && ac.Role != domain.RoleAdmin {
			mapError(w, errs.Forbidden("admin role required"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withAuthContext(r.Context(), ac)))
	})
}
