package httputil

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/ctxlog"
	"github.com/taarez/taarez-backend/internal/pkg/metrics"
)

// Authentication failure messages.
const (
	MsgNotAuthenticated   = "Not authenticated"
	MsgInvalidCredentials = "Could not validate credentials"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && (originsSet[origin] || originsSet["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to an active user.
// It returns domain.ErrUnauthenticated for every authentication failure.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware requires a valid bearer token and stores the resolved user in the context.
func AuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				metrics.RecordAccessDenied("missing_token")
				Unauthorized(w, MsgNotAuthenticated)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					Unauthorized(w, MsgInvalidCredentials)
					return
				}
				ctxlog.FromContext(r.Context()).Error("authenticate request", "error", err)
				Error(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := ctxlog.With(r.Context(), "user_id", user.ID)
			ctx = context.WithValue(ctx, userKey, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var deniedMessages = map[domain.Role]string{
	domain.RoleAdmin:    "The user does not have administrative privileges",
	domain.RoleDesigner: "The user is not a designer",
	domain.RoleTailor:   "The user is not a tailor",
	domain.RoleCustomer: "The user is not a customer",
}

// RequireRole creates RBAC middleware. It must run after AuthMiddleware.
func RequireRole(required domain.Role) func(http.Handler) http.Handler {
	message, ok := deniedMessages[required]
	if !ok {
		panic("httputil: unknown role " + string(required))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				Unauthorized(w, MsgNotAuthenticated)
				return
			}

			if !domain.Allows(required, user) {
				metrics.RecordAccessDenied("insufficient_role")
				ctxlog.FromContext(r.Context()).Info("access denied",
					"required_role", required,
					"role", user.Role,
				)
				Error(w, http.StatusForbidden, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser returns the authenticated user, or nil outside AuthMiddleware.
func GetUser(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userKey).(*domain.User); ok {
		return user
	}
	return nil
}

// GetUserID returns the authenticated user's ID, or "".
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

// WithUser returns a context carrying user. Intended for tests of handlers behind AuthMiddleware.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
