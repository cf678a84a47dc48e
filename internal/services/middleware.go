package services

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// RequireAuth validates the Bearer token, loads the user and puts it on
// the request context. Inactive accounts are rejected.
func RequireAuth(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(db, r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth puts the user on the context when a valid Bearer token
// is present and lets the request through either way. Public routes
// that behave differently for admins use this.
func OptionalAuth(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := authenticate(db, r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireAuth plus an admin-role check.
func RequireAdmin(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if user == nil || !user.IsAdmin() {
				WriteError(w, r, apperrors.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireAgent allows agents and admins through.
func RequireAgent(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if user == nil || !user.IsAgent() {
				WriteError(w, r, apperrors.Forbidden("agent access required"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func authenticate(db *gorm.DB, r *http.Request) (*domain.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperrors.Unauthorized("authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.Unauthorized("invalid authorization header format")
	}

	claims, err := util.ValidateToken(parts[1])
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := util.GetUserFromToken(db, claims)
	if err != nil {
		return nil, apperrors.Unauthorized("user not found")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("user account is inactive")
	}
	return user, nil
}
