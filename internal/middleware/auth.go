package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/auth"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthMiddleware gates requests on a verified bearer token. No request
// reaches the wrapped handler without a user id in its context.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		var token string
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = authHeader[len("Bearer "):]
		}

		if token == "" {
			respondError(w, http.StatusUnauthorized, "Not authorized, no token provided")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				respondError(w, http.StatusUnauthorized, "Not authorized, token expired")
			} else {
				respondError(w, http.StatusUnauthorized, "Not authorized, invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}
