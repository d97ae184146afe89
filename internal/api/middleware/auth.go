package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAuth guards the API with a bearer JWT signed by the process-wide
// development token. There is no user database behind this: possession of a
// token minted from the shared secret is the whole access model.
type TokenAuth struct {
	secret []byte
	logger *slog.Logger
}

func NewTokenAuth(developmentToken string, logger *slog.Logger) *TokenAuth {
	return &TokenAuth{
		secret: []byte(developmentToken),
		logger: logger,
	}
}

// RequireToken rejects requests without a valid HS256 bearer token.
func (a *TokenAuth) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			// Force the signing method check; never trust the token header.
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			a.logger.Warn("Rejected request with invalid token", slog.Any("error", err))
			http.Error(w, `{"message": "Invalid token"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
