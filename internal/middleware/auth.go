package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fitlens/backend/internal/contextkeys"
	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/handler"
	"github.com/fitlens/backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Auth verifies the identity-provider-issued JWT (HS256, shared secret) and
// stores the opaque subject in context. The cached profile row is refreshed
// best-effort; a storage hiccup there never fails the request.
func Auth(jwtSecret string, users *repository.UserRepository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
				return
			}

			sub, email, name, err := verifyToken(parts[1], jwtSecret)
			if err != nil {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}

			if users != nil {
				u := &domain.User{ID: sub, Email: email, DisplayName: name}
				if err := users.Upsert(r.Context(), u); err != nil {
					logrus.WithError(err).WithField("userId", sub).Warn("failed to refresh cached profile")
				}
			}

			ctx := context.WithValue(r.Context(), contextkeys.UserID, sub)
			ctx = context.WithValue(ctx, contextkeys.UserEmail, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyToken(tokenStr, secret string) (sub, email, name string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", "", fmt.Errorf("invalid token claims")
	}

	sub = claimString(claims, "sub")
	if sub == "" {
		return "", "", "", fmt.Errorf("token has no subject")
	}
	return sub, claimString(claims, "email"), claimString(claims, "name"), nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
