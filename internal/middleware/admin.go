package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/fitlens/backend/internal/handler"
)

// AdminKey gates admin endpoints on the X-Admin-Key header. The comparison
// is constant time.
func AdminKey(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Admin-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid admin key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
