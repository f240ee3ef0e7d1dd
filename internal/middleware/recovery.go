package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/fitlens/backend/internal/handler"
	"github.com/sirupsen/logrus"
)

// Recovery catches panics and returns a 500 error instead of crashing the
// server.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithField("stack", string(debug.Stack())).Errorf("panic: %v", err)
				handler.JSON(w, http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
