package middleware

import (
	"log"
	"net/http"

	"github.com/diewo77/blog-api/httpx"
)

// Recover converts handler panics into a JSON 500 instead of killing the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("%s panic serving %s %s: %v", RequestIDFrom(r.Context()), r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
