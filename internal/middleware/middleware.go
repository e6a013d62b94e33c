// Package middleware holds the HTTP middleware chain shared by all
// routes.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/router"
)

// Recover converts panics into a 500 response instead of killing the
// connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				handler.ErrorResponse(w, r, domain.Errorf(domain.EINTERNAL, "", "Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize rejects request bodies larger than n bytes.
func MaxBodySize(n int64) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
