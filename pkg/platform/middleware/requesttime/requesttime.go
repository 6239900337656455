// Package requesttime pins a single "now" per request so cookie expiry checks,
// audit timestamps and token expiry comparisons agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"supaboard/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
