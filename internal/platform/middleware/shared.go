package middleware

import (
	"net/http"

	"supaboard/pkg/platform/middleware/metadata"
	"supaboard/pkg/platform/middleware/requesttime"
	"supaboard/pkg/requestcontext"
)

// SharedMap installs a fresh request-scoped map. Every request gets its own.
func SharedMap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithSharedMap(r.Context(), requestcontext.NewSharedMap())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestScope installs the per-request values every handler may read:
// shared map, client metadata and request time. Only peers in trusted may
// set the client address through forwarding headers.
func RequestScope(trusted metadata.TrustedProxies) func(http.Handler) http.Handler {
	clientMetadata := metadata.ClientMetadata(trusted)
	return func(next http.Handler) http.Handler {
		return SharedMap(clientMetadata(requesttime.Middleware(next)))
	}
}
