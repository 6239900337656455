package testutil

import (
	"context"
	"net/http"

	"supaboard/pkg/requestcontext"
)

// WithSharedMap attaches a fresh request-scoped map, as the request scope
// middleware would, and returns it for seeding.
func WithSharedMap(req *http.Request) (*http.Request, *requestcontext.SharedMap) {
	m := requestcontext.NewSharedMap()
	return req.WithContext(requestcontext.WithSharedMap(req.Context(), m)), m
}

// WithUserID adds a user ID to the request context.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
