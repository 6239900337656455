// Package models holds the rate limiting types.
package models

import (
	"strings"
	"time"
)

// EndpointClass groups routes that share one limit.
type EndpointClass string

const (
	// ClassAuth covers the auth actions that reach the hosted auth service.
	ClassAuth EndpointClass = "auth"
	// ClassWrite covers task board mutations.
	ClassWrite EndpointClass = "write"
)

// Limit is a sliding window quota.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Key builds the bucket key for a caller of a class.
func Key(class EndpointClass, ip string) string {
	return "ratelimit:" + string(class) + ":" + strings.ReplaceAll(ip, ":", "_")
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, never
// below one.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
