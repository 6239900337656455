package sessioncookie

import (
	"net/http"
	"strings"
	"time"
)

// FlowName is the cookie carrying the pending PKCE flow id.
const FlowName = "_pkce_flow"

// FlowMaxAge is the cookie lifetime, in seconds, when the flow reports no TTL.
const FlowMaxAge = 600

// FlowCookie stores the opaque flow id between a redirect sign-in and its callback.
type FlowCookie struct {
	opts Options
}

// NewFlowCookie shares domain and secure settings with the session cookie.
func NewFlowCookie(session Options) *FlowCookie {
	return &FlowCookie{opts: Options{
		Name:     FlowName,
		MaxAge:   FlowMaxAge,
		Path:     "/",
		Domain:   session.Domain,
		Secure:   session.Secure,
		SameSite: http.SameSiteLaxMode,
	}}
}

// Read returns the flow id.
func (f *FlowCookie) Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(f.opts.Name)
	if err != nil || cookie == nil {
		return "", false
	}
	v := strings.TrimSpace(cookie.Value)
	return v, v != ""
}

// Write stores id for as long as the flow itself is kept.
func (f *FlowCookie) Write(w http.ResponseWriter, id string, ttl time.Duration) {
	maxAge := f.opts.MaxAge
	if secs := int(ttl / time.Second); secs > 0 {
		maxAge = secs
	}
	http.SetCookie(w, f.cookie(id, maxAge))
}

// Clear expires the flow cookie.
func (f *FlowCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, f.cookie("", -1))
}

func (f *FlowCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     f.opts.Name,
		Value:    value,
		Path:     f.opts.Path,
		Domain:   f.opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.opts.Secure,
		SameSite: f.opts.SameSite,
	}
}
