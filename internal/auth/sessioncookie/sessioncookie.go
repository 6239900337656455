// Package sessioncookie reads and writes the auth session cookie.
//
// The cookie holds only the token triple {access_token, refresh_token,
// expires_in} as URL-escaped JSON. User data is never persisted in it.
package sessioncookie

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// DefaultName is the session cookie name.
const DefaultName = "_session"

// DefaultMaxAge is the session cookie lifetime in seconds (about a week).
const DefaultMaxAge = 610000

// Tokens is the cookie payload.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Options are the fixed cookie attributes. Only the value varies per write.
type Options struct {
	Name     string
	MaxAge   int
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// DefaultOptions returns the http-only, lax, site-wide session cookie attributes.
func DefaultOptions() Options {
	return Options{
		Name:     DefaultName,
		MaxAge:   DefaultMaxAge,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

// Codec applies one Options value to every read and write.
type Codec struct {
	opts Options
}

// New builds a Codec, filling zero fields from DefaultOptions.
func New(opts Options) *Codec {
	def := DefaultOptions()
	if opts.Name == "" {
		opts.Name = def.Name
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = def.MaxAge
	}
	if opts.Path == "" {
		opts.Path = def.Path
	}
	if opts.SameSite == 0 {
		opts.SameSite = def.SameSite
	}
	return &Codec{opts: opts}
}

// Options returns the codec's cookie attributes.
func (c *Codec) Options() Options {
	return c.opts
}

// Read returns the token pair from the request cookie. ok is false when the
// cookie is absent, not JSON, or lacks either token as a non-empty string.
func (c *Codec) Read(r *http.Request) (Tokens, bool) {
	if r == nil {
		return Tokens{}, false
	}
	cookie, err := r.Cookie(c.opts.Name)
	if err != nil || cookie == nil {
		return Tokens{}, false
	}
	return Decode(cookie.Value)
}

// Write sets the cookie to the given tokens.
func (c *Codec) Write(w http.ResponseWriter, t Tokens) {
	if w == nil {
		return
	}
	http.SetCookie(w, c.cookie(Encode(t), c.opts.MaxAge))
}

// Clear deletes the cookie using the same attributes it was written with.
func (c *Codec) Clear(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.opts.Name,
		Value:    value,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	}
}

// Encode renders the cookie value.
func Encode(t Tokens) string {
	raw, _ := json.Marshal(t)
	return url.QueryEscape(string(raw))
}

// Decode parses a cookie value. Non-string token fields are rejected rather
// than coerced.
func Decode(value string) (Tokens, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Tokens{}, false
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return Tokens{}, false
	}
	var t Tokens
	if !decodeString(fields["access_token"], &t.AccessToken) || !decodeString(fields["refresh_token"], &t.RefreshToken) {
		return Tokens{}, false
	}
	if raw, ok := fields["expires_in"]; ok {
		var n float64
		if json.Unmarshal(raw, &n) == nil {
			t.ExpiresIn = int(n)
		}
	}
	return t, true
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return false
	}
	*dst = s
	return true
}
