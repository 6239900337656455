package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// AuthError is a failure reported by the auth service.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// StatusOr returns the HTTP status carried by the error, or def when none was reported.
func (e *AuthError) StatusOr(def int) int {
	if e == nil || e.Status == 0 {
		return def
	}
	return e.Status
}

// AsAuthError extracts an *AuthError from err's chain.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// errorBody covers both the current and the legacy error envelopes.
type errorBody struct {
	ErrorCode        string `json:"error_code"`
	Error            string `json:"error"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func decodeAuthError(status int, body []byte) *AuthError {
	ae := &AuthError{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		ae.Message = strings.TrimSpace(string(body))
		return ae
	}
	ae.Code = firstNonEmpty(eb.ErrorCode, eb.Error)
	ae.Message = firstNonEmpty(eb.Msg, eb.Message, eb.ErrorDescription, eb.Error)
	return ae
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
