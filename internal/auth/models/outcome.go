package models

import (
	"time"

	"supaboard/internal/supabase"
)

// Action names used for metrics, logs and audit events.
const (
	ActionSignInPassword = "sign_in_password"
	ActionSignInOAuth    = "sign_in_oauth"
	ActionSignInOtp      = "sign_in_otp"
	ActionSignUp         = "sign_up"
	ActionSignOut        = "sign_out"
	ActionSignInSSO      = "sign_in_sso"
	ActionSignInIDToken  = "sign_in_id_token"
	ActionExchangeCode   = "exchange_code"
	ActionVerifyEmail    = "verify_email"
	ActionSetSession     = "set_session"
)

// Outcome tells the transport what to do with cookies and where to send the
// browser after an action succeeded.
type Outcome struct {
	Session *supabase.Session
	// Redirect is empty when the action answers in place.
	Redirect    string
	SetCookie   bool
	ClearCookie bool
	// FlowID is set when a PKCE verifier was stored and the flow cookie must be written.
	FlowID string
	// FlowTTL is how long the flow stays redeemable; the flow cookie lives as long.
	FlowTTL time.Duration
}

// RestoreResult is the session bootstrap decision for one request.
type RestoreResult struct {
	Session   *supabase.Session
	Refreshed bool
	Clear     bool
}
