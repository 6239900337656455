package supabase

import "time"

// FlowType selects how OAuth-style sign-ins hand back their credentials.
type FlowType string

const (
	FlowPKCE     FlowType = "pkce"
	FlowImplicit FlowType = "implicit"
)

// Provider is an OAuth provider name as understood by the auth service ("google", "github", ...).
type Provider string

// Session is the token set issued by the auth service.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// User is the auth service's user record.
type User struct {
	ID           string         `json:"id"`
	Aud          string         `json:"aud,omitempty"`
	Role         string         `json:"role,omitempty"`
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at,omitzero"`
}

// OAuthRequest starts a provider redirect sign-in.
type OAuthRequest struct {
	Provider    Provider
	RedirectTo  string
	Scopes      string
	QueryParams map[string]string
}

// OAuthResult carries the provider URL and, for PKCE, the verifier the
// caller must keep until the callback.
type OAuthResult struct {
	Provider     Provider
	URL          string
	CodeVerifier string
}

// OtpRequest asks the auth service to send a one-time login link or code.
type OtpRequest struct {
	Email           string
	EmailRedirectTo string
	// CreateUser defaults to true when nil.
	CreateUser *bool
	Data       map[string]any
}

// OtpResult is normally empty: the session arrives later via the emailed link.
type OtpResult struct {
	Session      *Session
	CodeVerifier string
}

// SignUpRequest registers a user with email and password.
type SignUpRequest struct {
	Email           string
	Password        string
	EmailRedirectTo string
	Data            map[string]any
}

// SignUpResult holds the new user and a session when email confirmation is disabled.
type SignUpResult struct {
	User         *User
	Session      *Session
	CodeVerifier string
}

// SSORequest starts enterprise SSO by email domain or provider id.
type SSORequest struct {
	Domain     string
	ProviderID string
	RedirectTo string
}

// SSOResult is the identity provider URL to redirect to.
type SSOResult struct {
	URL          string
	CodeVerifier string
}

// IDTokenRequest signs in with an ID token minted by a third-party provider.
type IDTokenRequest struct {
	Provider    Provider
	Token       string
	Nonce       string
	AccessToken string
}

// VerifyRequest confirms an emailed token hash.
type VerifyRequest struct {
	TokenHash string
	Type      string
}

// Email link verification types accepted by /verify.
var VerifyTypes = []string{"signup", "invite", "magiclink", "recovery", "email_change", "email"}
