package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// SignInWithPassword exchanges email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.token(ctx, "password", types.TokenRequest{GrantType: "password", Email: email, Password: password}, extras{})
}

// SignInWithOAuth asks the auth service for the provider redirect. The browser
// follows the returned URL; in the PKCE flow the returned verifier must be
// kept for ExchangeCodeForSession.
func (c *Client) SignInWithOAuth(ctx context.Context, req OAuthRequest) (*OAuthResult, error) {
	if req.Provider == "" {
		return nil, &AuthError{Status: http.StatusBadRequest, Code: "validation_failed", Message: "provider is required"}
	}
	q := url.Values{}
	if req.RedirectTo != "" {
		q.Set("redirect_to", req.RedirectTo)
	}
	for k, v := range req.QueryParams {
		q.Set(k, v)
	}
	areq := types.AuthorizeRequest{Provider: types.Provider(req.Provider), Scopes: req.Scopes}
	if c.cfg.FlowType == FlowPKCE {
		areq.FlowType = types.FlowPKCE
	}

	var res *types.AuthorizeResponse
	err := c.authCall(ctx, "authorize", http.MethodGet, "/authorize", "", extras{query: q}, func(api gotrue.Client) error {
		var err error
		res, err = api.Authorize(areq)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &OAuthResult{Provider: req.Provider, URL: res.AuthorizationURL, CodeVerifier: res.Verifier}, nil
}

// SignInWithOtp sends a magic link or one-time code. The session arrives
// later via the emailed link.
func (c *Client) SignInWithOtp(ctx context.Context, req OtpRequest) (*OtpResult, error) {
	createUser := true
	if req.CreateUser != nil {
		createUser = *req.CreateUser
	}
	verifier, ext := c.emailExtras(req.EmailRedirectTo)
	err := c.authCall(ctx, "otp", http.MethodPost, "/otp", "", ext, func(api gotrue.Client) error {
		return api.OTP(types.OTPRequest{Email: req.Email, CreateUser: createUser, Data: req.Data})
	})
	if err != nil {
		return nil, err
	}
	return &OtpResult{CodeVerifier: verifier}, nil
}

// SignUp registers a user. Session is nil when email confirmation is required.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	verifier, ext := c.emailExtras(req.EmailRedirectTo)
	var res *types.SignupResponse
	err := c.authCall(ctx, "signup", http.MethodPost, "/signup", "", ext, func(api gotrue.Client) error {
		var err error
		res, err = api.Signup(types.SignupRequest{Email: req.Email, Password: req.Password, Data: req.Data})
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &SignUpResult{CodeVerifier: verifier}
	if res.Session.AccessToken != "" {
		sess := fromGoTrueSession(res.Session)
		s, err := c.normalize(&sess)
		if err != nil {
			return nil, err
		}
		out.Session, out.User = s, &s.User
		return out, nil
	}
	if res.User.ID != uuid.Nil {
		u := fromGoTrueUser(res.User)
		out.User = &u
	}
	return out, nil
}

// emailExtras adds the redirect target and, in the PKCE flow, a fresh
// challenge to requests that send an email link.
func (c *Client) emailExtras(redirectTo string) (string, extras) {
	ext := extras{query: redirectQuery(redirectTo)}
	verifier, challenge := c.newChallenge()
	if challenge != "" {
		ext.body = map[string]any{"code_challenge": challenge, "code_challenge_method": codeChallengeMethod}
	}
	return verifier, ext
}

// SignInWithSSO resolves the identity provider URL for a domain or provider id.
// gotrue-go v1.2.0 builds its SSO request with method and path swapped, so
// this call goes through do.
func (c *Client) SignInWithSSO(ctx context.Context, req SSORequest) (*SSOResult, error) {
	body := map[string]any{"skip_http_redirect": true}
	switch {
	case req.ProviderID != "":
		body["provider_id"] = req.ProviderID
	case req.Domain != "":
		body["domain"] = req.Domain
	default:
		return nil, &AuthError{Status: http.StatusBadRequest, Code: "validation_failed", Message: "domain or provider_id is required"}
	}
	if req.RedirectTo != "" {
		body["redirect_to"] = req.RedirectTo
	}
	verifier, challenge := c.newChallenge()
	if challenge != "" {
		body["code_challenge"] = challenge
		body["code_challenge_method"] = codeChallengeMethod
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, request{op: "sso", method: http.MethodPost, path: "/sso", body: body}, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, &AuthError{Status: http.StatusBadGateway, Message: "sso response carried no url"}
	}
	return &SSOResult{URL: out.URL, CodeVerifier: verifier}, nil
}

// SignInWithIDToken exchanges a third-party ID token for a session. gotrue-go
// only accepts the password, refresh_token and pkce grants.
func (c *Client) SignInWithIDToken(ctx context.Context, req IDTokenRequest) (*Session, error) {
	body := map[string]string{
		"provider": string(req.Provider),
		"id_token": req.Token,
	}
	if req.Nonce != "" {
		body["nonce"] = req.Nonce
	}
	if req.AccessToken != "" {
		body["access_token"] = req.AccessToken
	}
	var sess Session
	if err := c.do(ctx, request{
		op:     "id_token",
		method: http.MethodPost,
		path:   "/token",
		query:  url.Values{"grant_type": {"id_token"}},
		body:   body,
	}, &sess); err != nil {
		return nil, err
	}
	return c.normalize(&sess)
}

// RefreshSession spends refreshToken for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, &AuthError{Status: http.StatusBadRequest, Code: "refresh_token_not_found", Message: "refresh token is required"}
	}
	return c.token(ctx, "refresh", types.TokenRequest{GrantType: "refresh_token", RefreshToken: refreshToken}, extras{})
}

// GetUser validates accessToken and returns its user.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var res *types.UserResponse
	err := c.authCall(ctx, "user", http.MethodGet, "/user", accessToken, extras{}, func(api gotrue.Client) error {
		var err error
		res, err = api.GetUser()
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.ID == uuid.Nil {
		return nil, &AuthError{Status: http.StatusUnauthorized, Code: "user_not_found", Message: "user not found"}
	}
	user := fromGoTrueUser(res.User)
	return &user, nil
}

// SetSession restores a session from a stored token pair. An expired (or
// expiry-less) access token is refreshed; a live one is validated against the
// auth service.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, &AuthError{Status: http.StatusBadRequest, Code: "session_missing", Message: "auth session missing"}
	}
	claims, err := ParseClaims(accessToken)
	if err != nil {
		return nil, &AuthError{Status: http.StatusBadRequest, Code: "bad_jwt", Message: err.Error()}
	}
	if c.cfg.JWTSecret != "" {
		if _, err := VerifyClaims(accessToken, c.cfg.JWTSecret); err != nil {
			return nil, &AuthError{Status: http.StatusUnauthorized, Code: "bad_jwt", Message: err.Error()}
		}
	}

	now := c.now()
	if claims.Expired(now) {
		return c.RefreshSession(ctx, refreshToken)
	}

	user, err := c.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	exp := claims.ExpiresAt.Time
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(exp.Sub(now) / time.Second),
		ExpiresAt:    exp.Unix(),
		User:         *user,
	}, nil
}

// ExchangeCodeForSession completes a PKCE flow. The service reads the code
// from auth_code, which gotrue-go's token request does not send.
func (c *Client) ExchangeCodeForSession(ctx context.Context, code, verifier string) (*Session, error) {
	return c.token(ctx, "pkce", types.TokenRequest{GrantType: "pkce", Code: code, CodeVerifier: verifier},
		extras{body: map[string]any{"auth_code": code}})
}

func (c *Client) token(ctx context.Context, op string, req types.TokenRequest, ext extras) (*Session, error) {
	var res *types.TokenResponse
	err := c.authCall(ctx, op, http.MethodPost, "/token", "", ext, func(api gotrue.Client) error {
		var err error
		res, err = api.Token(req)
		return err
	})
	if err != nil {
		return nil, err
	}
	sess := fromGoTrueSession(res.Session)
	return c.normalize(&sess)
}

// VerifyOtp confirms an emailed token hash and returns the session it unlocks.
// gotrue-go's Verify only follows the redirecting token form.
func (c *Client) VerifyOtp(ctx context.Context, req VerifyRequest) (*Session, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{
		op:     "verify",
		method: http.MethodPost,
		path:   "/verify",
		body:   map[string]string{"token_hash": req.TokenHash, "type": req.Type},
	}, &raw); err != nil {
		return nil, err
	}
	sess, _, err := c.decodeSessionOrUser(raw)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &AuthError{Status: http.StatusBadRequest, Code: "session_missing", Message: "verification returned no session"}
	}
	return sess, nil
}

// SignOut revokes every refresh token of the session's user. Tokens the
// service no longer recognizes count as signed out.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	ext := extras{query: url.Values{"scope": {"global"}}}
	err := c.authCall(ctx, "logout", http.MethodPost, "/logout", accessToken, ext, func(api gotrue.Client) error {
		return api.Logout()
	})
	if ae, ok := AsAuthError(err); ok {
		switch ae.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil
		}
	}
	return err
}

func redirectQuery(redirectTo string) url.Values {
	if redirectTo == "" {
		return nil
	}
	return url.Values{"redirect_to": {redirectTo}}
}

// normalize fills ExpiresAt from ExpiresIn and rejects token responses without tokens.
func (c *Client) normalize(sess *Session) (*Session, error) {
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return nil, &AuthError{Status: http.StatusBadGateway, Code: "session_missing", Message: "auth response carried no session"}
	}
	if sess.ExpiresAt == 0 && sess.ExpiresIn > 0 {
		sess.ExpiresAt = c.now().Add(time.Duration(sess.ExpiresIn) * time.Second).Unix()
	}
	if sess.TokenType == "" {
		sess.TokenType = "bearer"
	}
	return sess, nil
}

// decodeSessionOrUser handles endpoints that answer with either a session
// (auto-confirmed) or a bare user (confirmation pending).
func (c *Client) decodeSessionOrUser(raw json.RawMessage) (*Session, *User, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, nil, &AuthError{Status: http.StatusBadGateway, Message: "malformed auth response"}
	}
	if sess.AccessToken != "" {
		s, err := c.normalize(&sess)
		if err != nil {
			return nil, nil, err
		}
		return s, &s.User, nil
	}
	if sess.User.ID != "" {
		u := sess.User
		return nil, &u, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err == nil && user.ID != "" {
		return nil, &user, nil
	}
	return nil, nil, nil
}
