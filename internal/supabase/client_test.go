package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/supabase-community/postgrest-go"
	"golang.org/x/oauth2"

	dErrors "supaboard/pkg/domain-errors"
	"supaboard/pkg/requestcontext"
)

const (
	testAnonKey = "anon-key"
	testSecret  = "super-secret-jwt-key"
	testUserID  = "3f6c1c4e-8a52-4a53-9d5e-0c7b2f1e9a10"
	newUserID   = "b1d2e3f4-5a6b-4c7d-8e9f-a0b1c2d3e4f5"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// fakeBackend emulates the auth and rest endpoints the client calls.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone()}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeBackend) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func signToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(exp)},
		Email:            "user@example.com",
		Role:             "authenticated",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func sessionBody(access, refresh string) map[string]any {
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    3600,
		"user":          map[string]any{"id": testUserID, "email": "user@example.com"},
	}
}

type observed struct {
	mu  sync.Mutex
	ops []string
}

func (o *observed) ObserveBackendCall(op string, _ error, _ time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
}

type ClientSuite struct {
	suite.Suite
	backend  *fakeBackend
	server   *httptest.Server
	client   *Client
	observer *observed
	now      time.Time
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.backend = &fakeBackend{routes: map[string]http.HandlerFunc{}}
	s.server = httptest.NewServer(s.backend)
	s.observer = &observed{}
	s.now = time.Now()
	s.client = s.newClient(Config{URL: s.server.URL, AnonKey: testAnonKey, FlowType: FlowPKCE})
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) newClient(cfg Config) *Client {
	c, err := New(cfg, WithObserver(s.observer), WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	return c
}

func (s *ClientSuite) TestSignInWithPassword() {
	s.T().Run("success returns session with computed expiry", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/token", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, sessionBody("access", "refresh"))
		})

		sess, err := s.client.SignInWithPassword(context.Background(), "user@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "access", sess.AccessToken)
		assert.Equal(t, "refresh", sess.RefreshToken)
		assert.Equal(t, testUserID, sess.User.ID)
		assert.Equal(t, s.now.Add(time.Hour).Unix(), sess.ExpiresAt)

		req := s.backend.last()
		assert.Equal(t, "password", req.Query.Get("grant_type"))
		assert.Equal(t, testAnonKey, req.Header.Get("apikey"))
		assert.Equal(t, "Bearer "+testAnonKey, req.Header.Get("Authorization"))
		assert.Equal(t, clientInfo, req.Header.Get("X-Client-Info"))
		assert.Equal(t, "user@example.com", req.Body["email"])
		assert.Equal(t, "pw", req.Body["password"])
	})

	s.T().Run("legacy error envelope", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/token", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Invalid login credentials"})
		})

		_, err := s.client.SignInWithPassword(context.Background(), "user@example.com", "bad")
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
		assert.Equal(t, "invalid_grant", ae.Code)
		assert.Equal(t, "Invalid login credentials", ae.Message)
	})

	s.T().Run("current error envelope", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/token", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"code": 429, "error_code": "over_request_rate_limit", "msg": "Request rate limit reached"})
		})

		_, err := s.client.SignInWithPassword(context.Background(), "user@example.com", "pw")
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusTooManyRequests, ae.StatusOr(400))
		assert.Equal(t, "over_request_rate_limit", ae.Code)
		assert.Equal(t, "Request rate limit reached", ae.Error())
	})

	s.T().Run("missing password is rejected before any call", func(t *testing.T) {
		before := s.backend.count("/auth/v1/token")
		_, err := s.client.SignInWithPassword(context.Background(), "user@example.com", "")
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
		assert.Equal(t, before, s.backend.count("/auth/v1/token"))
	})

	s.T().Run("cancelled context aborts the call", func(t *testing.T) {
		before := s.backend.count("/auth/v1/token")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.client.SignInWithPassword(ctx, "user@example.com", "pw")
		require.Error(t, err)
		_, isAuth := AsAuthError(err)
		assert.False(t, isAuth)
		assert.Equal(t, before, s.backend.count("/auth/v1/token"))
	})

	s.Contains(s.observer.ops, "auth.password")
}

func (s *ClientSuite) TestSignInWithOAuth() {
	const providerURL = "https://github.com/login/oauth/authorize?state=abc"
	s.backend.handle(http.MethodGet, "/auth/v1/authorize", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, providerURL, http.StatusFound)
	})

	s.T().Run("pkce sends an s256 challenge for the returned verifier", func(t *testing.T) {
		res, err := s.client.SignInWithOAuth(context.Background(), OAuthRequest{Provider: "github", RedirectTo: "https://app.test/auth/callback"})
		require.NoError(t, err)
		require.NotEmpty(t, res.CodeVerifier)
		assert.Equal(t, providerURL, res.URL)

		q := s.backend.last().Query
		assert.Equal(t, "github", q.Get("provider"))
		assert.Equal(t, "https://app.test/auth/callback", q.Get("redirect_to"))
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		assert.Equal(t, oauth2.S256ChallengeFromVerifier(res.CodeVerifier), q.Get("code_challenge"))
	})

	s.T().Run("implicit flow has no challenge", func(t *testing.T) {
		c := s.newClient(Config{URL: s.server.URL, AnonKey: testAnonKey, FlowType: FlowImplicit})
		res, err := c.SignInWithOAuth(context.Background(), OAuthRequest{Provider: "google"})
		require.NoError(t, err)
		assert.Empty(t, res.CodeVerifier)
		assert.Empty(t, s.backend.last().Query.Get("code_challenge"))
	})

	s.T().Run("unknown provider surfaces the service error", func(t *testing.T) {
		s.backend.handle(http.MethodGet, "/auth/v1/authorize", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "validation_failed", "msg": "Unsupported provider: provider is not enabled"})
		})
		_, err := s.client.SignInWithOAuth(context.Background(), OAuthRequest{Provider: "myspace"})
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, "validation_failed", ae.Code)
	})

	s.T().Run("provider is required", func(t *testing.T) {
		_, err := s.client.SignInWithOAuth(context.Background(), OAuthRequest{})
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
	})
}

func (s *ClientSuite) TestSignInWithOtp() {
	s.backend.handle(http.MethodPost, "/auth/v1/otp", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	res, err := s.client.SignInWithOtp(context.Background(), OtpRequest{Email: "user@example.com", EmailRedirectTo: "https://app.test/auth/callback"})
	s.Require().NoError(err)
	s.Nil(res.Session)
	s.NotEmpty(res.CodeVerifier)

	req := s.backend.last()
	s.Equal("https://app.test/auth/callback", req.Query.Get("redirect_to"))
	s.Equal(true, req.Body["create_user"])
	s.Equal("s256", req.Body["code_challenge_method"])
}

func (s *ClientSuite) TestSignUp() {
	s.T().Run("confirmation pending returns user only", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/signup", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": newUserID, "email": "new@example.com"})
		})

		res, err := s.client.SignUp(context.Background(), SignUpRequest{Email: "new@example.com", Password: "pw"})
		require.NoError(t, err)
		assert.Nil(t, res.Session)
		require.NotNil(t, res.User)
		assert.Equal(t, newUserID, res.User.ID)
		assert.Equal(t, "s256", s.backend.last().Body["code_challenge_method"])
	})

	s.T().Run("auto confirmed returns session", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/signup", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, sessionBody("a2", "r2"))
		})

		res, err := s.client.SignUp(context.Background(), SignUpRequest{Email: "new@example.com", Password: "pw"})
		require.NoError(t, err)
		require.NotNil(t, res.Session)
		assert.Equal(t, "a2", res.Session.AccessToken)
		assert.Equal(t, testUserID, res.User.ID)
	})
}

func (s *ClientSuite) TestSignInWithSSO() {
	s.backend.handle(http.MethodPost, "/auth/v1/sso", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"url": "https://idp.example.com/saml"})
	})

	res, err := s.client.SignInWithSSO(context.Background(), SSORequest{Domain: "example.com"})
	s.Require().NoError(err)
	s.Equal("https://idp.example.com/saml", res.URL)
	s.NotEmpty(res.CodeVerifier)
	req := s.backend.last()
	s.Equal("example.com", req.Body["domain"])
	s.Equal(true, req.Body["skip_http_redirect"])

	_, err = s.client.SignInWithSSO(context.Background(), SSORequest{})
	s.Error(err)
}

func (s *ClientSuite) TestSetSession() {
	s.backend.handle(http.MethodGet, "/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": testUserID, "email": "user@example.com"})
	})
	s.backend.handle(http.MethodPost, "/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionBody("fresh-access", "fresh-refresh"))
	})

	s.T().Run("live token is validated, not refreshed", func(t *testing.T) {
		access := signToken(t, testSecret, s.now.Add(30*time.Minute))
		sess, err := s.client.SetSession(context.Background(), access, "refresh")
		require.NoError(t, err)
		assert.Equal(t, access, sess.AccessToken)
		assert.Equal(t, "refresh", sess.RefreshToken)
		assert.InDelta(t, 1800, sess.ExpiresIn, 1)
		assert.Equal(t, "Bearer "+access, s.backend.last().Header.Get("Authorization"))
	})

	s.T().Run("expired token is refreshed", func(t *testing.T) {
		before := s.backend.count("/auth/v1/user")
		access := signToken(t, testSecret, s.now.Add(-time.Minute))
		sess, err := s.client.SetSession(context.Background(), access, "refresh")
		require.NoError(t, err)
		assert.Equal(t, "fresh-access", sess.AccessToken)
		assert.Equal(t, before, s.backend.count("/auth/v1/user"))
		assert.Equal(t, "refresh", s.backend.last().Body["refresh_token"])
	})

	s.T().Run("garbage token", func(t *testing.T) {
		_, err := s.client.SetSession(context.Background(), "not-a-jwt", "refresh")
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, "bad_jwt", ae.Code)
	})

	s.T().Run("signature checked when secret configured", func(t *testing.T) {
		c := s.newClient(Config{URL: s.server.URL, AnonKey: testAnonKey, JWTSecret: testSecret})
		forged := signToken(t, "other-secret", s.now.Add(time.Hour))
		_, err := c.SetSession(context.Background(), forged, "refresh")
		ae, ok := AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, ae.Status)

		good := signToken(t, testSecret, s.now.Add(time.Hour))
		_, err = c.SetSession(context.Background(), good, "refresh")
		assert.NoError(t, err)
	})

	s.T().Run("missing tokens", func(t *testing.T) {
		_, err := s.client.SetSession(context.Background(), "", "refresh")
		assert.Error(t, err)
	})
}

func (s *ClientSuite) TestExchangeAndVerify() {
	s.backend.handle(http.MethodPost, "/auth/v1/token", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sessionBody("pkce-access", "pkce-refresh"))
	})
	s.backend.handle(http.MethodPost, "/auth/v1/verify", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sessionBody("verified-access", "verified-refresh"))
	})

	sess, err := s.client.ExchangeCodeForSession(context.Background(), "code-1", "verifier-1")
	s.Require().NoError(err)
	s.Equal("pkce-access", sess.AccessToken)
	req := s.backend.last()
	s.Equal("pkce", req.Query.Get("grant_type"))
	s.Equal("code-1", req.Body["auth_code"])
	s.Equal("verifier-1", req.Body["code_verifier"])

	sess, err = s.client.VerifyOtp(context.Background(), VerifyRequest{TokenHash: "hash", Type: "email"})
	s.Require().NoError(err)
	s.Equal("verified-access", sess.AccessToken)
	s.Equal("hash", s.backend.last().Body["token_hash"])
}

func (s *ClientSuite) TestSignOut() {
	s.T().Run("ignores tokens the service no longer knows", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/logout", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
		})
		assert.NoError(t, s.client.SignOut(context.Background(), "access"))
		assert.Equal(t, "global", s.backend.last().Query.Get("scope"))
	})

	s.T().Run("server errors surface", func(t *testing.T) {
		s.backend.handle(http.MethodPost, "/auth/v1/logout", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": "boom"})
		})
		assert.Error(t, s.client.SignOut(context.Background(), "access"))
	})

	s.T().Run("no token is a no-op", func(t *testing.T) {
		assert.NoError(t, s.client.SignOut(context.Background(), ""))
	})
}

func (s *ClientSuite) TestTableRequestsCarryUserToken() {
	var gotAuth, gotPath string
	s.backend.handle(http.MethodGet, "/rest/v1/Task", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1}})
	})

	c := s.client.Clone()
	c.SetAuth("user-token")

	var rows []map[string]any
	err := c.Table(context.Background(), "Task", "select", func(q *postgrest.QueryBuilder) error {
		_, err := q.Select("*", "", false).ExecuteTo(&rows)
		return err
	})
	s.Require().NoError(err)
	s.Len(rows, 1)
	s.Equal("Bearer user-token", gotAuth)
	s.Equal("/rest/v1/Task", gotPath)
	s.Contains(s.observer.ops, "rest.select")

	s.Equal("", s.client.AccessToken())
	s.Equal("t2", s.client.WithAccessToken("t2").AccessToken())
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(Config{URL: addr, AnonKey: testAnonKey})
	require.NoError(t, err)

	_, err = c.RefreshSession(context.Background(), "refresh")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	_, isAuth := AsAuthError(err)
	assert.False(t, isAuth)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{URL: "", AnonKey: "k"})
	assert.Error(t, err)
	_, err = New(Config{URL: "relative/path", AnonKey: "k"})
	assert.Error(t, err)

	c, err := New(Config{URL: "https://project.supabase.co/", AnonKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, FlowPKCE, c.Config().FlowType)
	assert.Equal(t, "public", c.Config().Schema)
}

func TestClientCache(t *testing.T) {
	base, err := New(Config{URL: "https://project.supabase.co", AnonKey: "k"})
	require.NoError(t, err)
	cache := NewClientCache(base)

	ctx := requestcontext.WithSharedMap(context.Background(), requestcontext.NewSharedMap())
	first := cache.Get(ctx)
	assert.Same(t, first, cache.Get(ctx))
	assert.NotSame(t, base, first)

	fromCtx, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, first, fromCtx)

	other := requestcontext.WithSharedMap(context.Background(), requestcontext.NewSharedMap())
	assert.NotSame(t, first, cache.Get(other))

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, (&Claims{}).Expired(now))
	assert.True(t, (&Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}}).Expired(now))
	assert.False(t, (&Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}).Expired(now))

	_, err := ParseClaims("a.b.c")
	assert.Error(t, err)
}
