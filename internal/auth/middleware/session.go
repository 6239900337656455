// Package middleware binds the auth session to the request: it creates the
// request's backend client, restores the session from the cookie and exposes
// both to handlers.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"supaboard/internal/auth/models"
	"supaboard/internal/auth/sessioncookie"
	"supaboard/internal/platform/metrics"
	"supaboard/internal/supabase"
	"supaboard/pkg/platform/httputil"
	"supaboard/pkg/requestcontext"
)

// Restorer resolves the session carried by a cookie.
type Restorer interface {
	Restore(ctx context.Context, tokens sessioncookie.Tokens) models.RestoreResult
}

type Session struct {
	clients  *supabase.ClientCache
	restorer Restorer
	cookies  *sessioncookie.Codec
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewSession(clients *supabase.ClientCache, restorer Restorer, cookies *sessioncookie.Codec, m *metrics.Metrics, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		clients:  clients,
		restorer: restorer,
		cookies:  cookies,
		metrics:  m,
		logger:   logger,
	}
}

// Handler runs the session bootstrap before next:
//  1. the request's backend client is created and cached
//  2. a missing or unreadable cookie leaves the request anonymous
//  3. a refreshed session rewrites the cookie, a dead one clears it
//  4. the session is stored in the shared map and its user id in the context
func (m *Session) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !requestcontext.HasShared(ctx) {
			ctx = requestcontext.WithSharedMap(ctx, requestcontext.NewSharedMap())
		}
		client := m.clients.Get(ctx)

		tokens, ok := m.cookies.Read(r)
		if !ok {
			m.metrics.IncSessionBootstrap(metrics.BootstrapAnonymous)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		res := m.restorer.Restore(ctx, tokens)
		if res.Clear || res.Session == nil {
			m.cookies.Clear(w)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		if res.Refreshed {
			m.cookies.Write(w, CookieTokens(res.Session))
			m.logger.DebugContext(ctx, "session cookie refreshed", "user_id", res.Session.User.ID)
		}

		client.SetAuth(res.Session.AccessToken)
		requestcontext.Shared(ctx).Set(requestcontext.KeySession, res.Session)
		ctx = requestcontext.WithUserID(ctx, res.Session.User.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects anonymous requests with 400 "Unauthorized".
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "Unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext returns the session resolved for this request, or nil.
func SessionFromContext(ctx context.Context) *supabase.Session {
	v, ok := requestcontext.Shared(ctx).Get(requestcontext.KeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*supabase.Session)
	return sess
}

// SetSession replaces the request's session after a sign-in action so later
// reads in the same request see it.
func SetSession(ctx context.Context, sess *supabase.Session) {
	shared := requestcontext.Shared(ctx)
	if sess == nil {
		shared.Delete(requestcontext.KeySession)
		return
	}
	shared.Set(requestcontext.KeySession, sess)
	if cl, ok := supabase.FromContext(ctx); ok {
		cl.SetAuth(sess.AccessToken)
	}
}

// ClientFromContext returns the request's backend client.
func ClientFromContext(ctx context.Context) (*supabase.Client, bool) {
	return supabase.FromContext(ctx)
}

// CookieTokens is the part of a session persisted in the cookie.
func CookieTokens(sess *supabase.Session) sessioncookie.Tokens {
	return sessioncookie.Tokens{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
	}
}
