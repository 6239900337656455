package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "supaboard/internal/auth/middleware"
	"supaboard/internal/auth/models"
	"supaboard/internal/auth/service"
	"supaboard/internal/auth/sessioncookie"
	"supaboard/internal/platform/middleware"
	"supaboard/internal/supabase"
	"supaboard/pkg/platform/httputil"
)

// Service is the action set behind the auth routes.
type Service interface {
	SignInWithPassword(ctx context.Context, req models.PasswordSignInRequest) (*models.Outcome, error)
	SignInWithOAuth(ctx context.Context, req models.OAuthSignInRequest) (*models.Outcome, error)
	SignInWithOtp(ctx context.Context, req models.OtpSignInRequest) (*models.Outcome, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.Outcome, error)
	SignOut(ctx context.Context, sess *supabase.Session) *models.Outcome
	SignInWithSSO(ctx context.Context, req models.SSOSignInRequest) (*models.Outcome, error)
	SignInWithIDToken(ctx context.Context, req models.IDTokenSignInRequest) (*models.Outcome, error)
	SetSession(ctx context.Context, req models.SetSessionRequest) (*models.Outcome, error)
	Callback(ctx context.Context, flowID string, req models.CallbackRequest) (*models.Outcome, error)
	ErrorRedirect(err error) string
}

// Handler serves the auth action set. Actions accept JSON or HTML form posts
// and answer with cookies plus a 302, or with the form failure shape.
type Handler struct {
	svc      Service
	cookies  *sessioncookie.Codec
	flows    *sessioncookie.FlowCookie
	logger   *slog.Logger
	throttle func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithThrottle wraps every POST action. The callback and session reads are
// left alone.
func WithThrottle(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.throttle = mw }
}

func New(svc Service, cookies *sessioncookie.Codec, flows *sessioncookie.FlowCookie, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		cookies: cookies,
		flows:   flows,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.throttle != nil {
				r.Use(h.throttle)
			}
			r.Use(middleware.ContentTypeJSON)
			r.Post("/sign-in/password", action[models.PasswordSignInRequest](h, h.svc.SignInWithPassword, nil))
			r.Post("/sign-in/oauth", action[models.OAuthSignInRequest](h, h.svc.SignInWithOAuth, nil))
			r.Post("/sign-in/otp", action[models.OtpSignInRequest](h, h.svc.SignInWithOtp, writeOtpSent))
			r.Post("/sign-in/sso", action[models.SSOSignInRequest](h, h.svc.SignInWithSSO, nil))
			r.Post("/sign-in/id-token", action[models.IDTokenSignInRequest](h, h.svc.SignInWithIDToken, nil))
			r.Post("/sign-up", action[models.SignUpRequest](h, h.svc.SignUp, nil))
			r.Post("/session", action[models.SetSessionRequest](h, h.svc.SetSession, writeSession))
			r.Post("/sign-out", h.handleSignOut)
		})
		r.Get("/callback", h.handleCallback)
		r.Get("/session", h.handleGetSession)
	})
}

// action adapts one service operation into a handler. respond answers
// outcomes that carry no redirect; nil answers 204.
func action[T any, PT httputil.Preparable[T]](
	h *Handler,
	run func(context.Context, T) (*models.Outcome, error),
	respond func(http.ResponseWriter, *models.Outcome),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		in, err := httputil.DecodeInput[T, PT](w, r)
		if err != nil {
			h.logger.WarnContext(ctx, "invalid action input",
				"request_id", middleware.GetRequestID(ctx),
				"path", r.URL.Path,
				"error", err,
			)
			httputil.WriteInputError(w, err)
			return
		}

		out, err := run(ctx, *in)
		if err != nil {
			httputil.WriteFormFailure(w, service.FailureStatus(err), service.FailureMessage(err))
			return
		}
		if h.apply(w, r, out) {
			return
		}
		if respond == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respond(w, out)
	}
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	out := h.svc.SignOut(r.Context(), authmw.SessionFromContext(r.Context()))
	h.apply(w, r, out)
}

// handleCallback completes PKCE and email-link sign-ins. The flow cookie is
// single use and cleared whatever the outcome.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, hasFlow := h.flows.Read(r)
	if hasFlow {
		h.flows.Clear(w)
	}

	q := r.URL.Query()
	out, err := h.svc.Callback(ctx, flowID, models.CallbackRequest{
		Code:             q.Get("code"),
		TokenHash:        q.Get("token_hash"),
		Type:             q.Get("type"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		http.Redirect(w, r, h.svc.ErrorRedirect(err), http.StatusFound)
		return
	}
	h.apply(w, r, out)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	// a nil session encodes as null
	httputil.WriteJSON(w, http.StatusOK, authmw.SessionFromContext(r.Context()))
}

// apply writes the cookie changes of an outcome and redirects when asked to.
// It reports whether the response has been written.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, out *models.Outcome) bool {
	if out.SetCookie && out.Session != nil {
		h.cookies.Write(w, authmw.CookieTokens(out.Session))
		authmw.SetSession(r.Context(), out.Session)
	}
	if out.ClearCookie {
		h.cookies.Clear(w)
		authmw.SetSession(r.Context(), nil)
	}
	if out.FlowID != "" {
		h.flows.Write(w, out.FlowID, out.FlowTTL)
	}
	if out.Redirect == "" {
		return false
	}
	http.Redirect(w, r, out.Redirect, http.StatusFound)
	return true
}

func writeOtpSent(w http.ResponseWriter, _ *models.Outcome) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "otp_sent"})
}

func writeSession(w http.ResponseWriter, out *models.Outcome) {
	httputil.WriteJSON(w, http.StatusOK, out.Session)
}
