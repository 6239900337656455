package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"supaboard/internal/auth/models"
	"supaboard/internal/platform/metrics"
	"supaboard/internal/supabase"
	dErrors "supaboard/pkg/domain-errors"
	audit "supaboard/pkg/platform/audit"
)

// Backend is the slice of the hosted auth API the service drives.
type Backend interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignInWithOAuth(ctx context.Context, req supabase.OAuthRequest) (*supabase.OAuthResult, error)
	SignInWithOtp(ctx context.Context, req supabase.OtpRequest) (*supabase.OtpResult, error)
	SignUp(ctx context.Context, req supabase.SignUpRequest) (*supabase.SignUpResult, error)
	SignInWithSSO(ctx context.Context, req supabase.SSORequest) (*supabase.SSOResult, error)
	SignInWithIDToken(ctx context.Context, req supabase.IDTokenRequest) (*supabase.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*supabase.Session, error)
	ExchangeCodeForSession(ctx context.Context, code, verifier string) (*supabase.Session, error)
	VerifyOtp(ctx context.Context, req supabase.VerifyRequest) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// VerifierStore keeps PKCE verifiers until the callback consumes them.
type VerifierStore interface {
	Save(ctx context.Context, flowID, verifier string, ttl time.Duration) error
	Consume(ctx context.Context, flowID string) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// BackendSource returns the backend client bound to the current request.
type BackendSource func(ctx context.Context) Backend

// Static serves the same backend to every request.
func Static(b Backend) BackendSource {
	return func(context.Context) Backend { return b }
}

// Config holds the redirect targets of the action set.
type Config struct {
	// EmailRedirectTo is passed to the auth service as the link target for
	// emails and provider redirects. Empty uses the project's site URL.
	EmailRedirectTo string
	// SignInRedirectTo is where a signed-in browser lands.
	SignInRedirectTo string
	// SignInPath is the sign-in page; sign-up and sign-out land there.
	SignInPath string
	// FlowTTL bounds how long a provider redirect (OAuth, SSO) may wait
	// for its callback.
	FlowTTL time.Duration
	// EmailFlowTTL bounds the emailed flows (sign-up confirmation, magic
	// link). Users open those links long after the form was posted.
	EmailFlowTTL time.Duration
}

// Service orchestrates session bootstrap and the auth action set around the
// hosted backend.
type Service struct {
	backend   BackendSource
	verifiers VerifierStore
	cfg       Config

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	restores       singleflight.Group
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(backend BackendSource, verifiers VerifierStore, cfg Config, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, errors.New("backend source is required")
	}
	if verifiers == nil {
		return nil, errors.New("verifier store is required")
	}
	if cfg.SignInRedirectTo == "" {
		cfg.SignInRedirectTo = "/"
	}
	if cfg.SignInPath == "" {
		cfg.SignInPath = "/auth/sign-in"
	}
	if cfg.FlowTTL <= 0 {
		cfg.FlowTTL = 10 * time.Minute
	}
	if cfg.EmailFlowTTL <= 0 {
		cfg.EmailFlowTTL = 24 * time.Hour
	}
	s := &Service{
		backend:   backend,
		verifiers: verifiers,
		cfg:       cfg,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Config() Config {
	return s.cfg
}

// FailureStatus is the HTTP status an action failure is reported with: the
// status the auth service returned, 400 otherwise.
func FailureStatus(err error) int {
	if ae, ok := supabase.AsAuthError(err); ok {
		return ae.StatusOr(http.StatusBadRequest)
	}
	return http.StatusBadRequest
}

// FailureMessage is the form-level message for an action failure.
func FailureMessage(err error) string {
	if ae, ok := supabase.AsAuthError(err); ok {
		return ae.Error()
	}
	return dErrors.MessageOf(err)
}

// ErrorRedirect sends a failed callback back to the sign-in page with the
// reason in the query string.
func (s *Service) ErrorRedirect(err error) string {
	reason := FailureMessage(err)
	if ae, ok := supabase.AsAuthError(err); ok && ae.Code != "" {
		reason = ae.Code
	}
	return s.cfg.SignInPath + "?" + url.Values{"error": {reason}}.Encode()
}

// storeVerifier persists a PKCE verifier under a fresh flow id. Implicit
// flows have no verifier and yield an empty id.
func (s *Service) storeVerifier(ctx context.Context, verifier string, ttl time.Duration) (string, error) {
	if verifier == "" {
		return "", nil
	}
	flowID := uuid.NewString()
	if err := s.verifiers.Save(ctx, flowID, verifier, ttl); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store sign-in flow")
	}
	return flowID, nil
}

func (s *Service) succeed(ctx context.Context, action string, event audit.AuditEvent, sess *supabase.Session, attrs ...any) {
	s.metrics.IncAuthAction(action, nil)
	e := audit.Event{Action: string(event)}
	if sess != nil {
		e.UserID = sess.User.ID
		e.Email = sess.User.Email
	}
	s.emit(ctx, e)
	s.logger.InfoContext(ctx, "auth action succeeded", append([]any{"action", action}, attrs...)...)
}

// failureEvents names the audit event for each failing action. Actions not
// listed are sign-ins.
var failureEvents = map[string]audit.AuditEvent{
	models.ActionSignUp:       audit.EventSignUpFailed,
	models.ActionSignInOtp:    audit.EventOtpFailed,
	models.ActionSignInOAuth:  audit.EventRedirectFailed,
	models.ActionSignInSSO:    audit.EventRedirectFailed,
	models.ActionExchangeCode: audit.EventCodeExchangeFailed,
	models.ActionVerifyEmail:  audit.EventEmailVerifyFailed,
	models.ActionSetSession:   audit.EventSessionSetFailed,
}

func failureEvent(action string) audit.AuditEvent {
	if e, ok := failureEvents[action]; ok {
		return e
	}
	return audit.EventSignInFailed
}

// fail records a failed action and returns err unchanged. Subject is always
// the action name.
func (s *Service) fail(ctx context.Context, action string, err error) error {
	s.metrics.IncAuthAction(action, err)
	s.emit(ctx, audit.Event{
		Action:  string(failureEvent(action)),
		Subject: action,
		Reason:  FailureMessage(err),
	})
	s.logger.WarnContext(ctx, "auth action failed",
		"action", action,
		"status", FailureStatus(err),
		"error", err,
	)
	return err
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

// sessionOutcome is the common success shape: store the session, then redirect.
func sessionOutcome(sess *supabase.Session, redirect string) *models.Outcome {
	return &models.Outcome{Session: sess, SetCookie: true, Redirect: redirect}
}
