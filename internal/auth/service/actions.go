package service

import (
	"context"
	"net/http"

	"supaboard/internal/auth/models"
	"supaboard/internal/supabase"
	audit "supaboard/pkg/platform/audit"
)

var errNoSession = &supabase.AuthError{
	Status:  http.StatusBadRequest,
	Code:    "session_missing",
	Message: "sign in did not return a session",
}

func (s *Service) SignInWithPassword(ctx context.Context, req models.PasswordSignInRequest) (*models.Outcome, error) {
	sess, err := s.backend(ctx).SignInWithPassword(ctx, req.Email, req.Password)
	if err == nil && sess == nil {
		err = errNoSession
	}
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInPassword, err)
	}
	s.succeed(ctx, models.ActionSignInPassword, audit.EventSignInSucceeded, sess)
	return sessionOutcome(sess, s.cfg.SignInRedirectTo), nil
}

// SignInWithOAuth sends the browser to the provider. Under PKCE the verifier
// is kept until the callback presents the code.
func (s *Service) SignInWithOAuth(ctx context.Context, req models.OAuthSignInRequest) (*models.Outcome, error) {
	res, err := s.backend(ctx).SignInWithOAuth(ctx, supabase.OAuthRequest{
		Provider:   supabase.Provider(req.Provider),
		RedirectTo: s.cfg.EmailRedirectTo,
	})
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInOAuth, err)
	}
	flowID, err := s.storeVerifier(ctx, res.CodeVerifier, s.cfg.FlowTTL)
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInOAuth, err)
	}
	s.metrics.IncAuthAction(models.ActionSignInOAuth, nil)
	s.emit(ctx, audit.Event{Action: string(audit.EventRedirectStarted), Provider: req.Provider})
	return &models.Outcome{Redirect: res.URL, FlowID: flowID, FlowTTL: s.cfg.FlowTTL}, nil
}

// SignInWithOtp asks for a magic link. The usual outcome has neither a
// session nor a redirect: the caller reports that the email was sent.
func (s *Service) SignInWithOtp(ctx context.Context, req models.OtpSignInRequest) (*models.Outcome, error) {
	res, err := s.backend(ctx).SignInWithOtp(ctx, supabase.OtpRequest{
		Email:           req.Email,
		EmailRedirectTo: s.cfg.EmailRedirectTo,
	})
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInOtp, err)
	}
	if res.Session != nil {
		s.succeed(ctx, models.ActionSignInOtp, audit.EventSignInSucceeded, res.Session)
		return sessionOutcome(res.Session, s.cfg.SignInRedirectTo), nil
	}
	flowID, err := s.storeVerifier(ctx, res.CodeVerifier, s.cfg.EmailFlowTTL)
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInOtp, err)
	}
	s.metrics.IncAuthAction(models.ActionSignInOtp, nil)
	s.emit(ctx, audit.Event{Action: string(audit.EventOtpSent), Email: req.Email})
	return &models.Outcome{FlowID: flowID, FlowTTL: s.cfg.EmailFlowTTL}, nil
}

// SignUp always lands on the sign-in page. The session cookie is only set
// when the project does not require email confirmation.
func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest) (*models.Outcome, error) {
	res, err := s.backend(ctx).SignUp(ctx, supabase.SignUpRequest{
		Email:           req.Email,
		Password:        req.Password,
		EmailRedirectTo: s.cfg.EmailRedirectTo,
	})
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignUp, err)
	}

	out := &models.Outcome{Redirect: s.cfg.SignInPath}
	if res.Session != nil {
		out.Session = res.Session
		out.SetCookie = true
	} else if out.FlowID, err = s.storeVerifier(ctx, res.CodeVerifier, s.cfg.EmailFlowTTL); err != nil {
		return nil, s.fail(ctx, models.ActionSignUp, err)
	} else {
		out.FlowTTL = s.cfg.EmailFlowTTL
	}

	e := audit.Event{Action: string(audit.EventSignUp), Email: req.Email}
	if res.User != nil {
		e.UserID = res.User.ID
	}
	s.metrics.IncAuthAction(models.ActionSignUp, nil)
	s.emit(ctx, e)
	return out, nil
}

// SignOut clears the cookie unconditionally. Revoking the refresh tokens at
// the auth service is best effort.
func (s *Service) SignOut(ctx context.Context, sess *supabase.Session) *models.Outcome {
	e := audit.Event{Action: string(audit.EventSignOut)}
	if sess != nil {
		e.UserID = sess.User.ID
		if err := s.backend(ctx).SignOut(ctx, sess.AccessToken); err != nil {
			s.logger.WarnContext(ctx, "remote sign out failed", "user_id", sess.User.ID, "error", err)
		}
	}
	s.metrics.IncAuthAction(models.ActionSignOut, nil)
	s.emit(ctx, e)
	return &models.Outcome{ClearCookie: true, Redirect: s.cfg.SignInPath}
}

func (s *Service) SignInWithSSO(ctx context.Context, req models.SSOSignInRequest) (*models.Outcome, error) {
	res, err := s.backend(ctx).SignInWithSSO(ctx, supabase.SSORequest{
		Domain:     req.Domain,
		ProviderID: req.ProviderID,
		RedirectTo: s.cfg.EmailRedirectTo,
	})
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInSSO, err)
	}
	flowID, err := s.storeVerifier(ctx, res.CodeVerifier, s.cfg.FlowTTL)
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInSSO, err)
	}
	s.metrics.IncAuthAction(models.ActionSignInSSO, nil)
	s.emit(ctx, audit.Event{Action: string(audit.EventRedirectStarted), Provider: "sso", Subject: req.Domain + req.ProviderID})
	return &models.Outcome{Redirect: res.URL, FlowID: flowID, FlowTTL: s.cfg.FlowTTL}, nil
}

func (s *Service) SignInWithIDToken(ctx context.Context, req models.IDTokenSignInRequest) (*models.Outcome, error) {
	sess, err := s.backend(ctx).SignInWithIDToken(ctx, supabase.IDTokenRequest{
		Provider:    supabase.Provider(req.Provider),
		Token:       req.Token,
		Nonce:       req.Nonce,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		return nil, s.fail(ctx, models.ActionSignInIDToken, err)
	}
	s.succeed(ctx, models.ActionSignInIDToken, audit.EventSignInSucceeded, sess, "provider", req.Provider)
	return sessionOutcome(sess, s.cfg.SignInRedirectTo), nil
}

// SetSession installs a token pair obtained elsewhere, e.g. by a browser
// client that completed an implicit flow.
func (s *Service) SetSession(ctx context.Context, req models.SetSessionRequest) (*models.Outcome, error) {
	sess, err := s.backend(ctx).SetSession(ctx, req.AccessToken, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, models.ActionSetSession, err)
	}
	s.succeed(ctx, models.ActionSetSession, audit.EventSessionSet, sess)
	return &models.Outcome{Session: sess, SetCookie: true}, nil
}
