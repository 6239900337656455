package service

import (
	"context"
	"errors"

	"supaboard/internal/auth/models"
	"supaboard/internal/supabase"
	dErrors "supaboard/pkg/domain-errors"
	audit "supaboard/pkg/platform/audit"
	"supaboard/pkg/platform/sentinel"
)

// Callback completes a redirect or email-link sign-in. A code is exchanged
// with the verifier stored under flowID; a token hash is verified directly.
func (s *Service) Callback(ctx context.Context, flowID string, req models.CallbackRequest) (*models.Outcome, error) {
	if err := req.Validate(); err != nil {
		action := models.ActionExchangeCode
		if req.TokenHash != "" {
			action = models.ActionVerifyEmail
		}
		return nil, s.fail(ctx, action, err)
	}
	if req.TokenHash != "" {
		return s.VerifyEmail(ctx, req.TokenHash, req.Type)
	}
	return s.ExchangeCode(ctx, flowID, req.Code)
}

// ExchangeCode finishes a PKCE flow. The verifier is consumed whatever the
// outcome so a code can only be tried once per flow.
func (s *Service) ExchangeCode(ctx context.Context, flowID, code string) (*models.Outcome, error) {
	if flowID == "" {
		return nil, s.fail(ctx, models.ActionExchangeCode,
			dErrors.New(dErrors.CodeBadRequest, "sign-in flow not found"))
	}
	verifier, err := s.verifiers.Consume(ctx, flowID)
	if err != nil {
		if sentinel.IsNotFound(err) || errors.Is(err, sentinel.ErrExpired) {
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "sign-in flow expired")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load sign-in flow")
		}
		return nil, s.fail(ctx, models.ActionExchangeCode, err)
	}

	sess, err := s.backend(ctx).ExchangeCodeForSession(ctx, code, verifier)
	if err != nil {
		return nil, s.fail(ctx, models.ActionExchangeCode, err)
	}
	s.succeed(ctx, models.ActionExchangeCode, audit.EventCodeExchanged, sess)
	return sessionOutcome(sess, s.cfg.SignInRedirectTo), nil
}

// VerifyEmail confirms an emailed token hash (sign-up confirmation, magic
// link, invite) and signs the user in.
func (s *Service) VerifyEmail(ctx context.Context, tokenHash, typ string) (*models.Outcome, error) {
	sess, err := s.backend(ctx).VerifyOtp(ctx, supabase.VerifyRequest{TokenHash: tokenHash, Type: typ})
	if err != nil {
		return nil, s.fail(ctx, models.ActionVerifyEmail, err)
	}
	s.succeed(ctx, models.ActionVerifyEmail, audit.EventEmailVerified, sess, "type", typ)
	return sessionOutcome(sess, s.cfg.SignInRedirectTo), nil
}
