package service

import (
	"context"

	"supaboard/internal/auth/models"
	"supaboard/internal/auth/sessioncookie"
	"supaboard/internal/platform/metrics"
	"supaboard/internal/supabase"
	audit "supaboard/pkg/platform/audit"
)

type restoreValue struct {
	session   *supabase.Session
	refreshed bool
}

// Restore resolves the session carried by a cookie. It tries the stored pair
// first and falls back to a refresh; when both fail the caller must clear the
// cookie. Concurrent restores of the same refresh token share one backend
// round trip so a rotating refresh token is only spent once.
func (s *Service) Restore(ctx context.Context, tokens sessioncookie.Tokens) models.RestoreResult {
	v, err, shared := s.restores.Do(tokens.RefreshToken, func() (any, error) {
		// a cancelled first caller must not fail the requests sharing its result
		return s.restore(context.WithoutCancel(ctx), tokens)
	})
	if err != nil {
		s.metrics.IncSessionBootstrap(metrics.BootstrapCleared)
		s.emit(ctx, audit.Event{
			Action: string(audit.EventSessionCleared),
			Reason: FailureMessage(err),
		})
		s.logger.InfoContext(ctx, "session cookie rejected", "error", err)
		return models.RestoreResult{Clear: true}
	}

	rv := v.(restoreValue)
	if !rv.refreshed {
		s.metrics.IncSessionBootstrap(metrics.BootstrapRestored)
		return models.RestoreResult{Session: rv.session}
	}
	s.metrics.IncSessionBootstrap(metrics.BootstrapRefreshed)
	if !shared {
		s.emit(ctx, audit.Event{
			Action: string(audit.EventSessionRefreshed),
			UserID: rv.session.User.ID,
		})
	}
	return models.RestoreResult{Session: rv.session, Refreshed: true}
}

func (s *Service) restore(ctx context.Context, tokens sessioncookie.Tokens) (restoreValue, error) {
	backend := s.backend(ctx)

	sess, err := backend.SetSession(ctx, tokens.AccessToken, tokens.RefreshToken)
	if err == nil {
		// an expired access token is refreshed inside SetSession
		refreshed := sess.AccessToken != tokens.AccessToken || sess.RefreshToken != tokens.RefreshToken
		return restoreValue{session: sess, refreshed: refreshed}, nil
	}
	s.logger.DebugContext(ctx, "set session failed, refreshing", "error", err)

	sess, err = backend.RefreshSession(ctx, tokens.RefreshToken)
	if err != nil {
		return restoreValue{}, err
	}
	return restoreValue{session: sess, refreshed: true}, nil
}
