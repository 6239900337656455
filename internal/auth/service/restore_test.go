package service

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"supaboard/internal/auth/sessioncookie"
	"supaboard/internal/platform/metrics"
	"supaboard/internal/supabase"
)

func (s *ServiceSuite) bootstrapCount(outcome string) float64 {
	return testutil.ToFloat64(s.metrics.SessionBootstrap.WithLabelValues(outcome))
}

func (s *ServiceSuite) TestRestore() {
	ctx := context.Background()
	tokens := sessioncookie.Tokens{AccessToken: "access-u1", RefreshToken: "refresh-u1", ExpiresIn: 3600}

	s.Run("live session is restored without touching the cookie", func() {
		s.mockBackend.EXPECT().SetSession(gomock.Any(), "access-u1", "refresh-u1").Return(s.session("u1"), nil)

		res := s.service.Restore(ctx, tokens)
		s.Require().NotNil(res.Session)
		s.Equal("u1", res.Session.User.ID)
		s.False(res.Refreshed)
		s.False(res.Clear)
		s.Equal(1.0, s.bootstrapCount(metrics.BootstrapRestored))
	})

	s.Run("expired access token refreshed inside set session is reported as refreshed", func() {
		rotated := s.session("u1")
		rotated.AccessToken = "access-new"
		rotated.RefreshToken = "refresh-new"
		s.mockBackend.EXPECT().SetSession(gomock.Any(), "access-u1", "refresh-u1").Return(rotated, nil)

		res := s.service.Restore(ctx, tokens)
		s.True(res.Refreshed)
		s.Equal("access-new", res.Session.AccessToken)
	})

	s.Run("set session failure falls back to refresh", func() {
		s.auditStore.Clear()
		refreshed := s.session("u1")
		refreshed.AccessToken = "access-2"
		gomock.InOrder(
			s.mockBackend.EXPECT().SetSession(gomock.Any(), "access-u1", "refresh-u1").
				Return(nil, &supabase.AuthError{Status: 401, Message: "invalid JWT"}),
			s.mockBackend.EXPECT().RefreshSession(gomock.Any(), "refresh-u1").Return(refreshed, nil),
		)

		res := s.service.Restore(ctx, tokens)
		s.True(res.Refreshed)
		s.False(res.Clear)
		s.Equal("access-2", res.Session.AccessToken)
		s.Equal([]string{"session_refreshed"}, s.auditStore.Actions())
	})

	s.Run("total failure asks for the cookie to be cleared", func() {
		s.auditStore.Clear()
		s.mockBackend.EXPECT().SetSession(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &supabase.AuthError{Status: 401, Message: "invalid JWT"})
		s.mockBackend.EXPECT().RefreshSession(gomock.Any(), "refresh-u1").
			Return(nil, &supabase.AuthError{Status: 400, Code: "refresh_token_not_found", Message: "Invalid Refresh Token"})

		res := s.service.Restore(ctx, tokens)
		s.True(res.Clear)
		s.Nil(res.Session)
		s.Equal(1.0, s.bootstrapCount(metrics.BootstrapCleared))
		s.Equal([]string{"session_cleared"}, s.auditStore.Actions())
	})

	s.Run("cancelled request context does not abort the shared restore", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s.mockBackend.EXPECT().SetSession(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, _, _ string) (*supabase.Session, error) {
				s.NoError(c.Err())
				return s.session("u1"), nil
			})

		res := s.service.Restore(cctx, tokens)
		s.NotNil(res.Session)
	})
}

func (s *ServiceSuite) TestRestore_ConcurrentRequestsShareOneRefresh() {
	tokens := sessioncookie.Tokens{AccessToken: "stale", RefreshToken: "rotating"}
	release := make(chan struct{})

	s.mockBackend.EXPECT().SetSession(gomock.Any(), "stale", "rotating").
		Return(nil, &supabase.AuthError{Status: 401, Message: "invalid JWT"}).Times(1)
	s.mockBackend.EXPECT().RefreshSession(gomock.Any(), "rotating").DoAndReturn(
		func(context.Context, string) (*supabase.Session, error) {
			<-release
			return s.session("u1"), nil
		}).Times(1)

	const callers = 8
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.service.Restore(context.Background(), tokens)
			results[i] = res.Refreshed && res.Session != nil
		}()
	}

	// let every caller join the in-flight restore before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, ok := range results {
		s.True(ok, "caller %d did not get the refreshed session", i)
	}
	s.Equal(float64(callers), s.bootstrapCount(metrics.BootstrapRefreshed))
}
