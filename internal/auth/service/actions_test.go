package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"supaboard/internal/auth/models"
	"supaboard/internal/supabase"
	dErrors "supaboard/pkg/domain-errors"
	"supaboard/pkg/platform/sentinel"
)

func passwordReq(email, password string) models.PasswordSignInRequest {
	return models.PasswordSignInRequest{Email: email, Password: password}
}

func (s *ServiceSuite) TestSignInWithPassword() {
	ctx := context.Background()

	s.Run("success sets the cookie and redirects", func() {
		sess := s.session("u1")
		s.mockBackend.EXPECT().SignInWithPassword(gomock.Any(), "u1@example.com", "pw").Return(sess, nil)

		out, err := s.service.SignInWithPassword(ctx, passwordReq("u1@example.com", "pw"))
		s.Require().NoError(err)
		s.True(out.SetCookie)
		s.Equal(sess, out.Session)
		s.Equal("/board", out.Redirect)
		s.Equal(1.0, s.actionCount(models.ActionSignInPassword, "ok"))
	})

	s.Run("backend error is returned unchanged", func() {
		s.auditStore.Clear()
		backendErr := &supabase.AuthError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
		s.mockBackend.EXPECT().SignInWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, backendErr)

		out, err := s.service.SignInWithPassword(ctx, passwordReq("u1@example.com", "bad"))
		s.Nil(out)
		s.Equal(backendErr, err)
		s.Equal([]string{"sign_in_failed"}, s.auditStore.Actions())
		s.Equal(1.0, s.actionCount(models.ActionSignInPassword, "error"))
	})

	s.Run("missing session counts as failure", func() {
		s.mockBackend.EXPECT().SignInWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		_, err := s.service.SignInWithPassword(ctx, passwordReq("u1@example.com", "pw"))
		s.Require().Error(err)
		s.Equal(400, FailureStatus(err))
	})
}

func (s *ServiceSuite) TestSignInWithOAuth() {
	ctx := context.Background()

	s.Run("pkce verifier is stored under a new flow id", func() {
		s.mockBackend.EXPECT().SignInWithOAuth(gomock.Any(), supabase.OAuthRequest{
			Provider:   "github",
			RedirectTo: "https://app.example.com/auth/callback",
		}).Return(&supabase.OAuthResult{Provider: "github", URL: "https://auth.example.com/authorize?provider=github", CodeVerifier: "verifier-1"}, nil)

		var savedFlow string
		s.mockVerifiers.EXPECT().Save(gomock.Any(), gomock.Any(), "verifier-1", 10*time.Minute).DoAndReturn(
			func(_ context.Context, flowID, _ string, _ time.Duration) error {
				savedFlow = flowID
				return nil
			})

		out, err := s.service.SignInWithOAuth(ctx, models.OAuthSignInRequest{Provider: "github"})
		s.Require().NoError(err)
		s.Equal("https://auth.example.com/authorize?provider=github", out.Redirect)
		s.NotEmpty(out.FlowID)
		s.Equal(savedFlow, out.FlowID)
		s.Equal(10*time.Minute, out.FlowTTL)
		s.False(out.SetCookie)
	})

	s.Run("implicit flow stores nothing", func() {
		s.mockBackend.EXPECT().SignInWithOAuth(gomock.Any(), gomock.Any()).
			Return(&supabase.OAuthResult{URL: "https://auth.example.com/authorize"}, nil)

		out, err := s.service.SignInWithOAuth(ctx, models.OAuthSignInRequest{Provider: "google"})
		s.Require().NoError(err)
		s.Empty(out.FlowID)
	})

	s.Run("verifier store failure fails the action", func() {
		s.mockBackend.EXPECT().SignInWithOAuth(gomock.Any(), gomock.Any()).
			Return(&supabase.OAuthResult{URL: "u", CodeVerifier: "v"}, nil)
		s.mockVerifiers.EXPECT().Save(gomock.Any(), gomock.Any(), "v", gomock.Any()).Return(sentinel.ErrUnavailable)

		_, err := s.service.SignInWithOAuth(ctx, models.OAuthSignInRequest{Provider: "google"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *ServiceSuite) TestSignInWithOtp() {
	ctx := context.Background()

	s.Run("email sent has no redirect and no cookie", func() {
		s.auditStore.Clear()
		s.mockBackend.EXPECT().SignInWithOtp(gomock.Any(), supabase.OtpRequest{
			Email:           "u1@example.com",
			EmailRedirectTo: "https://app.example.com/auth/callback",
		}).Return(&supabase.OtpResult{CodeVerifier: "otp-verifier"}, nil)
		s.mockVerifiers.EXPECT().Save(gomock.Any(), gomock.Any(), "otp-verifier", 24*time.Hour).Return(nil)

		out, err := s.service.SignInWithOtp(ctx, models.OtpSignInRequest{Email: "u1@example.com"})
		s.Require().NoError(err)
		s.Empty(out.Redirect)
		s.False(out.SetCookie)
		s.NotEmpty(out.FlowID)
		s.Equal(24*time.Hour, out.FlowTTL)
		s.Equal([]string{"otp_sent"}, s.auditStore.Actions())
	})

	s.Run("immediate session signs in", func() {
		sess := s.session("u1")
		s.mockBackend.EXPECT().SignInWithOtp(gomock.Any(), gomock.Any()).Return(&supabase.OtpResult{Session: sess}, nil)

		out, err := s.service.SignInWithOtp(ctx, models.OtpSignInRequest{Email: "u1@example.com"})
		s.Require().NoError(err)
		s.True(out.SetCookie)
		s.Equal("/board", out.Redirect)
	})

	s.Run("rate limited", func() {
		s.mockBackend.EXPECT().SignInWithOtp(gomock.Any(), gomock.Any()).
			Return(nil, &supabase.AuthError{Status: 429, Code: "over_email_send_rate_limit", Message: "rate limited"})

		_, err := s.service.SignInWithOtp(ctx, models.OtpSignInRequest{Email: "u1@example.com"})
		s.Equal(429, FailureStatus(err))
	})
}

func (s *ServiceSuite) TestSignUp() {
	ctx := context.Background()

	s.Run("confirmation required redirects to sign in without cookie", func() {
		s.mockBackend.EXPECT().SignUp(gomock.Any(), supabase.SignUpRequest{
			Email:           "new@example.com",
			Password:        "secret",
			EmailRedirectTo: "https://app.example.com/auth/callback",
		}).Return(&supabase.SignUpResult{User: &supabase.User{ID: "u2"}, CodeVerifier: "v2"}, nil)
		s.mockVerifiers.EXPECT().Save(gomock.Any(), gomock.Any(), "v2", 24*time.Hour).Return(nil)

		out, err := s.service.SignUp(ctx, models.SignUpRequest{Email: "new@example.com", Password: "secret"})
		s.Require().NoError(err)
		s.False(out.SetCookie)
		s.NotEmpty(out.FlowID)
		s.Equal(24*time.Hour, out.FlowTTL)
		s.Equal("/auth/sign-in", out.Redirect)
	})

	s.Run("autoconfirm sets the cookie and still redirects to sign in", func() {
		sess := s.session("u3")
		s.mockBackend.EXPECT().SignUp(gomock.Any(), gomock.Any()).
			Return(&supabase.SignUpResult{User: &sess.User, Session: sess}, nil)

		out, err := s.service.SignUp(ctx, models.SignUpRequest{Email: "u3@example.com", Password: "secret"})
		s.Require().NoError(err)
		s.True(out.SetCookie)
		s.Empty(out.FlowID)
		s.Equal("/auth/sign-in", out.Redirect)
	})

	s.Run("existing user", func() {
		s.mockBackend.EXPECT().SignUp(gomock.Any(), gomock.Any()).
			Return(nil, &supabase.AuthError{Status: 422, Code: "user_already_exists", Message: "User already registered"})

		_, err := s.service.SignUp(ctx, models.SignUpRequest{Email: "u3@example.com", Password: "secret"})
		s.Equal(422, FailureStatus(err))
		s.Equal("User already registered", FailureMessage(err))
	})
}

func (s *ServiceSuite) TestSignOut() {
	ctx := context.Background()

	s.Run("remote logout failure still clears the cookie", func() {
		sess := s.session("u1")
		s.mockBackend.EXPECT().SignOut(gomock.Any(), "access-u1").Return(errors.New("timeout"))

		out := s.service.SignOut(ctx, sess)
		s.True(out.ClearCookie)
		s.Equal("/auth/sign-in", out.Redirect)
	})

	s.Run("anonymous sign out skips the backend", func() {
		out := s.service.SignOut(ctx, nil)
		s.True(out.ClearCookie)
	})
}

func (s *ServiceSuite) TestSignInWithSSO() {
	s.mockBackend.EXPECT().SignInWithSSO(gomock.Any(), supabase.SSORequest{
		Domain:     "acme.com",
		RedirectTo: "https://app.example.com/auth/callback",
	}).Return(&supabase.SSOResult{URL: "https://idp.acme.com/saml", CodeVerifier: "sso-v"}, nil)
	s.mockVerifiers.EXPECT().Save(gomock.Any(), gomock.Any(), "sso-v", gomock.Any()).Return(nil)

	out, err := s.service.SignInWithSSO(context.Background(), models.SSOSignInRequest{Domain: "acme.com"})
	s.Require().NoError(err)
	s.Equal("https://idp.acme.com/saml", out.Redirect)
	s.NotEmpty(out.FlowID)
}

func (s *ServiceSuite) TestSignInWithIDToken() {
	sess := s.session("u4")
	s.mockBackend.EXPECT().SignInWithIDToken(gomock.Any(), supabase.IDTokenRequest{
		Provider: "google",
		Token:    "id-token",
		Nonce:    "n",
	}).Return(sess, nil)

	out, err := s.service.SignInWithIDToken(context.Background(), models.IDTokenSignInRequest{
		Provider: "google",
		Token:    "id-token",
		Nonce:    "n",
	})
	s.Require().NoError(err)
	s.True(out.SetCookie)
	s.Equal("/board", out.Redirect)
}

func (s *ServiceSuite) TestSetSession() {
	s.Run("valid pair", func() {
		sess := s.session("u5")
		s.mockBackend.EXPECT().SetSession(gomock.Any(), "a", "r").Return(sess, nil)

		out, err := s.service.SetSession(context.Background(), models.SetSessionRequest{AccessToken: "a", RefreshToken: "r"})
		s.Require().NoError(err)
		s.True(out.SetCookie)
		s.Empty(out.Redirect)
	})

	s.Run("invalid pair", func() {
		s.mockBackend.EXPECT().SetSession(gomock.Any(), "a", "r").
			Return(nil, &supabase.AuthError{Status: 401, Code: "bad_jwt", Message: "bad"})

		_, err := s.service.SetSession(context.Background(), models.SetSessionRequest{AccessToken: "a", RefreshToken: "r"})
		s.Equal(401, FailureStatus(err))
	})
}

func (s *ServiceSuite) TestCallback() {
	ctx := context.Background()

	s.Run("code is exchanged with the stored verifier", func() {
		sess := s.session("u1")
		gomock.InOrder(
			s.mockVerifiers.EXPECT().Consume(gomock.Any(), "flow-1").Return("verifier-1", nil),
			s.mockBackend.EXPECT().ExchangeCodeForSession(gomock.Any(), "code-1", "verifier-1").Return(sess, nil),
		)

		out, err := s.service.Callback(ctx, "flow-1", models.CallbackRequest{Code: "code-1"})
		s.Require().NoError(err)
		s.True(out.SetCookie)
		s.Equal("/board", out.Redirect)
	})

	s.Run("missing flow cookie", func() {
		_, err := s.service.Callback(ctx, "", models.CallbackRequest{Code: "code-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("expired flow", func() {
		s.mockVerifiers.EXPECT().Consume(gomock.Any(), "flow-old").Return("", sentinel.ErrExpired)

		_, err := s.service.Callback(ctx, "flow-old", models.CallbackRequest{Code: "code-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("/auth/sign-in?error=sign-in+flow+expired", s.service.ErrorRedirect(err))
	})

	s.Run("store outage", func() {
		s.mockVerifiers.EXPECT().Consume(gomock.Any(), "flow-2").Return("", sentinel.ErrUnavailable)

		_, err := s.service.Callback(ctx, "flow-2", models.CallbackRequest{Code: "code-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("token hash is verified", func() {
		sess := s.session("u6")
		s.mockBackend.EXPECT().VerifyOtp(gomock.Any(), supabase.VerifyRequest{TokenHash: "th", Type: "signup"}).Return(sess, nil)

		out, err := s.service.Callback(ctx, "", models.CallbackRequest{TokenHash: "th", Type: "signup"})
		s.Require().NoError(err)
		s.True(out.SetCookie)
	})

	s.Run("provider error in query", func() {
		_, err := s.service.Callback(ctx, "flow-1", models.CallbackRequest{Error: "access_denied", ErrorDescription: "User denied"})
		s.Require().Error(err)
		s.Equal("User denied", FailureMessage(err))
	})

	s.Run("unknown verification type", func() {
		_, err := s.service.Callback(ctx, "", models.CallbackRequest{TokenHash: "th", Type: "bogus"})
		s.Require().Error(err)
	})
}

func (s *ServiceSuite) TestFailureEventsNameTheAction() {
	ctx := context.Background()
	backendErr := &supabase.AuthError{Status: 422, Code: "unexpected_failure", Message: "nope"}

	cases := []struct {
		name    string
		action  string
		event   string
		prepare func()
		run     func() error
	}{
		{
			name:   "sign up",
			action: models.ActionSignUp,
			event:  "sign_up_failed",
			prepare: func() {
				s.mockBackend.EXPECT().SignUp(gomock.Any(), gomock.Any()).Return(nil, backendErr)
			},
			run: func() error {
				_, err := s.service.SignUp(ctx, models.SignUpRequest{Email: "x@example.com", Password: "pw"})
				return err
			},
		},
		{
			name:   "otp",
			action: models.ActionSignInOtp,
			event:  "otp_failed",
			prepare: func() {
				s.mockBackend.EXPECT().SignInWithOtp(gomock.Any(), gomock.Any()).Return(nil, backendErr)
			},
			run: func() error {
				_, err := s.service.SignInWithOtp(ctx, models.OtpSignInRequest{Email: "x@example.com"})
				return err
			},
		},
		{
			name:   "oauth redirect",
			action: models.ActionSignInOAuth,
			event:  "redirect_sign_in_failed",
			prepare: func() {
				s.mockBackend.EXPECT().SignInWithOAuth(gomock.Any(), gomock.Any()).Return(nil, backendErr)
			},
			run: func() error {
				_, err := s.service.SignInWithOAuth(ctx, models.OAuthSignInRequest{Provider: "github"})
				return err
			},
		},
		{
			name:   "code exchange",
			action: models.ActionExchangeCode,
			event:  "code_exchange_failed",
			prepare: func() {
				s.mockVerifiers.EXPECT().Consume(gomock.Any(), "flow-9").Return("v9", nil)
				s.mockBackend.EXPECT().ExchangeCodeForSession(gomock.Any(), "code-9", "v9").Return(nil, backendErr)
			},
			run: func() error {
				_, err := s.service.Callback(ctx, "flow-9", models.CallbackRequest{Code: "code-9"})
				return err
			},
		},
		{
			name:   "set session",
			action: models.ActionSetSession,
			event:  "session_set_failed",
			prepare: func() {
				s.mockBackend.EXPECT().SetSession(gomock.Any(), "a", "r").Return(nil, backendErr)
			},
			run: func() error {
				_, err := s.service.SetSession(ctx, models.SetSessionRequest{AccessToken: "a", RefreshToken: "r"})
				return err
			},
		},
		{
			name:   "password keeps the sign in event",
			action: models.ActionSignInPassword,
			event:  "sign_in_failed",
			prepare: func() {
				s.mockBackend.EXPECT().SignInWithPassword(gomock.Any(), "x@example.com", "pw").Return(nil, backendErr)
			},
			run: func() error {
				_, err := s.service.SignInWithPassword(ctx, passwordReq("x@example.com", "pw"))
				return err
			},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.auditStore.Clear()
			tc.prepare()

			s.Require().Error(tc.run())

			events, err := s.auditStore.ListAll(ctx)
			s.Require().NoError(err)
			s.Require().Len(events, 1)
			s.Equal(tc.event, events[0].Action)
			s.Equal(tc.action, events[0].Subject)
			s.Equal("nope", events[0].Reason)
		})
	}
}
