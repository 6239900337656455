package handler

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"supaboard/internal/board/handler/mocks"
	"supaboard/internal/board/models"
	"supaboard/internal/platform/logger"
	"supaboard/internal/platform/middleware"
	"supaboard/internal/supabase"
	dErrors "supaboard/pkg/domain-errors"
	"supaboard/pkg/requestcontext"
	"supaboard/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	svc     *mocks.MockService
	router  chi.Router
	session *supabase.Session
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.svc = mocks.NewMockService(s.ctrl)
	s.session = nil

	r := chi.NewRouter()
	r.Use(middleware.SharedMap)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if s.session != nil {
				requestcontext.Shared(req.Context()).Set(requestcontext.KeySession, s.session)
			}
			next.ServeHTTP(w, req)
		})
	})
	New(s.svc, logger.Discard()).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) signIn() {
	s.session = &supabase.Session{AccessToken: "access-1", User: supabase.User{ID: "user-1"}}
}

func strPtr(v string) *string { return &v }

func (s *HandlerSuite) TestList() {
	s.Run("anonymous callers can list", func() {
		s.svc.EXPECT().List(gomock.Any()).Return([]models.Task{{ID: 1, Test: strPtr("a"), UserID: "user-1"}}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/board/tasks"))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		tasks := testutil.UnmarshalResponse[[]models.Task](s.T(), rr)
		s.Require().Len(*tasks, 1)
		s.Equal("a", *(*tasks)[0].Test)
	})

	s.Run("store failure", func() {
		s.svc.EXPECT().List(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeUnavailable, "list tasks"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/board/tasks"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
	})
}

func (s *HandlerSuite) TestCreate() {
	s.Run("requires a session", func() {
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/board/tasks", url.Values{"text": {"hi"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		s.Equal("Unauthorized", testutil.UnmarshalErrorResponse(s.T(), rr)["error_description"])
	})

	s.Run("form post creates a task for the session user", func() {
		s.signIn()
		s.svc.EXPECT().Create(gomock.Any(), "user-1", models.CreateTaskRequest{Text: strPtr("buy milk")}).
			Return(&models.Task{ID: 5, Test: strPtr("buy milk"), UserID: "user-1"}, nil)

		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/board/tasks", url.Values{"text": {"buy milk"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		task := testutil.UnmarshalResponse[models.Task](s.T(), rr)
		s.Equal(int64(5), task.ID)
	})

	s.Run("missing text", func() {
		s.signIn()
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/board/tasks", map[string]string{})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		s.Equal([]string{"Required"}, testutil.UnmarshalFormErrors(s.T(), rr).FieldErrors["text"])
	})

	s.Run("store failure", func() {
		s.signIn()
		s.svc.EXPECT().Create(gomock.Any(), "user-1", gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "insert task"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/board/tasks", map[string]string{"text": "x"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		s.Equal([]string{"insert task"}, testutil.UnmarshalFormErrors(s.T(), rr).FormErrors)
	})
}

func (s *HandlerSuite) TestDelete() {
	s.Run("requires a session", func() {
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/board/tasks/delete", url.Values{"id": {"3"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("form id is coerced to a number", func() {
		s.signIn()
		s.svc.EXPECT().Delete(gomock.Any(), "user-1", int64(3)).Return(nil)

		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/board/tasks/delete", url.Values{"id": {"3"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("json number id", func() {
		s.signIn()
		s.svc.EXPECT().Delete(gomock.Any(), "user-1", int64(8)).Return(nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/board/tasks/delete", map[string]int{"id": 8})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("non numeric id", func() {
		s.signIn()
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/board/tasks/delete", url.Values{"id": {"abc"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		s.Equal([]string{"Expected number"}, testutil.UnmarshalFormErrors(s.T(), rr).FieldErrors["id"])
	})

	s.Run("id past int64 range", func() {
		s.signIn()
		req := testutil.NewFormRequest(s.T(), http.MethodPost, "/board/tasks/delete", url.Values{"id": {"99999999999999999999"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		s.Equal([]string{"Expected number"}, testutil.UnmarshalFormErrors(s.T(), rr).FieldErrors["id"])
	})

	s.Run("delete by path", func() {
		s.signIn()
		s.svc.EXPECT().Delete(gomock.Any(), "user-1", int64(12)).Return(nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/board/tasks/12"))

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("bad path id", func() {
		s.signIn()
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/board/tasks/twelve"))

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("service failure", func() {
		s.signIn()
		s.svc.EXPECT().Delete(gomock.Any(), "user-1", int64(1)).Return(errors.New("boom"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/board/tasks/1"))

		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	})
}

func (s *HandlerSuite) TestThrottle() {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	r := chi.NewRouter()
	r.Use(middleware.SharedMap)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if s.session != nil {
				requestcontext.Shared(req.Context()).Set(requestcontext.KeySession, s.session)
			}
			next.ServeHTTP(w, req)
		})
	})
	New(s.svc, logger.Discard(), WithThrottle(deny)).Register(r)

	s.Run("anonymous caller is rejected before the throttle", func() {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(s.T(), http.MethodPost, "/board/tasks", map[string]string{"text": "x"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("signed in caller is throttled", func() {
		s.signIn()
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(s.T(), http.MethodPost, "/board/tasks", map[string]string{"text": "x"}))
		testutil.AssertStatus(s.T(), rr, http.StatusTooManyRequests)
	})

	s.Run("listing is not throttled", func() {
		s.svc.EXPECT().List(gomock.Any()).Return([]models.Task{}, nil)
		rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/board/tasks"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})
}
