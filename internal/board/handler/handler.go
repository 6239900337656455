package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "supaboard/internal/auth/middleware"
	"supaboard/internal/board/models"
	"supaboard/internal/platform/middleware"
	dErrors "supaboard/pkg/domain-errors"
	"supaboard/pkg/platform/httputil"
	"supaboard/pkg/platform/validation"
)

type Service interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, userID string, req models.CreateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// Handler serves the task board. Listing is open to anonymous callers, the
// mutations need a session.
type Handler struct {
	svc      Service
	logger   *slog.Logger
	throttle func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithThrottle wraps the mutating routes, after the session check.
func WithThrottle(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.throttle = mw }
}

func New(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the board routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/board/tasks", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireSession)
			if h.throttle != nil {
				r.Use(h.throttle)
			}
			r.Use(middleware.ContentTypeJSON)
			r.Post("/", h.handleCreate)
			r.Post("/delete", h.handleDelete)
			r.Delete("/{id}", h.handleDeleteByID)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeInput[models.CreateTaskRequest](w, r)
	if err != nil {
		h.inputFailure(ctx, r, err)
		httputil.WriteInputError(w, err)
		return
	}
	task, err := h.svc.Create(ctx, userID(ctx), *req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeInput[models.DeleteTaskRequest](w, r)
	if err != nil {
		h.inputFailure(ctx, r, err)
		httputil.WriteInputError(w, err)
		return
	}
	h.delete(w, r, req.ID.Value)
}

func (h *Handler) handleDeleteByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		fields := validation.FieldErrors{}
		fields.Add("id", "Expected number")
		httputil.WriteInputError(w, fields.Err())
		return
	}
	h.delete(w, r, id)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	if err := h.svc.Delete(ctx, userID(ctx), id); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) inputFailure(ctx context.Context, r *http.Request, err error) {
	h.logger.WarnContext(ctx, "invalid board input",
		"request_id", middleware.GetRequestID(ctx),
		"path", r.URL.Path,
		"error", err,
	)
}

func userID(ctx context.Context) string {
	if sess := authmw.SessionFromContext(ctx); sess != nil {
		return sess.User.ID
	}
	return ""
}

// writeFailure reports a failed mutation in the form failure shape. A missing
// session stays a 400, matching RequireSession.
func writeFailure(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeUnauthorized:
		httputil.WriteFormFailure(w, http.StatusBadRequest, dErrors.MessageOf(err))
	case dErrors.CodeInternal:
		httputil.WriteFormFailure(w, http.StatusInternalServerError, "Internal error")
	default:
		httputil.WriteFormFailure(w, dErrors.ToHTTPStatus(code), dErrors.MessageOf(err))
	}
}
