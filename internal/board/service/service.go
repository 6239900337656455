// Package service runs the task board operations against a Store.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"supaboard/internal/board/models"
	"supaboard/internal/platform/metrics"
	dErrors "supaboard/pkg/domain-errors"
	audit "supaboard/pkg/platform/audit"
)

// Store persists tasks. Delete is scoped to the owner and deleting a missing
// row is not an error.
type Store interface {
	List(ctx context.Context) ([]models.Task, error)
	Insert(ctx context.Context, task models.NewTask) (*models.Task, error)
	Delete(ctx context.Context, id int64, userID string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates task board operations.
type Service struct {
	store Store

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("task store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var errUnauthorized = dErrors.New(dErrors.CodeUnauthorized, "Unauthorized")

// List returns every task visible to the caller.
func (s *Service) List(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.List(ctx)
	s.metrics.IncBoardOperation("list", err)
	if err != nil {
		s.logger.WarnContext(ctx, "list tasks failed", "error", err)
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Create inserts a task owned by userID.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateTaskRequest) (*models.Task, error) {
	if userID == "" {
		return nil, errUnauthorized
	}
	text := ""
	if req.Text != nil {
		text = *req.Text
	}
	task, err := s.store.Insert(ctx, models.NewTask{Test: text, UserID: userID})
	s.metrics.IncBoardOperation("create", err)
	if err != nil {
		s.logger.WarnContext(ctx, "insert task failed", "user_id", userID, "error", err)
		return nil, err
	}
	s.emit(ctx, audit.EventTaskCreated, userID, task.ID)
	return task, nil
}

// Delete removes task id if userID owns it.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	if userID == "" {
		return errUnauthorized
	}
	err := s.store.Delete(ctx, id, userID)
	s.metrics.IncBoardOperation("delete", err)
	if err != nil {
		s.logger.WarnContext(ctx, "delete task failed", "user_id", userID, "task_id", id, "error", err)
		return err
	}
	s.emit(ctx, audit.EventTaskDeleted, userID, id)
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, userID string, taskID int64) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  string(action),
		UserID:  userID,
		Subject: strconv.FormatInt(taskID, 10),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
