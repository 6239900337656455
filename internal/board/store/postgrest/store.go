// Package postgrest stores tasks through the hosted table API, using the
// request's backend client so row level security sees the signed-in user.
package postgrest

import (
	"context"
	"errors"
	"strconv"

	"github.com/supabase-community/postgrest-go"

	"supaboard/internal/board/models"
	"supaboard/internal/supabase"
	dErrors "supaboard/pkg/domain-errors"
)

// ClientSource returns the backend client bound to the current request.
type ClientSource func(ctx context.Context) *supabase.Client

type Store struct {
	clients ClientSource
}

func New(clients ClientSource) (*Store, error) {
	if clients == nil {
		return nil, errors.New("client source is required")
	}
	return &Store{clients: clients}, nil
}

func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := s.clients(ctx).Table(ctx, models.Table, "select", func(q *postgrest.QueryBuilder) error {
		_, err := q.Select("*", "", false).
			Order("id", &postgrest.OrderOpts{Ascending: true}).
			ExecuteTo(&tasks)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list tasks")
	}
	return tasks, nil
}

func (s *Store) Insert(ctx context.Context, task models.NewTask) (*models.Task, error) {
	var rows []models.Task
	err := s.clients(ctx).Table(ctx, models.Table, "insert", func(q *postgrest.QueryBuilder) error {
		_, err := q.Insert(task, false, "", "representation", "").ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "insert task")
	}
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeInternal, "insert task returned no row")
	}
	return &rows[0], nil
}

func (s *Store) Delete(ctx context.Context, id int64, userID string) error {
	err := s.clients(ctx).Table(ctx, models.Table, "delete", func(q *postgrest.QueryBuilder) error {
		_, _, err := q.Delete("minimal", "").
			Eq("id", strconv.FormatInt(id, 10)).
			Eq("user_id", userID).
			Execute()
		return err
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete task")
	}
	return nil
}
