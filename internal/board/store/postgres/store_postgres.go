// Package postgres stores tasks directly in Postgres through pgx, for
// deployments that own the database instead of going through the table API.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supaboard/internal/board/models"
	dErrors "supaboard/pkg/domain-errors"
)

// Schema creates the task table when it does not exist yet.
const Schema = `CREATE TABLE IF NOT EXISTS "Task" (
	id         bigint GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	created_at timestamptz DEFAULT now(),
	test       text,
	user_id    uuid NOT NULL
)`

var ErrNilPool = errors.New("postgres pool is required")

// Store persists tasks in the "Task" table.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema applies Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "create task table")
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, test, user_id::text FROM "Task" ORDER BY id`)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list tasks")
	}
	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list tasks")
	}
	return tasks, nil
}

func (s *Store) Insert(ctx context.Context, in models.NewTask) (*models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`INSERT INTO "Task" (test, user_id) VALUES ($1, $2)
		 RETURNING id, created_at, test, user_id::text`,
		in.Test, in.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "insert task")
	}
	task, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "insert task")
	}
	return &task, nil
}

func (s *Store) Delete(ctx context.Context, id int64, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM "Task" WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete task")
	}
	return nil
}

func scanTask(row pgx.CollectableRow) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.Test, &t.UserID)
	return t, err
}
