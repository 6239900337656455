// Package memory is an in-process task store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"supaboard/internal/board/models"
)

// InMemoryStore keeps tasks in a map keyed by id. Ids are assigned in
// insertion order starting at 1.
type InMemoryStore struct {
	mu     sync.RWMutex
	tasks  map[int64]models.Task
	nextID int64
	now    func() time.Time
}

func New() *InMemoryStore {
	return &InMemoryStore{
		tasks: make(map[int64]models.Task),
		now:   time.Now,
	}
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Insert(_ context.Context, in models.NewTask) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	created := s.now().UTC()
	text := in.Test
	task := models.Task{
		ID:        s.nextID,
		CreatedAt: &created,
		Test:      &text,
		UserID:    in.UserID,
	}
	s.tasks[task.ID] = task
	return &task, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok && t.UserID == userID {
		delete(s.tasks, id)
	}
	return nil
}
