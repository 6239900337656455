// Package log writes audit events to the structured application log. It is
// the default sink when no broker is configured.
package log

import (
	"context"
	"log/slog"

	audit "supaboard/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	level := slog.LevelInfo
	if e.Category == audit.CategorySecurity {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "audit",
		"audit_id", e.ID,
		"category", string(e.Category),
		"action", e.Action,
		"user_id", e.UserID,
		"provider", e.Provider,
		"reason", e.Reason,
		"request_id", e.RequestID,
		"ip", e.IP,
		"browser", e.Browser,
		"os", e.OS,
	)
	return nil
}
