// Package httpserver builds the process HTTP server.
package httpserver

import (
	"net/http"
	"time"

	"supaboard/internal/platform/config"
)

// New builds the server for cfg. The write deadline leaves room past the
// per-request timeout so a timed-out handler can still answer.
func New(cfg config.Server, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	if cfg.RequestTimeout > 0 {
		srv.ReadTimeout = cfg.RequestTimeout
		srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	}
	return srv
}
