// Package publisher fronts an audit.Store. It stamps events with request
// metadata and can decouple the caller from the store through a bounded
// buffer drained by a background worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "supaboard/pkg/platform/audit"
	"supaboard/pkg/platform/audit/worker"
	"supaboard/pkg/platform/middleware/metadata"
	"supaboard/pkg/requestcontext"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

// FailureCounter is satisfied by the service metrics.
type FailureCounter interface {
	IncAuditPublishFailed()
}

const defaultDrainTimeout = 5 * time.Second

type Publisher struct {
	store    audit.Store
	logger   *slog.Logger
	failures FailureCounter
	now      func() time.Time

	bufferSize   int
	drainTimeout time.Duration
	mu           sync.RWMutex
	closed       bool
	buffer       chan audit.Event
	done         chan struct{}
	cancel       context.CancelFunc
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue instead of writing through. Events that
// do not fit are rejected with ErrBufferFull.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

// WithDrainTimeout bounds how long Close waits for buffered events. Past it
// the in-flight append is cancelled and the rest are reported as failed.
func WithDrainTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.drainTimeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithFailureCounter(c FailureCounter) Option {
	return func(p *Publisher) {
		p.failures = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:        store,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.buffer = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.buffer, p.reportFailure)
		go func() {
			defer close(p.done)
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit records the event. Missing ID, timestamp, category and request
// metadata are filled in from ctx.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = p.enrich(ctx, event)

	if p.buffer == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.reportFailure(event, err)
			return err
		}
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.buffer <- event:
		return nil
	default:
		p.reportFailure(event, ErrBufferFull)
		return ErrBufferFull
	}
}

// Close stops accepting events and waits up to the drain timeout for the
// buffer to empty. Events still queued after that are reported as failed.
func (p *Publisher) Close() {
	if p.buffer == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.buffer)
	p.mu.Unlock()

	timer := time.NewTimer(p.drainTimeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		p.logger.Warn("audit drain timed out", "timeout", p.drainTimeout, "pending", len(p.buffer))
		p.cancel()
		<-p.done
		for event := range p.buffer {
			p.reportFailure(event, ErrClosed)
		}
	}
	p.cancel()
}

func (p *Publisher) enrich(ctx context.Context, event audit.Event) audit.Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.UserID == "" {
		event.UserID = requestcontext.UserID(ctx)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.UserAgent != "" && event.Browser == "" {
		d := metadata.DeviceFromUserAgent(event.UserAgent)
		event.Browser = d.Browser
		event.OS = d.OS
	}
	return event
}

func (p *Publisher) reportFailure(event audit.Event, err error) {
	p.logger.Error("audit publish failed",
		"action", event.Action,
		"audit_id", event.ID,
		"error", err,
	)
	if p.failures != nil {
		p.failures.IncAuditPublishFailed()
	}
}
