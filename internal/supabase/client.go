// Package supabase is a context-aware client for the hosted auth (GoTrue) and
// table (PostgREST) APIs, layered over gotrue-go and postgrest-go with
// tracing, call metrics and typed auth errors.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/postgrest-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "supaboard/pkg/domain-errors"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"

	tracerName = "supaboard/internal/supabase"
	clientInfo = "supaboard-go"
)

// Config configures a Client.
type Config struct {
	URL      string
	AnonKey  string
	FlowType FlowType
	Schema   string
	Timeout  time.Duration
	// JWTSecret enables HS256 signature checks on restored access tokens.
	JWTSecret string
}

// Observer receives one callback per backend round trip.
type Observer interface {
	ObserveBackendCall(operation string, err error, start time.Time)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for auth calls. Its transport
// and timeout are also handed to gotrue-go and PostgREST.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithObserver records call latency and outcome.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client talks to one project. A Client is safe for concurrent use. The
// bearer token used for table requests can be switched with SetAuth, which
// mirrors how a per-request client adopts the restored session.
type Client struct {
	cfg      Config
	baseURL  *url.URL
	http     *http.Client
	gotrue   gotrue.Client
	tracer   trace.Tracer
	observer Observer
	now      func() time.Time

	mu          sync.RWMutex
	accessToken string
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "backend url and anon key are required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid backend url %q", cfg.URL))
	}
	if cfg.FlowType == "" {
		cfg.FlowType = FlowPKCE
	}
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{
		cfg:     cfg,
		baseURL: u,
		http:    &http.Client{Timeout: cfg.Timeout},
		gotrue:  gotrue.New("", cfg.AnonKey).WithCustomGoTrueURL(u.String() + authPath),
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Clone returns an anonymous copy sharing transport, tracer and observer.
func (c *Client) Clone() *Client {
	return &Client{
		cfg:      c.cfg,
		baseURL:  c.baseURL,
		http:     c.http,
		gotrue:   c.gotrue,
		tracer:   c.tracer,
		observer: c.observer,
		now:      c.now,
	}
}

// WithAccessToken returns a copy whose table requests carry token.
func (c *Client) WithAccessToken(token string) *Client {
	cp := c.Clone()
	cp.accessToken = token
	return cp
}

// SetAuth switches the bearer token used for table requests. An empty token
// reverts to the anon key.
func (c *Client) SetAuth(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

// AccessToken returns the token table requests currently carry.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// From starts a table query. Each call builds its own PostgREST client, so
// concurrent queries never share header state.
func (c *Client) From(table string) *postgrest.QueryBuilder {
	return c.rest().From(table)
}

func (c *Client) rest() *postgrest.Client {
	rc := postgrest.NewClient(c.baseURL.String()+restPath, c.cfg.Schema, map[string]string{
		"apikey":        c.cfg.AnonKey,
		"X-Client-Info": clientInfo,
	})
	if rc.ClientError != nil {
		return rc
	}
	token := c.AccessToken()
	if token == "" {
		token = c.cfg.AnonKey
	}
	rc.SetAuthToken(token)
	if c.http.Transport != nil {
		rc.Transport.Parent = c.http.Transport
	}
	return rc
}

// Table runs fn against a table query builder inside a traced, observed span.
// PostgREST calls have no context support, so ctx only scopes the span.
func (c *Client) Table(ctx context.Context, table, op string, fn func(q *postgrest.QueryBuilder) error) error {
	_, span := c.tracer.Start(ctx, "supabase.rest."+op, trace.WithAttributes(attribute.String("db.table", table)))
	defer span.End()
	start := time.Now()

	err := fn(c.From(table))
	c.finish(span, "rest."+op, err, start)
	return err
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	bearer string
	body   any
}

// traced runs one auth API call inside a client span and reports it to the observer.
func (c *Client) traced(ctx context.Context, op, method, path string, fn func(ctx context.Context) error) (err error) {
	ctx, span := c.tracer.Start(ctx, "supabase.auth."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", authPath+path),
		))
	defer span.End()
	start := time.Now()
	defer func() { c.finish(span, "auth."+op, err, start) }()
	return fn(ctx)
}

// do performs an auth API call gotrue-go has no usable method for and decodes
// a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	return c.traced(ctx, req.op, req.method, req.path, func(ctx context.Context) error {
		u := *c.baseURL
		u.Path = u.Path + authPath + req.path
		if len(req.query) > 0 {
			u.RawQuery = req.query.Encode()
		}

		var body io.Reader
		if req.body != nil {
			buf, err := json.Marshal(req.body)
			if err != nil {
				return fmt.Errorf("encode %s request: %w", req.op, err)
			}
			body = bytes.NewReader(buf)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
		if err != nil {
			return fmt.Errorf("build %s request: %w", req.op, err)
		}
		bearer := req.bearer
		if bearer == "" {
			bearer = c.cfg.AnonKey
		}
		httpReq.Header.Set("apikey", c.cfg.AnonKey)
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-Client-Info", clientInfo)
		if body != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return transportError(err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "read auth backend response")
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return decodeAuthError(resp.StatusCode, respBody)
		}
		if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s response: %w", req.op, err)
		}
		return nil
	})
}

func (c *Client) finish(span trace.Span, op string, err error, start time.Time) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.observer != nil {
		c.observer.ObserveBackendCall(op, err, start)
	}
}
