package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	dErrors "supaboard/pkg/domain-errors"
)

// extras are request fields gotrue-go's request types do not carry. They are
// merged into the outgoing request by callTransport.
type extras struct {
	query url.Values
	body  map[string]any
}

// authCall runs fn against a gotrue-go client bound to ctx, inside a traced,
// observed call. bearer defaults to the anon key, which is what the hosted
// service expects for anonymous calls.
func (c *Client) authCall(ctx context.Context, op, method, path, bearer string, ext extras, fn func(api gotrue.Client) error) error {
	return c.traced(ctx, op, method, path, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.http.Timeout)
		defer cancel()

		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		if bearer == "" {
			bearer = c.cfg.AnonKey
		}
		api := c.gotrue.WithToken(bearer).WithClient(http.Client{
			Transport: &callTransport{ctx: ctx, base: base, ext: ext},
		})
		return authError(op, fn(api))
	})
}

// callTransport binds gotrue-go requests to the caller's context and span.
type callTransport struct {
	ctx  context.Context
	base http.RoundTripper
	ext  extras
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(t.ctx)
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Client-Info", clientInfo)

	if len(t.ext.query) > 0 {
		q := r.URL.Query()
		for k, vs := range t.ext.query {
			q[k] = vs
		}
		r.URL.RawQuery = q.Encode()
	}
	if len(t.ext.body) > 0 && r.Body != nil {
		if err := mergeBody(r, t.ext.body); err != nil {
			return nil, err
		}
	}

	resp, err := t.base.RoundTrip(r)
	if err == nil {
		trace.SpanFromContext(t.ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	return resp, err
}

func mergeBody(r *http.Request, extra map[string]any) error {
	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("merge request body: %w", err)
		}
	}
	for k, v := range extra {
		fields[k] = v
	}
	buf, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("merge request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(buf))
	r.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(buf)), nil }
	r.ContentLength = int64(len(buf))
	r.Header.Set("Content-Type", "application/json")
	return nil
}

// gotrue-go reports non-2xx answers only as formatted text.
var statusErrPattern = regexp.MustCompile(`(?s)^response status code (\d{3})(?:: (.*))?$`)

// authError maps a gotrue-go error onto AuthError or a domain error.
func authError(op string, err error) error {
	if err == nil {
		return nil
	}
	if m := statusErrPattern.FindStringSubmatch(err.Error()); m != nil {
		status, _ := strconv.Atoi(m[1])
		return decodeAuthError(status, []byte(m[2]))
	}
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		return &AuthError{Status: http.StatusBadRequest, Code: "validation_failed", Message: "missing credentials"}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return transportError(err)
	}
	return fmt.Errorf("decode %s response: %w", op, err)
}

func transportError(err error) error {
	var uerr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "auth backend timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "auth backend unreachable")
}

func fromGoTrueSession(s types.Session) Session {
	return Session{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		ExpiresAt:    s.ExpiresAt,
		RefreshToken: s.RefreshToken,
		User:         fromGoTrueUser(s.User),
	}
}

func fromGoTrueUser(u types.User) User {
	out := User{
		Aud:          u.Aud,
		Role:         u.Role,
		Email:        u.Email,
		Phone:        u.Phone,
		AppMetadata:  u.AppMetadata,
		UserMetadata: u.UserMetadata,
		CreatedAt:    u.CreatedAt,
	}
	if u.ID != uuid.Nil {
		out.ID = u.ID.String()
	}
	return out
}
