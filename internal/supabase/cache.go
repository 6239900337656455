package supabase

import (
	"context"

	"supaboard/pkg/requestcontext"
)

// ClientCache hands out one Client per request, stored in the request's
// shared map under requestcontext.KeySupabase.
type ClientCache struct {
	base *Client
}

// NewClientCache builds request clients from base.
func NewClientCache(base *Client) *ClientCache {
	return &ClientCache{base: base}
}

// Base returns the process-wide anonymous client.
func (c *ClientCache) Base() *Client {
	return c.base
}

// Get returns the request's client, creating it on first use.
func (c *ClientCache) Get(ctx context.Context) *Client {
	v := requestcontext.Shared(ctx).LoadOrStore(requestcontext.KeySupabase, func() any {
		return c.base.Clone()
	})
	if cl, ok := v.(*Client); ok {
		return cl
	}
	return c.base.Clone()
}

// FromContext returns the request's client if one has been created.
func FromContext(ctx context.Context) (*Client, bool) {
	v, ok := requestcontext.Shared(ctx).Get(requestcontext.KeySupabase)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*Client)
	return cl, ok
}
