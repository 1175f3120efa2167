package provider

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// NewCtx returns a context carrying p.
func NewCtx(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromCtx returns the Provider stored in ctx. It panics when there is none.
func FromCtx(ctx context.Context) *Provider {
	p, ok := ctx.Value(ctxKey{}).(*Provider)
	if !ok {
		panic("provider: no Provider in context")
	}

	return p
}

// FromReq returns the Provider stored in the request context.
func FromReq(r *http.Request) *Provider {
	return FromCtx(r.Context())
}
