package core

import "context"

// Requester identifies who triggered an operation, for audit entries.
type Requester struct {
	IPAddress string
	UserAgent string
}

type requesterKey struct{}

// WithRequester attaches the requester to ctx.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFrom returns the requester stored in ctx, or the zero value.
func RequesterFrom(ctx context.Context) Requester {
	r, _ := ctx.Value(requesterKey{}).(Requester)
	return r
}
