package session

import "context"

type ctxKey string

const sessionKey ctxKey = "pochita.session"

// WithSession stores the session in context.
func WithSession(ctx context.Context, d *Data) context.Context {
	return context.WithValue(ctx, sessionKey, d)
}

// FromContext extracts the session if present.
func FromContext(ctx context.Context) (*Data, bool) {
	d, ok := ctx.Value(sessionKey).(*Data)
	return d, ok && d != nil
}
