package service

import "context"

type contextKey int

const clientIPKey contextKey = iota

// WithClientIP attaches the caller's network origin to the context so the
// eligibility engine can capture it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the attached client IP, or empty.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// contextIPResolver reads the client IP off the request context.
type contextIPResolver struct{}

func (contextIPResolver) Resolve(ctx context.Context) string {
	return ClientIPFromContext(ctx)
}
