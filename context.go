package neurochat

import "context"

type clientIPKey struct{}

// WithClientIP attaches the caller's network address to the context so audit
// events can record it. Transport middleware is the expected caller.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address set by [WithClientIP], or "" when absent.
func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
