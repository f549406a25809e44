package kit

import "context"

type ctxKey int

const (
	transportKey ctxKey = iota
	traceIDKey
	remoteAddrKey
)

// WithTransport records which transport ("http" or "mcp") carried the call.
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport defaults to "http" when nothing was recorded.
func GetTransport(ctx context.Context) string {
	if t := stringValue(ctx, transportKey); t != "" {
		return t
	}
	return "http"
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func GetTraceID(ctx context.Context) string { return stringValue(ctx, traceIDKey) }

// WithRemoteAddr records the client IP as resolved by the HTTP middleware.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey, addr)
}

func GetRemoteAddr(ctx context.Context) string { return stringValue(ctx, remoteAddrKey) }

func stringValue(ctx context.Context, k ctxKey) string {
	s, _ := ctx.Value(k).(string)
	return s
}
