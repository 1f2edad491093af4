package kit

import "context"

type ctxKey int

const (
	userKey ctxKey = iota
	transportKey
	requestIDKey
	remoteAddrKey
)

// WithUserID records the authenticated principal (the Basic auth user).
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}

func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}

// WithTransport records the surface a call came in on: "http" or "mcp".
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport defaults to "http".
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(transportKey).(string); ok {
		return v
	}
	return "http"
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey, addr)
}

func GetRemoteAddr(ctx context.Context) string {
	v, _ := ctx.Value(remoteAddrKey).(string)
	return v
}

// LogAttrs returns the request-scoped values present in ctx as slog
// key/value pairs. Empty values are left out; transport is always present.
func LogAttrs(ctx context.Context) []any {
	attrs := []any{"transport", GetTransport(ctx)}
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if u := GetUserID(ctx); u != "" {
		attrs = append(attrs, "user", u)
	}
	if a := GetRemoteAddr(ctx); a != "" {
		attrs = append(attrs, "remote_addr", a)
	}
	return attrs
}
