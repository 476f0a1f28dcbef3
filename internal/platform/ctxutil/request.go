package ctxutil

import "context"

type requestKey struct{}

// RequestMeta identifies one HTTP request across logs and traces.
type RequestMeta struct {
	RequestID string
	TraceID   string
}

func WithRequest(ctx context.Context, m *RequestMeta) context.Context {
	return context.WithValue(Default(ctx), requestKey{}, m)
}

func RequestFrom(ctx context.Context) *RequestMeta {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(requestKey{}).(*RequestMeta)
	return m
}

func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
