package resource

import "context"

type requestIDKey struct{}

// HeaderRequestID is forwarded on every backend call so both sides log the
// same id.
const HeaderRequestID = "X-Request-ID"

// WithRequestID returns ctx carrying id for outgoing calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
