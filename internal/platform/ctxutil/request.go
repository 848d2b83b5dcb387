package ctxutil

import (
	"context"
	"strings"
)

// DefaultActor stamps audit columns when a request carries no identity.
const DefaultActor = "admin"

type requestDataKey struct{}

// RequestData carries the caller identity. Actor is an opaque audit string
// (an email or "admin"), never validated against a user table.
type RequestData struct {
	Actor string
	IP    string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// Actor returns the request actor or DefaultActor.
func Actor(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil {
		if a := strings.TrimSpace(rd.Actor); a != "" {
			return a
		}
	}
	return DefaultActor
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
