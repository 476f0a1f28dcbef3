package ctxutil

import (
	"context"
	"strings"
)

type identityKey struct{}

// Identity is the caller identity asserted by an upstream collaborator.
// The engine does not authenticate it; it only checks it against the admin
// allow-list.
type Identity struct {
	Email  string
	Source string // "header" or "jwt"
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	if id != nil {
		id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	}
	return context.WithValue(Default(ctx), identityKey{}, id)
}

func GetIdentity(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	if id, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return id
	}
	return nil
}
