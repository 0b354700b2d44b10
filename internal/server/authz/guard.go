// Package authz holds the authorization rules: identity propagation through
// the request context, the self-equality rule for private user data, and the
// participant/recipient rules for messages.
package authz

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "username"

// WithIdentity returns a context carrying the verified username.
func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, identityKey, username)
}

// IdentityFromContext extracts the verified username placed by the transport
// middleware. Returns common.ErrorUnauthenticated if no identity is present.
func IdentityFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(identityKey).(string)
	if !ok || username == "" {
		return "", common.ErrorUnauthenticated
	}
	return username, nil
}

// RequireSelf allows the operation only when the verified identity targets
// its own private data.
func RequireSelf(identity, target string) error {
	if identity != target {
		return common.ErrorForbidden
	}
	return nil
}

// CanViewMessage allows only the message participants (sender or recipient).
func CanViewMessage(identity string, m *models.Message) error {
	if identity != m.FromUsername && identity != m.ToUsername {
		return common.ErrorForbidden
	}
	return nil
}

// CanMarkRead allows only the recipient. The sender is a participant but may
// not transition the message to read.
func CanMarkRead(identity string, m *models.Message) error {
	if identity != m.ToUsername {
		return common.ErrorForbidden
	}
	return nil
}
