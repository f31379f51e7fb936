package api

import (
	"context"

	"github.com/byway-labs/byway-gateway/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "gateway_session"

// SessionFromContext extracts the gateway session from context
func SessionFromContext(ctx context.Context) *models.Session {
	sess, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

// ContextWithSession adds the gateway session to context
func ContextWithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
