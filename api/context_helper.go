package api

import (
	"context"
	"time"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// QueryTimeout is the default timeout for database queries. serve overrides it from
// QUERY_TIMEOUT.
var QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type contextKey int

const (
	sessionKey contextKey = iota
	requestIDKey
)

// WithSession stores the authenticated session on ctx
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by the auth middleware, or nil for an anonymous
// request
func SessionFrom(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}

// WithRequestID stores the request id on ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id, or the empty string
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
