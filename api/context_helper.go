package api

import (
	"context"
	"time"
)

// QueryTimeout bounds every database round trip made while serving a request
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a context from the request context that expires after QueryTimeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, QueryTimeout)
}
