package fetcher

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests. A single Limiter instance is shared by
// every worker so the aggregate request rate stays bounded; swapping in an
// adaptive implementation does not touch fetch semantics.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewIntervalLimiter returns a token bucket admitting at most one request
// per interval, with no burst beyond the first token.
func NewIntervalLimiter(interval time.Duration) Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}
