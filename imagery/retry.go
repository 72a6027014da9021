package imagery

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// statusError is a non-2xx tile response
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.Code)
}

// transient reports whether a failed fetch is worth another attempt
func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// backoff is the delay before retry n (0-based), doubling from base with 25% jitter
func backoff(n int, base time.Duration) time.Duration {
	d := float64(base) * math.Pow(2, float64(n))
	d += d * 0.25 * (rand.Float64()*2 - 1)
	return time.Duration(d)
}

// withRetry runs fn up to attempts times, retrying transient errors only
func withRetry[T any](ctx context.Context, attempts int, base time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil || !transient(err) || i == attempts-1 {
			break
		}

		zap.L().Warn("imagery: retrying",
			zap.String("operation", op),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		timer := time.NewTimer(backoff(i, base))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
