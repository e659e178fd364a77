package retry

import (
	"context"
	"math/rand"
	"time"
)

// WithRetry ejecuta fn hasta attempts veces. Solo reintenta cuando
// shouldRetry(err) es true; con attempts <= 1 es un único intento.
func WithRetry(
	ctx context.Context,
	attempts int,
	baseDelay time.Duration,
	shouldRetry func(error) bool,
	fn func() error,
) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error

	for i := 1; i <= attempts; i++ {
		// Verificar si el context expiró
		select {
		case <-ctx.Done():
			if err != nil {
				return err
			}
			return ctx.Err()
		default:
		}

		err = fn()
		if err == nil {
			return nil
		}

		if i == attempts || (shouldRetry != nil && !shouldRetry(err)) {
			break
		}

		if err := sleep(ctx, backoff(baseDelay, i)); err != nil {
			return err
		}
	}

	return err
}

// backoff exponencial con jitter
func backoff(baseDelay time.Duration, attempt int) time.Duration {
	if baseDelay <= 0 {
		return 0
	}
	delay := baseDelay * time.Duration(1<<uint(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(baseDelay)))
	return delay + jitter
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
