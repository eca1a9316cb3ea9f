package apperror

import (
	"context"
	"time"
)

// RetryTransient retries fn up to maxAttempts times with exponential backoff
// (base, 2*base, 4*base, ...) as long as fn's error carries Kind TransientIO.
// Any other error, or the final attempt's error, is returned immediately.
func RetryTransient(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !Is(err, TransientIO) {
			return err
		}
		if attempt == maxAttempts-1 {
			return err
		}

		backoff := base << attempt
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
