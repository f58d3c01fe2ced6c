package worker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// executeWithRetry runs one worker pass, retrying a fatal run up to
// maxRetries additional times with a constant delay between attempts.
// Context cancellation stops the retry loop immediately.
func executeWithRetry(ctx context.Context, w Worker, maxRetries int, retryDelay time.Duration) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryDelay), uint64(maxRetries)),
		ctx,
	)

	return backoff.Retry(func() error {
		return w.Run(ctx)
	}, policy)
}
