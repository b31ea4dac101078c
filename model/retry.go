package model

import (
	"context"
	"fmt"
	"time"
)

// RetryOptions bounds the retry behavior of a wrapped model. Attempts counts
// total tries including the first; Backoff is the fixed delay between tries.
type RetryOptions struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryOptions mirrors the externally configured policy of the
// pipeline: six attempts with a one second delay.
var DefaultRetryOptions = RetryOptions{Attempts: 6, Backoff: time.Second}

// retryModel decorates a Model with a bounded retry policy. Each attempt is
// buffered until the inner stream completes; on failure the buffer is
// discarded and the attempt repeated after the fixed backoff. Exhaustion
// surfaces the last error, which terminates the run.
type retryModel struct {
	inner Model
	opts  RetryOptions
}

// WithRetry wraps m so transient Generate failures are retried with a fixed
// backoff. attempts < 1 is treated as a single attempt.
func WithRetry(m Model, optFns ...func(o *RetryOptions)) Model {
	opts := DefaultRetryOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	return &retryModel{inner: m, opts: opts}
}

// Generate implements Model.
func (r *retryModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var lastErr error

		for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
			responses, err := r.collect(ctx, req)
			if err == nil {
				for _, resp := range responses {
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case out <- resp:
					}
				}
				return
			}

			lastErr = err

			if ctx.Err() != nil {
				errCh <- ctx.Err()
				return
			}

			if attempt < r.opts.Attempts {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case <-time.After(r.opts.Backoff):
				}
			}
		}

		errCh <- fmt.Errorf("model call failed after %d attempts: %w", r.opts.Attempts, lastErr)
	}()

	return out, errCh
}

// collect drains one inner attempt, buffering responses until the stream
// closes so a mid-stream failure never leaks half a turn downstream.
func (r *retryModel) collect(ctx context.Context, req Request) ([]Response, error) {
	respCh, errCh := r.inner.Generate(ctx, req)

	var buffered []Response

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			buffered = append(buffered, resp)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}

	return buffered, nil
}

// Info implements the Model interface delegating to the wrapped model.
func (r *retryModel) Info() Info { return r.inner.Info() }
