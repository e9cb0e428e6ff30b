// Package inprocess provides in-memory implementations of the product,
// recommendation and review backends. They follow the same contract as the
// HTTP backends (validation messages, idempotent deletes) and can inject
// latency and failures.
package inprocess

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/xenking/product-composite/internal/domain/apierr"
)

// Options tunes an in-process backend.
type Options struct {
	// Address is reported as ServiceAddress on every returned record.
	Address string
	// Latency delays every call. The delay honours context cancellation.
	Latency time.Duration
	// Fail is returned by every call instead of touching the store.
	Fail error
}

type backend struct {
	opts  Options
	calls atomic.Int64
}

// Calls reports how many calls reached the backend.
func (b *backend) Calls() int {
	return int(b.calls.Load())
}

func (b *backend) enter(ctx context.Context, path string) error {
	b.calls.Add(1)

	if b.opts.Latency > 0 {
		timer := time.NewTimer(b.opts.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return apierr.Wrap(ctx.Err(), path)
		case <-timer.C:
		}
	}
	if b.opts.Fail != nil {
		return b.opts.Fail
	}
	return nil
}

func at(e *apierr.Error, path string) *apierr.Error {
	e.Path = path
	return e
}
