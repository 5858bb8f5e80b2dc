// Package testutil holds helpers shared by package tests.
package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "deletionguard/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Rejected  int32
	Errors    int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Rejected + r.Errors
}

// RunConcurrent executes fn in parallel goroutines, released together, and
// buckets the results. Rate-limit, quota and block errors count as rejected.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, rejected, errs atomic.Int32
	start := make(chan struct{})

	for i := range goroutines {
		wg.Go(func() {
			<-start
			err := fn(i)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeQuotaExceeded),
				dErrors.HasCode(err, dErrors.CodeRateLimitExceeded),
				dErrors.HasCode(err, dErrors.CodeUserBlocked):
				rejected.Add(1)
			default:
				errs.Add(1)
			}
		})
	}

	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Rejected:  rejected.Load(),
		Errors:    errs.Load(),
	}
}
