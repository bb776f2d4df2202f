// Package workpool runs independent units of work with bounded concurrency.
package workpool

import (
	"context"
	"sync"
)

// Run calls fn for every i in [0, n) with at most limit calls in flight.
// With limit <= 1 units run one after another in ascending order.
//
// fn reports unit-level failures through its own results; a returned error is fatal:
// no new unit starts, in-flight units see a cancelled context, and Run returns that error.
// Callers store results by i, so completion order never leaks into the output.
func Run(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if limit <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		// a unit holds one token while fn runs
		tokens   = make(chan struct{}, limit)
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

dispatch:
	for i := 0; i < n; i++ {
		select {
		case tokens <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
		// select picks at random when both are ready; a cancelled context wins
		if ctx.Err() != nil {
			<-tokens
			break
		}

		wg.Add(1)
		go func(i int) {
			defer func() {
				<-tokens
				wg.Done()
			}()

			if err := fn(ctx, i); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
