package usecase

import (
	"context"
	"sync"
)

// runWorkers calls fn for every input on at most workers goroutines and
// returns the results in input order. Inputs not started before ctx is done
// are handed to skipped instead.
func runWorkers[T any](ctx context.Context, workers int, inputs []string, fn func(ctx context.Context, input string) T, skipped func(input string, err error) T) []T {
	if workers <= 0 {
		workers = 1
	}
	results := make([]T, len(inputs))
	taskQueue := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range taskQueue {
				if err := ctx.Err(); err != nil {
					results[i] = skipped(inputs[i], err)
					continue
				}
				results[i] = fn(ctx, inputs[i])
			}
		}()
	}

	for i := range inputs {
		taskQueue <- i
	}
	close(taskQueue)
	wg.Wait()
	return results
}
