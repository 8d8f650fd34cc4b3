package util

import (
	"context"
	"sync"
)

// Parallel runs fn over inputs with at most workerLimit goroutines. The first
// error cancels the remaining work and is returned.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}

	if workerLimit <= 0 {
		workerLimit = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan T)
	errCh := make(chan error, 1)

	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if err := fn(ctx, item); err != nil {
					select {
					case errCh <- err:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, item := range inputs {
			select {
			case <-ctx.Done():
				return
			case tasks <- item:
			}
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return ctx.Err()
	}
}

// ParallelMap is Parallel that keeps one result per input, in input order.
func ParallelMap[T, R any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	type indexed struct {
		i int
		v T
	}
	items := make([]indexed, len(inputs))
	for i, v := range inputs {
		items[i] = indexed{i, v}
	}

	out := make([]R, len(inputs))
	err := Parallel(ctx, items, workerLimit, func(ctx context.Context, it indexed) error {
		r, err := fn(ctx, it.v)
		if err != nil {
			return err
		}
		out[it.i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
