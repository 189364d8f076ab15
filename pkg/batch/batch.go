package batch

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Process fans items out in fixed-size chunks, awaiting each chunk fully
// before starting the next. This bounds concurrent outbound connections and
// keeps error attribution per chunk simple. Results preserve input order; the
// first error cancels the remaining chunks.
func Process[T, R any](ctx context.Context, items []T, chunkSize int, logger *zap.Logger, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]R, len(items))

	for start := 0; start < len(items); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			chunkErr error
		)
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := fn(ctx, items[i])
				if err != nil {
					mu.Lock()
					if chunkErr == nil {
						chunkErr = err
					}
					mu.Unlock()
					return
				}
				results[i] = res
			}(i)
		}
		wg.Wait()

		if chunkErr != nil {
			logger.Sugar().Errorw("batch chunk failed", "start", start, "end", end, "error", chunkErr)
			return nil, chunkErr
		}
	}

	return results, nil
}
