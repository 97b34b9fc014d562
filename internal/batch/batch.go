package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// returned (or wrapped) by fn for items that needed no work; counted as Skipped
var ErrSkip = errors.New("batch: item skipped")

// runs work in fixed-size concurrent chunks, resting between chunks
type Runner struct {
	size  int
	pause time.Duration
}

// per-item failure; Index points into the slice passed to Each
type ItemError struct {
	Index int
	Err   error
}

type Result struct {
	Succeeded int
	Failed    int

	// items that returned ErrSkip plus items never run because the context ended
	Skipped int
	Errors  []ItemError

	// set when the context ended before every chunk was issued
	Err error
}

// creates a runner issuing at most size calls at once, waiting pause after each chunk finishes
func New(size int, pause time.Duration) *Runner {
	if size < 1 {
		size = 1
	}

	if pause < 0 {
		pause = 0
	}

	return &Runner{size: size, pause: pause}
}

func (r *Runner) Size() int {
	return r.size
}

func (r *Runner) Pause() time.Duration {
	return r.pause
}

// blocks for one full pause measured from now, or until ctx ends
func (r *Runner) rest(ctx context.Context) error {
	if r.pause == 0 {
		return ctx.Err()
	}

	limiter := rate.NewLimiter(rate.Every(r.pause), 1)
	limiter.Allow() // drain the initial token so Wait covers the whole pause

	return limiter.Wait(ctx)
}

// applies fn to every item. a failing item never cancels its siblings or later chunks;
// the chunk is awaited as a whole, then the runner rests before the next one starts.
func Each[T any](ctx context.Context, r *Runner, items []T, fn func(context.Context, T) error) Result {
	var (
		res Result
		mu  sync.Mutex
	)

	for start := 0; start < len(items); start += r.size {
		err := ctx.Err()
		if start > 0 {
			err = r.rest(ctx)
		}

		if err != nil {
			res.Err = err
			res.Skipped += len(items) - start
			break
		}

		end := min(start+r.size, len(items))

		var g errgroup.Group

		for i := start; i < end; i++ {
			item := items[i]

			g.Go(func() error {
				err := fn(ctx, item)

				mu.Lock()
				defer mu.Unlock()

				switch {
				case errors.Is(err, ErrSkip):
					res.Skipped++
					return nil
				case err != nil:
					res.Failed++
					res.Errors = append(res.Errors, ItemError{Index: i, Err: err})
					return nil
				}

				res.Succeeded++
				return nil
			})
		}

		_ = g.Wait() // item errors are recorded, never returned
	}

	return res
}
