package service

import (
	"context"

	"payroll-bot/pkg/workerpool"
)

// AsyncService runs independent jobs on the shared worker pool.
type AsyncService struct {
	Pool *workerpool.WorkerPool
}

func NewAsyncService(pool *workerpool.WorkerPool) *AsyncService {
	return &AsyncService{Pool: pool}
}

// RunAll fans fns out over the pool and returns their results in input order.
// A job that cannot be queued reports the submit error as its result.
func (a *AsyncService) RunAll(ctx context.Context, fns []func() (any, error)) []workerpool.Result {
	chans := make([]chan workerpool.Result, len(fns))
	for i, fn := range fns {
		chans[i] = make(chan workerpool.Result, 1)
		if err := a.Pool.Submit(ctx, workerpool.Task{Fn: fn, ResultC: chans[i]}); err != nil {
			chans[i] <- workerpool.Result{Err: err}
		}
	}
	results := make([]workerpool.Result, len(fns))
	for i, ch := range chans {
		select {
		case results[i] = <-ch:
		case <-ctx.Done():
			results[i] = workerpool.Result{Err: ctx.Err()}
		}
	}
	return results
}
