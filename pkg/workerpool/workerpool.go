package workerpool

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Submit once the pool has been closed.
var ErrClosed = errors.New("workerpool: pool is closed")

// Task is a unit of work for the pool.
// Fn must be safe for concurrent execution.
// ResultC receives the outcome when set; it should be buffered.
type Task struct {
	Fn      func() (any, error)
	ResultC chan Result
}

type Result struct {
	Value any
	Err   error
}

type WorkerPool struct {
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool starts workerCount workers sharing a queue of queueSize tasks.
func NewWorkerPool(workerCount int, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	wp := &WorkerPool{
		tasks:  make(chan Task, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	wp.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.ctx.Done():
			return
		case task := <-wp.tasks:
			res, err := task.Fn()
			if task.ResultC != nil {
				task.ResultC <- Result{Value: res, Err: err}
			}
		}
	}
}

// Submit queues a task, blocking while the queue is full. It gives up when
// ctx is done or the pool is closed.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) error {
	if wp.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.ctx.Done():
		return ErrClosed
	case wp.tasks <- task:
		return nil
	}
}

// Close stops the workers and waits for running tasks to return.
// Tasks still queued are dropped.
func (wp *WorkerPool) Close() {
	wp.cancel()
	wp.wg.Wait()
}
