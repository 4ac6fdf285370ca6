// Package workerpool runs tasks on a bounded number of goroutines and
// collects their errors.
//
//	pool := workerpool.New(ctx, 4)
//	for _, p := range paths {
//	    p := p
//	    pool.Submit(func(ctx context.Context) error { return copy(ctx, p) })
//	}
//	err := pool.Wait()
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned by Submit after Wait has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool. The zero value is not usable; call New.
type Pool struct {
	ctx  context.Context
	sem  chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error

	closed bool
}

// New creates a Pool running at most size tasks at once. Tasks receive ctx.
func New(ctx context.Context, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{ctx: ctx, sem: make(chan struct{}, size)}
}

// Submit blocks until a worker slot is free, then runs task on its own
// goroutine. It returns ctx's error when the context ends first.
func (p *Pool) Submit(task func(ctx context.Context) error) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPoolClosed
	}

	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.sem <- struct{}{}:
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		if err := safeRun(p.ctx, task); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
	}()
	return nil
}

// Wait stops accepting tasks, waits for the running ones and returns their
// errors joined together.
func (p *Pool) Wait() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

// safeRun turns a panicking task into an error.
func safeRun(ctx context.Context, task func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("workerpool: task panicked: %v", rec)
		}
	}()
	return task(ctx)
}
