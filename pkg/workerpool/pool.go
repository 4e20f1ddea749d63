// Package workerpool runs tasks on a bounded number of goroutines.
//
//	pool := workerpool.New(ctx, 8)
//	for _, id := range ids {
//		id := id
//		pool.Go(func(ctx context.Context) error { return recompute(ctx, id) })
//	}
//	err := pool.Wait()
//
// The first task error cancels the pool context; Wait returns that error.
package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// Pool is a bounded goroutine group.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	slots  chan struct{}
	wg     sync.WaitGroup

	once sync.Once
	err  error
}

// New returns a pool running at most size tasks at a time.
func New(ctx context.Context, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{ctx: ctx, cancel: cancel, slots: make(chan struct{}, size)}
}

// Go blocks until a slot is free, then runs task in its own goroutine.
// Once the pool context is done, tasks are dropped.
func (p *Pool) Go(task func(ctx context.Context) error) {
	select {
	case <-p.ctx.Done():
		p.fail(p.ctx.Err())
		return
	case p.slots <- struct{}{}:
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				p.fail(fmt.Errorf("workerpool: task panicked: %v", rec))
			}
			<-p.slots
			p.wg.Done()
		}()
		if err := task(p.ctx); err != nil {
			p.fail(err)
		}
	}()
}

// Wait blocks until every started task has returned.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.cancel()
	return p.err
}

func (p *Pool) fail(err error) {
	p.once.Do(func() {
		p.err = err
		p.cancel()
	})
}
