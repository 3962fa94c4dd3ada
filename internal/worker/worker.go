// Package worker bounds how many heavy jobs run at once.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
)

// Pool is a counting semaphore with panic isolation. Waiting for a slot
// honours the caller's context; a job that has started is never cancelled
// by it.
type Pool struct {
	sem    chan struct{}
	closed chan struct{}
	logger *logger.Logger
	wg     sync.WaitGroup
	active atomic.Int32
	mu     sync.Mutex
	done   bool
}

func NewPool(size int, log *logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.Default()
	}
	return &Pool{
		sem:    make(chan struct{}, size),
		closed: make(chan struct{}),
		logger: log.WithComponent("worker"),
	}
}

// Do blocks until a slot is free, then runs fn with a context detached
// from ctx's cancellation. It returns ctx.Err() if the wait is abandoned
// and domain.ErrBusy once the pool is stopped.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return domain.ErrBusy
	}
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return domain.ErrBusy
	}
	defer func() { <-p.sem }()

	p.active.Add(1)
	defer p.active.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic in job", "panic", r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return fn(context.WithoutCancel(ctx))
}

// Active returns the number of running jobs.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return cap(p.sem)
}

// Stop rejects new work and waits for running jobs until ctx expires.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.done {
		p.done = true
		close(p.closed)
	}
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool", "active", p.Active())

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
