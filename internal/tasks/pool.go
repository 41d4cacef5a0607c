// Package tasks runs work dispatched from the request path out-of-line: an
// in-process pool of workers draining a buffered job channel. Enqueueing is
// fire-and-forget; jobs run at most once and are not retried.
package tasks

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobQueueSize = 64

type Job func()

type Pool struct {
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
	once    sync.Once
	logger  *zap.SugaredLogger
}

func NewPool(lc fx.Lifecycle, workers int, logger *zap.SugaredLogger) *Pool {
	pool := &Pool{
		jobs:    make(chan Job, jobQueueSize),
		workers: workers,
		logger:  logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping worker pool.")
			pool.Stop()
			return nil
		},
	})

	return pool
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// Stop closes the queue and waits for in-flight and queued jobs to drain.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// Enqueue hands a job to the pool without blocking the caller. When the
// queue is full the job is dropped and logged; callers treat delivery as
// best-effort.
func (p *Pool) Enqueue(job Job) {
	select {
	case p.jobs <- job:
	default:
		p.logger.Error("job queue full, dropping job")
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Errorw("job panicked", "panic", r)
				}
			}()
			job()
		}()
	}
}
