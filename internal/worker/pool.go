package worker

import (
	"log/slog"
	"sync"

	"github.com/asauntung/bumdes/internal/metrics"
)

type task func()

// Pool runs post-commit side effects off the request path.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
	once sync.Once
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker panic", "err", rec)
		}
	}()
	job()
}

// Submit queues f, blocking while the queue is full.
func (p *Pool) Submit(f task) {
	p.jobs <- f
	metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
}

// Stop drains queued jobs and waits for workers to exit.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
