// Package parallel provides a bounded worker pool for running
// independent solver jobs concurrently, such as a batch of puzzle
// files handed to the CLI. Each job is a complete solve with its own
// graph and store; the search inside one solve stays single-threaded,
// only whole jobs run side by side.
package parallel

import (
	"runtime"
	"sync"
)

// Pool manages a fixed set of worker goroutines draining a task
// queue. The buffered queue applies backpressure: Submit blocks once
// the queue is full, so a huge batch cannot pile up in memory.
type Pool struct {
	tasks    chan func()
	workerWg sync.WaitGroup
	taskWg   sync.WaitGroup
	once     sync.Once
}

// New creates a pool with the given number of workers. Zero or
// negative means one worker per CPU core.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		tasks: make(chan func(), workers*2),
	}
	for i := 0; i < workers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for task := range p.tasks {
		task()
		p.taskWg.Done()
	}
}

// Submit queues a job for execution. Blocks while the queue is full.
// Submitting after Wait is a bug and panics on the closed channel.
func (p *Pool) Submit(task func()) {
	p.taskWg.Add(1)
	p.tasks <- task
}

// Wait blocks until every submitted job has finished, then shuts the
// workers down. The pool cannot be reused afterwards.
func (p *Pool) Wait() {
	p.taskWg.Wait()
	p.once.Do(func() {
		close(p.tasks)
		p.workerWg.Wait()
	})
}
