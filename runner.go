package docstore

import (
	"context"
	"sync"

	"github.com/mwantia/docstore/data"
	"github.com/mwantia/docstore/log"
)

// serialRunner executes submitted jobs one at a time, in submission order.
// It is the sole correctness mechanism preventing two overlapping
// read-modify-write cycles from clobbering each other: exactly one worker
// goroutine owns the persisted document and every read and write is a job.
type serialRunner struct {
	mu     sync.Mutex
	jobs   chan job
	doneCh chan struct{}
	closed bool

	log *log.Logger
}

type job struct {
	name   string
	action func(ctx context.Context) (any, error)
	reply  chan jobResult
}

type jobResult struct {
	value any
	err   error
}

func newSerialRunner(logger *log.Logger) *serialRunner {
	r := &serialRunner{
		jobs:   make(chan job, 64),
		doneCh: make(chan struct{}),
		log:    logger,
	}

	go r.run()

	return r
}

// run is the single worker loop. FIFO order over the jobs channel gives the
// concurrency-1 guarantee.
func (r *serialRunner) run() {
	defer close(r.doneCh)

	for j := range r.jobs {
		value, err := j.action(context.Background())
		if err != nil {
			r.log.Debug("job %s failed: %v", j.name, err)
		}

		j.reply <- jobResult{value: value, err: err}
	}
}

// Submit enqueues a job and blocks until it completed. Jobs run to
// completion once started; the context is handed to the action for driver
// calls but does not cancel a queued or running job.
func (r *serialRunner) Submit(ctx context.Context, name string, action func(ctx context.Context) (any, error)) (any, error) {
	reply := make(chan jobResult, 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, data.ErrClosed
	}
	r.jobs <- job{name: name, action: action, reply: reply}
	r.mu.Unlock()

	result := <-reply
	return result.value, result.err
}

// Close stops the intake and waits for queued jobs to drain.
// Close is idempotent.
func (r *serialRunner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.doneCh
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	<-r.doneCh
}
