// Package worker provides a small generic pool for detached best-effort
// jobs. Failures are observed through the results channel (typically logged)
// and never reach the request that triggered the job.
package worker

// Job is a unit of detached work returning a result of type T.
type Job[T any] func() T

// Result pairs a job's output with the id it was submitted under.
type Result[T any] struct {
	JobID  string
	Output T
}

type jobWrapper[T any] struct {
	id string
	fn Job[T]
}

// Pool runs submitted jobs on a fixed set of workers.
type Pool[T any] struct {
	jobs    chan jobWrapper[T]
	results chan Result[T]
}

// NewPool starts workerCount workers reading from a buffer of bufferSize
// pending jobs.
func NewPool[T any](workerCount, bufferSize int) *Pool[T] {
	p := &Pool[T]{
		jobs:    make(chan jobWrapper[T], bufferSize),
		results: make(chan Result[T], bufferSize),
	}
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool[T]) worker() {
	for job := range p.jobs {
		p.results <- Result[T]{
			JobID:  job.id,
			Output: job.fn(),
		}
	}
}

// Submit queues a job, blocking when the buffer is full.
func (p *Pool[T]) Submit(id string, fn Job[T]) {
	p.jobs <- jobWrapper[T]{id: id, fn: fn}
}

// TrySubmit queues a job without blocking. It reports false when the buffer
// is full and the job was dropped; best-effort callers log and move on.
func (p *Pool[T]) TrySubmit(id string, fn Job[T]) bool {
	select {
	case p.jobs <- jobWrapper[T]{id: id, fn: fn}:
		return true
	default:
		return false
	}
}

// Results exposes completed job outputs.
func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}
