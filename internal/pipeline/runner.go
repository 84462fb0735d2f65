package pipeline

import (
	"sync"

	"github.com/linkhoard/linkhoard/internal/model"
)

// Request is one pipeline invocation handed to a Runner.
type Request struct {
	Bookmarks []model.Bookmark
	Rules     []model.Rule
	Params    Params
}

// Runner computes pipeline passes off the caller's control flow. Submissions
// supersede each other: if a newer request arrives while one is still
// queued, the queued one is dropped, so the newest inputs always produce the
// last observed result. There is at most one pass in flight.
type Runner struct {
	proc     *Processor
	onResult func(Result)

	mu      sync.Mutex
	pending *Request
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewRunner starts a Runner delivering results to onResult from the worker
// goroutine. Callers serialize their own result handling.
func NewRunner(proc *Processor, onResult func(Result)) *Runner {
	r := &Runner{
		proc:     proc,
		onResult: onResult,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r
}

// Submit queues a request, replacing any not-yet-started one.
func (r *Runner) Submit(req Request) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending = &req
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker after any in-flight pass finishes.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	<-r.done
}

func (r *Runner) loop() {
	defer close(r.done)

	for {
		<-r.wake

		for {
			r.mu.Lock()
			req := r.pending
			r.pending = nil
			closed := r.closed
			r.mu.Unlock()

			if req == nil {
				if closed {
					return
				}
				break
			}

			result := r.proc.Process(req.Bookmarks, req.Rules, req.Params)
			r.onResult(result)
		}
	}
}
