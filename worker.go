package arbor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// Result is the outcome of one layout request.
type Result struct {
	// Seq is the sequence number Request returned.
	Seq      uint64
	Layout   string
	Commands []DrawCommand
	Err      error
	Elapsed  time.Duration
}

// Worker runs layouts off the interactive goroutine with last-requested-wins
// semantics. Each Request starts one goroutine and supersedes every earlier
// request: a result whose sequence number is not the latest issued is
// dropped when it arrives, whatever order the goroutines finish in.
//
// Request, Poll, Await and Close are safe for concurrent use.
type Worker struct {
	mu       sync.Mutex
	latest   uint64
	result   *Result
	consumed bool
	ready    chan struct{} // closed when the latest request resolves or is superseded
	closed   bool
	stale    int
	inflight sync.WaitGroup
}

// NewWorker returns an idle worker.
func NewWorker() *Worker {
	return &Worker{ready: make(chan struct{})}
}

// Request lays out a snapshot of t with l and p on a new goroutine and
// returns the request's sequence number. The snapshot isolates the layout
// from later selection changes on t.
func (w *Worker) Request(t *Tree, l Layout, p *Palette) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrWorkerClosed
	}
	w.latest++
	seq := w.latest
	// Wake waiters on the superseded request so they re-check.
	close(w.ready)
	w.ready = make(chan struct{})

	var snap *Tree
	if t != nil {
		snap = t.Clone()
	}
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		w.deliver(runLayout(seq, snap, l, p))
	}()
	return seq, nil
}

// runLayout runs one layout, turning a panic into an error.
func runLayout(seq uint64, t *Tree, l Layout, p *Palette) (res Result) {
	res.Seq = seq
	if l == nil {
		res.Err = fmt.Errorf("arbor: request %d: nil layout", seq)
		return res
	}
	res.Layout = l.Name()
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Commands = nil
			res.Err = &LayoutError{Layout: res.Layout, Node: NoNode, Err: fmt.Errorf("panic: %v\n%s", r, debug.Stack())}
		}
	}()
	res.Commands, res.Err = l.Layout(t, p)
	return res
}

func (w *Worker) deliver(res Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if res.Seq != w.latest {
		w.stale++
		Logger().Warn("dropping stale layout result", "seq", res.Seq, "latest", w.latest, "layout", res.Layout)
		return
	}
	if res.Err != nil {
		Logger().Warn("layout failed", "seq", res.Seq, "layout", res.Layout, "err", res.Err)
	} else {
		Logger().Debug("layout resolved", "seq", res.Seq, "layout", res.Layout, "commands", len(res.Commands), "elapsed", res.Elapsed)
	}
	w.result = &res
	w.consumed = false
	if !w.closed {
		close(w.ready)
		w.ready = make(chan struct{})
	}
}

// Poll returns the result of the latest request if it has resolved and has
// not been returned before. It never blocks.
func (w *Worker) Poll() (Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil || w.consumed || w.result.Seq != w.latest {
		return Result{}, false
	}
	w.consumed = true
	return *w.result, true
}

// Await blocks until the latest request resolves and returns its result,
// even if Poll already returned it. Requests issued while waiting extend the
// wait to the newest one.
func (w *Worker) Await(ctx context.Context) (Result, error) {
	for {
		w.mu.Lock()
		if w.latest == 0 {
			w.mu.Unlock()
			return Result{}, fmt.Errorf("arbor: await: no layout requested")
		}
		if w.result != nil && w.result.Seq == w.latest {
			res := *w.result
			w.consumed = true
			w.mu.Unlock()
			return res, nil
		}
		if w.closed {
			w.mu.Unlock()
			return Result{}, ErrWorkerClosed
		}
		ready := w.ready
		w.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}

// Latest returns the sequence number of the newest request, or 0.
func (w *Worker) Latest() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

// Stale returns how many superseded results have been dropped.
func (w *Worker) Stale() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stale
}

// Close stops accepting requests and wakes any Await. Layouts already
// running finish in the background; Wait blocks until they have.
func (w *Worker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.ready)
}

// Wait blocks until every started layout goroutine has returned.
func (w *Worker) Wait() {
	w.inflight.Wait()
}
