package arbor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// gatedLayout blocks in Layout until its gate is closed.
type gatedLayout struct {
	name    string
	gate    chan struct{}
	started chan struct{}
	cmds    []DrawCommand
}

func newGatedLayout(name string, n int) *gatedLayout {
	l := &gatedLayout{name: name, gate: make(chan struct{}), started: make(chan struct{}, 1)}
	for i := 0; i < n; i++ {
		l.cmds = append(l.cmds, NewAAQuad(NodeID(i), StyleFill, 0, 0, 1, 1, ColorWhite, ColorTransparent))
	}
	return l
}

func (l *gatedLayout) Name() string          { return l.name }
func (l *gatedLayout) Options() []OptionSpec { return nil }
func (l *gatedLayout) Layout(t *Tree, p *Palette) ([]DrawCommand, error) {
	l.started <- struct{}{}
	<-l.gate
	return l.cmds, nil
}

type panicLayout struct{}

func (panicLayout) Name() string          { return "panic" }
func (panicLayout) Options() []OptionSpec { return nil }
func (panicLayout) Layout(t *Tree, p *Palette) ([]DrawCommand, error) {
	panic("boom")
}

// mutatingLayout records the selection it observed.
type mutatingLayout struct{ saw atomic.Int64 }

func (*mutatingLayout) Name() string          { return "mutating" }
func (*mutatingLayout) Options() []OptionSpec { return nil }
func (l *mutatingLayout) Layout(t *Tree, p *Palette) ([]DrawCommand, error) {
	time.Sleep(10 * time.Millisecond)
	if s := t.Selected(); s != nil {
		l.saw.Store(int64(s.ID))
	} else {
		l.saw.Store(-1)
	}
	return nil, nil
}

func awaitResult(t *testing.T, w *Worker) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := w.Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	return res
}

func TestWorkerDeliversResult(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	tree := sampleTree(t)

	seq, err := w.Request(tree, NewTreemap(true, 0), testPalette(t, tree))
	if err != nil {
		t.Fatal(err)
	}
	res := awaitResult(t, w)
	if res.Seq != seq || res.Err != nil || len(res.Commands) != tree.Len() {
		t.Fatalf("result = seq %d err %v cmds %d", res.Seq, res.Err, len(res.Commands))
	}
	if res.Layout != "Simple Tree Map" {
		t.Errorf("Layout = %q", res.Layout)
	}
	// Await consumed the result.
	if _, ok := w.Poll(); ok {
		t.Error("Poll returned a result already consumed by Await")
	}
}

func TestWorkerPollOnce(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	if _, ok := w.Poll(); ok {
		t.Fatal("Poll on idle worker returned a result")
	}
	tree := sampleTree(t)
	if _, err := w.Request(tree, NewTreemap(false, 0), testPalette(t, tree)); err != nil {
		t.Fatal(err)
	}
	w.Wait()
	if _, ok := w.Poll(); !ok {
		t.Fatal("Poll after Wait returned nothing")
	}
	if _, ok := w.Poll(); ok {
		t.Error("second Poll returned the same result again")
	}
}

func TestWorkerLastRequestedWins(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	slow := newGatedLayout("slow", 1)
	fast := newGatedLayout("fast", 2)

	first, err := w.Request(nil, slow, nil)
	if err != nil {
		t.Fatal(err)
	}
	<-slow.started
	second, err := w.Request(nil, fast, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second <= first {
		t.Fatalf("sequence numbers not increasing: %d then %d", first, second)
	}
	<-fast.started

	// The newer request resolves first.
	close(fast.gate)
	res := awaitResult(t, w)
	if res.Seq != second || res.Layout != "fast" {
		t.Fatalf("got seq %d %q, want %d fast", res.Seq, res.Layout, second)
	}

	// The superseded one resolves afterwards and is dropped.
	close(slow.gate)
	w.Wait()
	if w.Stale() != 1 {
		t.Errorf("Stale = %d, want 1", w.Stale())
	}
	res = awaitResult(t, w)
	if res.Layout != "fast" {
		t.Errorf("stale result replaced the latest: %q", res.Layout)
	}
}

func TestWorkerDropsOlderEvenIfNewerFinishesLater(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	older := newGatedLayout("older", 1)
	newer := newGatedLayout("newer", 1)
	if _, err := w.Request(nil, older, nil); err != nil {
		t.Fatal(err)
	}
	<-older.started
	seq, err := w.Request(nil, newer, nil)
	if err != nil {
		t.Fatal(err)
	}
	<-newer.started

	close(older.gate)
	time.Sleep(10 * time.Millisecond)
	if _, ok := w.Poll(); ok {
		t.Fatal("superseded result was delivered")
	}
	close(newer.gate)
	if res := awaitResult(t, w); res.Seq != seq {
		t.Errorf("Seq = %d, want %d", res.Seq, seq)
	}
}

func TestWorkerRecoversPanic(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	if _, err := w.Request(nil, panicLayout{}, nil); err != nil {
		t.Fatal(err)
	}
	res := awaitResult(t, w)
	var le *LayoutError
	if !errors.As(res.Err, &le) {
		t.Fatalf("Err = %v, want *LayoutError", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "boom") {
		t.Errorf("Err = %q, want panic value", res.Err)
	}
	if res.Commands != nil {
		t.Error("panicking layout returned commands")
	}
}

func TestWorkerLayoutError(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	if _, err := w.Request(nil, Treemap{}, nil); err != nil {
		t.Fatal(err)
	}
	if res := awaitResult(t, w); !errors.Is(res.Err, ErrInvalidTree) {
		t.Errorf("Err = %v, want ErrInvalidTree", res.Err)
	}
}

func TestWorkerSnapshotsTree(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	tree := sampleTree(t)
	tree.Select(3)

	l := &mutatingLayout{}
	if _, err := w.Request(tree, l, nil); err != nil {
		t.Fatal(err)
	}
	tree.Select(2)
	awaitResult(t, w)
	if got := l.saw.Load(); got != 3 {
		t.Errorf("layout saw selection %d, want the snapshot's 3", got)
	}
}

func TestWorkerClose(t *testing.T) {
	w := NewWorker()
	gated := newGatedLayout("gated", 1)
	if _, err := w.Request(nil, gated, nil); err != nil {
		t.Fatal(err)
	}
	<-gated.started

	done := make(chan error, 1)
	go func() {
		_, err := w.Await(context.Background())
		done <- err
	}()
	w.Close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrWorkerClosed) {
			t.Errorf("Await err = %v, want ErrWorkerClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return after Close")
	}
	if _, err := w.Request(nil, gated, nil); !errors.Is(err, ErrWorkerClosed) {
		t.Errorf("Request after Close err = %v", err)
	}
	w.Close()
	close(gated.gate)
	w.Wait()
}

func TestWorkerAwaitContext(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Await(ctx); err == nil {
		t.Error("Await with nothing requested should fail")
	}

	gated := newGatedLayout("gated", 0)
	if _, err := w.Request(nil, gated, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Await err = %v, want context.Canceled", err)
	}
	close(gated.gate)
	w.Wait()
}
