package sched

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestQueueFlushOrder(t *testing.T) {
	q := NewQueue()
	var got []int

	q.Defer(func() {
		got = append(got, 1)
		q.Defer(func() { got = append(got, 3) })
	})
	q.Defer(func() { got = append(got, 2) })

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	if n := q.Flush(); n != 3 {
		t.Errorf("Flush() = %d, want 3", n)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("order = %v", got)
	}
	if q.Flush() != 0 {
		t.Error("second Flush should run nothing")
	}
}

func TestLoopDeferredRunsBeforeNextTurn(t *testing.T) {
	var mu sync.Mutex
	var got []string
	record := func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	}

	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Queue both turns before Run so the ordering is deterministic.
	_ = l.Post(func() {
		record("turn1")
		l.Defer(func() { record("deferred1") })
		record("turn1-end")
	})
	_ = l.Post(func() { record("turn2") })
	finished := make(chan struct{})
	_ = l.Post(func() { close(finished) })

	go l.Run(ctx)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not process turns")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"turn1", "turn1-end", "deferred1", "turn2"}
	if !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestLoopAfterTurnAndPanicRecovery(t *testing.T) {
	var mu sync.Mutex
	turns := 0
	l := NewLoop(WithAfterTurn(func() {
		mu.Lock()
		turns++
		mu.Unlock()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	_ = l.Post(func() { panic("boom") })
	finished := make(chan struct{})
	_ = l.Post(func() { close(finished) })

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after a panicking turn")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := turns
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("afterTurn ran %d times, want 2", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoopClose(t *testing.T) {
	l := NewLoop()
	errc := make(chan error, 1)
	go func() { errc <- l.Run(context.Background()) }()

	l.Close()
	l.Close()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() = %v, want nil after Close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	if err := l.Post(func() {}); !stderrors.Is(err, ErrClosed) {
		t.Errorf("Post after Close = %v, want ErrClosed", err)
	}
	l.Defer(func() { t.Error("deferred work ran after Close") })
}

func TestLoopContextCancel(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-l.Done():
	default:
		t.Error("Done() should be closed after cancel")
	}
}
