package sched

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/vango-dev/dnd/internal/errors"
)

// ErrClosed is returned by Post after the loop has stopped.
var ErrClosed = errors.New("E004")

// Loop serializes turns on a single goroutine. Deferred tasks run after the
// turn that scheduled them and before the next posted turn.
type Loop struct {
	mu       sync.Mutex
	posted   []func()
	deferred []func()
	closed   bool

	wake chan struct{}
	done chan struct{}

	afterTurn func()
	logger    *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithAfterTurn sets a hook that runs after every turn, deferred or posted.
func WithAfterTurn(fn func()) LoopOption {
	return func(l *Loop) {
		l.afterTurn = fn
	}
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "sched"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn as a new turn.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.signal()
	return nil
}

// Defer queues fn to run once the current turn has returned.
// Work deferred after Close is dropped.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.deferred = append(l.deferred, fn)
	l.mu.Unlock()
	l.signal()
}

// Close stops the loop. Queued work that has not started is dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.posted = nil
	l.deferred = nil
	l.mu.Unlock()
	close(l.done)
}

// Done is closed when the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes turns until ctx is canceled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		fn, ok := l.next()
		if !ok {
			select {
			case <-l.wake:
				continue
			case <-l.done:
				return nil
			case <-ctx.Done():
				l.Close()
				return ctx.Err()
			}
		}
		l.turn(fn)
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, false
	}
	if len(l.deferred) > 0 {
		fn := l.deferred[0]
		l.deferred = l.deferred[1:]
		return fn, true
	}
	if len(l.posted) > 0 {
		fn := l.posted[0]
		l.posted = l.posted[1:]
		return fn, true
	}
	return nil, false
}

func (l *Loop) turn(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("turn panicked", "panic", r, "stack", string(debug.Stack()))
		}
		if l.afterTurn != nil {
			l.afterTurn()
		}
	}()
	fn()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
