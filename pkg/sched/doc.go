// Package sched provides the "run after the current turn" primitive used for
// deferred visual state changes.
//
// A turn is one run-to-completion pass of an event handler. Work handed to
// Defer never runs inside the turn that scheduled it. Two schedulers are
// provided:
//
//   - Queue holds deferred work until Flush is called. Tests and the
//     simulate command use it to step through a drag one turn at a time.
//   - Loop is a single goroutine that executes posted turns one by one and
//     drains deferred work between them. The server gives each WebSocket
//     session its own Loop.
package sched
