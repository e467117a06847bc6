// Package server bridges browser drag events to Go drag sources over a
// WebSocket.
//
// The browser shim forwards native click and drag events as binary frames
// (see pkg/protocol). Go owns the element tree: every connection gets a
// Session with its own Document, Scope, Channel and event loop, and the
// MountFunc attaches drag sources and drop zones to it. Element changes
// made while handling an event are sent back as a patches frame.
//
// # Routes
//
//   - GET {server.path}: WebSocket upgrade (default /dnd)
//   - GET {metrics.path}: Prometheus metrics when metrics.enabled
//   - GET /healthz: liveness probe
//
// # Event Processing
//
// When a client sends an event:
//  1. The read loop decodes the event frame
//  2. Events over the session's rate limit are answered with a RateLimited
//     error and dropped
//  3. A turn is posted to the session loop
//  4. The target element is found by HID and the event is dispatched
//  5. Deferred work (such as the dragging-source class) runs as later turns
//  6. After every turn the scope is digested and pending changes are sent
//
// Browsers only expose drag data to script synchronously, so the server
// keeps the DataTransfer filled at dragstart and reuses it for the later
// events of the same drag.
//
// Reload swaps the drag and rate limit settings for sessions opened
// afterwards; cmd/dndd wires it to config.Watch.
//
// # Usage
//
//	cfg := config.New()
//	srv := server.New(cfg, server.WithMount(func(m *server.Mount) error {
//	    card := m.Document.CreateElement("li")
//	    card.SetAttr(dnd.AttrDraggable, "card")
//	    m.Surface.Draggable(card, m.Scope)
//	    return nil
//	}))
//	err := srv.Run(ctx)
package server
