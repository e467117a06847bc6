package dndtest

import (
	"github.com/vango-dev/dnd/pkg/dom"
)

// Drag is a simulated native drag session. All events of one drag share a
// single DataTransfer, as they do in browsers.
type Drag struct {
	h      *Harness
	source *dom.Element
	dt     *dom.DataTransfer

	// Start is the dispatched dragstart event.
	Start *dom.Event
}

// DragOption configures a simulated drag.
type DragOption func(*dragConfig)

type dragConfig struct {
	target            *dom.Element
	allowSetDragImage bool
}

// From starts the drag on target (e.g. a handle) instead of the source.
func From(target *dom.Element) DragOption {
	return func(c *dragConfig) {
		c.target = target
	}
}

// AllowSetDragImage simulates a client that supports custom drag images.
func AllowSetDragImage() DragOption {
	return func(c *dragConfig) {
		c.allowSetDragImage = true
	}
}

// Drag dispatches a dragstart on source and returns the session.
func (h *Harness) Drag(source *dom.Element, opts ...DragOption) *Drag {
	cfg := dragConfig{target: source}
	for _, opt := range opts {
		opt(&cfg)
	}
	dt := dom.NewDataTransfer()
	dt.AllowSetDragImage = cfg.allowSetDragImage

	d := &Drag{h: h, source: source, dt: dt}
	d.Start = h.Fire(dom.EventDragStart, cfg.target, dt)
	return d
}

// DataTransfer returns the shared data transfer.
func (d *Drag) DataTransfer() *dom.DataTransfer {
	return d.dt
}

// Over dispatches a dragover on target.
func (d *Drag) Over(target *dom.Element) *dom.Event {
	return d.h.Fire(dom.EventDragOver, target, d.dt)
}

// Drop dispatches a drop on target with the given negotiated effect.
func (d *Drag) Drop(target *dom.Element, effect string) *dom.Event {
	d.dt.DropEffect = effect
	return d.h.Fire(dom.EventDrop, target, d.dt)
}

// End dispatches the dragend on the source.
func (d *Drag) End() *dom.Event {
	return d.h.Fire(dom.EventDragEnd, d.source, d.dt)
}
