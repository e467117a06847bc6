package dnd

import (
	"strconv"
	"time"

	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/scope"
)

// Draggable is a drag source bound to one element.
type Draggable struct {
	el      *dom.Element
	scope   Scope
	surface *Surface

	session Session
	started time.Time
	unwatch func()
}

// Draggable makes el a drag source evaluated against sc. The directive
// attributes (dnd-draggable, dnd-disable-if, ...) are read from el.
func (s *Surface) Draggable(el *dom.Element, sc Scope) *Draggable {
	d := &Draggable{el: el, scope: sc, surface: s}

	if !el.HasAttr(AttrDraggable) {
		el.SetAttr(AttrDraggable, "")
	}
	el.SetAttr("draggable", "true")
	if expr, ok := el.Attr(AttrDisableIf); ok && expr != "" {
		d.unwatch = sc.Watch(expr, func(v, _ any) {
			el.SetAttr("draggable", strconv.FormatBool(!scope.Truthy(v)))
		})
	}

	el.On(dom.EventDragStart, d.handleDragStart)
	el.On(dom.EventDragEnd, d.handleDragEnd)
	el.On(dom.EventClick, d.handleClick)
	return d
}

// Element returns the source element.
func (d *Draggable) Element() *dom.Element {
	return d.el
}

// Dragging reports whether a dragstart has not yet been matched by a dragend.
func (d *Draggable) Dragging() bool {
	return d.session != 0
}

// Detach stops watching dnd-disable-if. Event handlers stay registered.
func (d *Draggable) Detach() {
	if d.unwatch != nil {
		d.unwatch()
		d.unwatch = nil
	}
}

func (d *Draggable) disabled() bool {
	return scope.Truthy(d.surface.eval(d.scope, d.el, AttrDisableIf, nil))
}

func (d *Draggable) handleDragStart(ev *dom.Event) {
	s := d.surface

	// A drag starting inside a nested drop zone belongs to that region.
	if d.insideNestedList(ev) {
		return
	}

	// Leave the event untouched so an ancestor drag source may take it.
	if d.disabled() {
		s.observer.DragAborted(d.el)
		return
	}

	ev.StopPropagation()

	dt := ev.DataTransfer
	dt.SetData(s.payloadFormat, d.payloadText())

	effect := s.effectAllowed
	if v, ok := d.el.Attr(AttrEffectAllowed); ok && v != "" {
		effect = v
	}
	dt.EffectAllowed = effect

	if d.fromHandle(ev) && dt.AllowSetDragImage {
		dt.SetDragImage(d.el, 0, 0)
	}

	d.el.AddClass(s.classes.Dragging)
	el, source := d.el, s.classes.DraggingSource
	s.scheduler.Defer(func() {
		el.AddClass(source)
	})

	d.session = s.Channel.Begin()
	d.started = s.now()
	s.observer.DragStarted(d.el)
	s.logger.Debug("drag started", "hid", d.el.HID, "session", d.session, "effectAllowed", effect)

	s.invoke(d.scope, d.el, AttrDragStart, scope.Locals{LocalEvent: ev})
}

// payloadText serializes the dnd-draggable value. Serialization failures
// leave the payload empty; the drag continues regardless.
func (d *Draggable) payloadText() string {
	s := d.surface
	if expr, _ := d.el.Attr(AttrDraggable); expr == "" {
		return ""
	}
	text, err := s.serialize(s.eval(d.scope, d.el, AttrDraggable, nil))
	if err != nil {
		s.logger.Warn("payload serialization failed", "hid", d.el.HID, "error", err)
		return ""
	}
	return text
}

// insideNestedList reports whether the event target lies in a dnd-list
// nested inside the source element.
func (d *Draggable) insideNestedList(ev *dom.Event) bool {
	if ev.Target == nil {
		return false
	}
	list := ev.Target.Closest(AttrList)
	return list != nil && list != d.el && d.el.Contains(list)
}

// fromHandle reports whether the event started on a dnd-handle inside the
// source element.
func (d *Draggable) fromHandle(ev *dom.Event) bool {
	if ev.Target == nil {
		return false
	}
	handle := ev.Target.Closest(AttrHandle)
	return handle != nil && d.el.Contains(handle)
}

func (d *Draggable) handleDragEnd(ev *dom.Event) {
	s := d.surface

	ev.StopPropagation()

	d.el.RemoveClass(s.classes.Dragging)
	el, source := d.el, s.classes.DraggingSource
	s.scheduler.Defer(func() {
		el.RemoveClass(source)
	})

	effect, _ := s.Channel.Take(d.session)
	outcome := Classify(effect)
	elapsed := time.Duration(0)
	if !d.started.IsZero() {
		elapsed = s.now().Sub(d.started)
	}
	d.session = 0
	d.started = time.Time{}

	s.logger.Debug("drag ended", "hid", d.el.HID, "effect", effect, "outcome", outcome)

	s.invoke(d.scope, d.el, AttrDragEnd, scope.Locals{
		LocalEvent:      ev,
		LocalDropEffect: outcome.DropEffect(),
	})
	s.invoke(d.scope, d.el, outcome.Attr(), scope.Locals{LocalEvent: ev})

	s.observer.DragEnded(d.el, outcome, elapsed)
}

func (d *Draggable) handleClick(ev *dom.Event) {
	if !d.el.HasAttr(AttrSelected) {
		return
	}
	ev.StopPropagation()
	d.surface.invoke(d.scope, d.el, AttrSelected, scope.Locals{LocalEvent: ev})
}
