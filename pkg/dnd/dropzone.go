package dnd

import (
	"slices"

	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/scope"
)

// DropZone is a minimal drop target. It accepts drags carrying the surface's
// payload format and records the negotiated drop effect on the channel.
// Reordering is left to the dnd-drop callback.
type DropZone struct {
	el      *dom.Element
	scope   Scope
	surface *Surface
}

// DropZone makes el a drop target evaluated against sc.
func (s *Surface) DropZone(el *dom.Element, sc Scope) *DropZone {
	z := &DropZone{el: el, scope: sc, surface: s}
	if !el.HasAttr(AttrList) {
		el.SetAttr(AttrList, "")
	}
	el.On(dom.EventDragEnter, z.handleDragOver)
	el.On(dom.EventDragOver, z.handleDragOver)
	el.On(dom.EventDrop, z.handleDrop)
	return z
}

// Element returns the drop target element.
func (z *DropZone) Element() *dom.Element {
	return z.el
}

func (z *DropZone) accepts(dt *dom.DataTransfer) bool {
	return slices.Contains(dt.Types(), z.surface.payloadFormat)
}

func (z *DropZone) handleDragOver(ev *dom.Event) {
	if !z.accepts(ev.DataTransfer) {
		return
	}
	ev.PreventDefault()
	ev.StopPropagation()
}

func (z *DropZone) handleDrop(ev *dom.Event) {
	s := z.surface
	dt := ev.DataTransfer
	if !z.accepts(dt) {
		return
	}
	ev.PreventDefault()
	ev.StopPropagation()

	effect := negotiatedEffect(dt)
	s.Channel.Record(effect)

	item, err := s.deserialize(dt.GetData(s.payloadFormat))
	if err != nil {
		s.logger.Warn("drop payload is not decodable", "hid", z.el.HID, "error", err)
	}
	s.invoke(z.scope, z.el, AttrDrop, scope.Locals{
		LocalEvent:      ev,
		LocalItem:       item,
		LocalDropEffect: effect,
	})
}

// negotiatedEffect returns the drop effect to record. Some browsers report
// no drop effect on drop; the effect is then chosen from effectAllowed,
// preferring move.
func negotiatedEffect(dt *dom.DataTransfer) string {
	if dt.DropEffect != "" && dt.DropEffect != EffectNone {
		return dt.DropEffect
	}
	switch dt.EffectAllowed {
	case EffectCopy, EffectMove, EffectLink:
		return dt.EffectAllowed
	case "copyLink":
		return EffectCopy
	case EffectNone:
		return EffectNone
	default:
		// copyMove, linkMove, all, uninitialized or unset.
		return EffectMove
	}
}
