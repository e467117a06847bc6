package dnd_test

import (
	"testing"

	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dndtest"
	"github.com/vango-dev/dnd/pkg/dom"
)

const simplePayload = "{hello: 'world'}"

func TestDraggableSetsDraggableAttribute(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)
	h.ExpectAttr(el, "draggable", "true")
}

func TestDisableIfIsWatched(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, "", dnd.AttrDisableIf, "disabled")
	h.ExpectAttr(el, "draggable", "true")

	h.Scope.Set("disabled", true)
	h.Digest()
	h.ExpectAttr(el, "draggable", "false")

	h.Scope.Set("disabled", false)
	h.Digest()
	h.ExpectAttr(el, "draggable", "true")
}

func TestDetachStopsWatching(t *testing.T) {
	h := dndtest.New(t)
	el := h.Element(dnd.AttrDisableIf, "disabled")
	d := h.Surface.Draggable(el, h.Scope)
	h.Digest()

	d.Detach()
	h.Scope.Set("disabled", true)
	h.Digest()
	h.ExpectAttr(el, "draggable", "true")
}

func TestDragStartSetsSerializedData(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	drag := h.Drag(el)
	data := drag.DataTransfer().Data()
	if len(data) != 1 || data["Text"] != `{"hello":"world"}` {
		t.Errorf("data = %v, want {Text: {\"hello\":\"world\"}}", data)
	}
}

func TestDragStartStopsPropagation(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	if !h.Drag(el).Start.PropagationStopped() {
		t.Error("dragstart should stop propagation")
	}
}

func TestDragStartEffectAllowed(t *testing.T) {
	tests := []struct {
		name  string
		attrs []string
		want  string
	}{
		{"default move", []string{dnd.AttrDraggable, simplePayload}, "move"},
		{"from attribute", []string{dnd.AttrDraggable, "", dnd.AttrEffectAllowed, "copyMove"}, "copyMove"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := dndtest.New(t)
			el := h.Draggable(tt.attrs...)
			if got := h.Drag(el).DataTransfer().EffectAllowed; got != tt.want {
				t.Errorf("effectAllowed = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDragStartEffectAllowedFromSurface(t *testing.T) {
	h := dndtest.New(t, dnd.WithEffectAllowed("copy"))
	el := h.Draggable(dnd.AttrDraggable, simplePayload)
	if got := h.Drag(el).DataTransfer().EffectAllowed; got != "copy" {
		t.Errorf("effectAllowed = %q, want copy", got)
	}
}

func TestDragStartAddsClasses(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	h.Drag(el)
	h.ExpectClasses(el, "dragging")

	h.Flush()
	h.ExpectClasses(el, "dragging", "dragging-source")
}

func TestDragStartCustomClasses(t *testing.T) {
	h := dndtest.New(t, dnd.WithClasses(dnd.Classes{Dragging: "dndDragging", DraggingSource: "dndDraggingSource"}))
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	drag := h.Drag(el)
	h.Flush()
	h.ExpectClasses(el, "dndDragging", "dndDraggingSource")

	drag.End()
	h.Flush()
	h.ExpectClasses(el)
}

func TestDragStartInvokesCallback(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, "", dnd.AttrDragStart, "ev = event")

	drag := h.Drag(el)
	ev, _ := h.Scope.Get("ev")
	if ev != drag.Start {
		t.Errorf("ev = %v, want the dragstart event", ev)
	}
}

func TestDragStartDisabled(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload, dnd.AttrDisableIf, "true")
	h.ExpectAttr(el, "draggable", "false")

	drag := h.Drag(el)
	start := drag.Start
	if !start.ReturnValue() || start.DefaultPrevented() {
		t.Error("disabled dragstart should not prevent default")
	}
	if start.PropagationStopped() {
		t.Error("disabled dragstart should not stop propagation")
	}
	if len(drag.DataTransfer().Types()) != 0 {
		t.Errorf("disabled dragstart set data: %v", drag.DataTransfer().Data())
	}
	h.Flush()
	h.ExpectClasses(el)
}

func TestDisabledChildBubblesToAncestor(t *testing.T) {
	h := dndtest.New(t)
	parent := h.Draggable(dnd.AttrDraggable, "'parent'")
	child := h.Draggable(dnd.AttrDraggable, "'child'", dnd.AttrDisableIf, "true")
	parent.AppendChild(child)

	drag := h.Drag(child)
	if got := drag.DataTransfer().GetData("Text"); got != `"parent"` {
		t.Errorf("payload = %q, want the parent's", got)
	}
	h.ExpectClasses(parent, "dragging")
	h.ExpectClasses(child)
}

func TestNestedDraggableWins(t *testing.T) {
	h := dndtest.New(t)
	parent := h.Draggable(dnd.AttrDraggable, "'parent'")
	child := h.Draggable(dnd.AttrDraggable, "'child'")
	parent.AppendChild(child)

	drag := h.Drag(child)
	if got := drag.DataTransfer().GetData("Text"); got != `"child"` {
		t.Errorf("payload = %q, want the child's", got)
	}
	h.ExpectClasses(parent)
}

func TestDragStartInsideNestedListIsIgnored(t *testing.T) {
	h := dndtest.New(t)
	parent := h.Draggable(dnd.AttrDraggable, "'parent'")
	list := h.DropZone()
	link := h.Element()
	parent.AppendChild(list)
	list.AppendChild(link)

	drag := h.Drag(parent, dndtest.From(link))
	if drag.Start.PropagationStopped() {
		t.Error("dragstart inside a nested list should be left alone")
	}
	if types := drag.DataTransfer().Types(); len(types) != 0 {
		t.Errorf("payload set for nested list drag: %v", types)
	}
	h.Flush()
	h.ExpectClasses(parent)
}

func TestDragStartInsideOwnListStarts(t *testing.T) {
	h := dndtest.New(t)
	parent := h.Draggable(dnd.AttrDraggable, "'parent'", dnd.AttrList, "")
	child := h.Element()
	parent.AppendChild(child)

	drag := h.Drag(parent, dndtest.From(child))
	if got := drag.DataTransfer().GetData("Text"); got != `"parent"` {
		t.Errorf("payload = %q, want the parent's", got)
	}
}

func TestDragStartFromHandleSetsDragImage(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)
	handle := h.Element(dnd.AttrHandle, "")
	el.AppendChild(handle)

	drag := h.Drag(el, dndtest.From(handle), dndtest.AllowSetDragImage())
	img, x, y := drag.DataTransfer().DragImage()
	if img != el {
		t.Errorf("drag image = %v, want the draggable element", img)
	}
	if x != 0 || y != 0 {
		t.Errorf("offset = %d,%d, want 0,0", x, y)
	}
}

func TestDragStartHandleWithoutSupport(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)
	handle := h.Element(dnd.AttrHandle, "")
	el.AppendChild(handle)

	drag := h.Drag(el, dndtest.From(handle))
	if img, _, _ := drag.DataTransfer().DragImage(); img != nil {
		t.Errorf("drag image = %v, want none without client support", img)
	}
}

func TestDragStartWithoutHandleKeepsDefaultImage(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	drag := h.Drag(el, dndtest.AllowSetDragImage())
	if img, _, _ := drag.DataTransfer().DragImage(); img != nil {
		t.Errorf("drag image = %v, want none", img)
	}
}

func TestDragStartSerializationFailureStillDrags(t *testing.T) {
	h := dndtest.New(t)
	h.Scope.Set("bad", map[string]any{"ch": make(chan int)})
	el := h.Draggable(dnd.AttrDraggable, "bad")

	drag := h.Drag(el)
	if got := drag.DataTransfer().GetData("Text"); got != "" {
		t.Errorf("payload = %q, want empty", got)
	}
	if !drag.Start.PropagationStopped() {
		t.Error("drag should proceed")
	}
	h.ExpectClasses(el, "dragging")
}

func TestDragEndStopsPropagation(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	ev := h.Fire(dom.EventDragEnd, el, nil)
	if !ev.PropagationStopped() {
		t.Error("dragend should stop propagation")
	}
}

func TestDragEndRemovesClasses(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)
	el.AddClass("dragging")
	el.AddClass("dragging-source")

	h.Fire(dom.EventDragEnd, el, nil)
	h.ExpectClasses(el, "dragging-source")

	h.Flush()
	h.ExpectClasses(el)
}

func TestDragEndCallbacks(t *testing.T) {
	tests := []struct {
		effect   string
		callback string
		drop     bool
		wantDE   string
	}{
		{effect: "move", callback: dnd.AttrMoved, drop: true, wantDE: "move"},
		{effect: "copy", callback: dnd.AttrCopied, drop: true, wantDE: "copy"},
		{effect: "none", callback: dnd.AttrCanceled, drop: false, wantDE: "none"},
		{effect: "link", callback: dnd.AttrCanceled, drop: true, wantDE: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.effect, func(t *testing.T) {
			h := dndtest.New(t)
			el := h.Draggable(
				dnd.AttrDraggable, simplePayload,
				dnd.AttrDragEnd, "de = dropEffect",
				tt.callback, "ev = event",
			)
			list := h.DropZone(dnd.AttrList, "[]")

			drag := h.Drag(el)
			if tt.drop {
				drag.Drop(list, tt.effect)
			}
			end := drag.End()

			if ev, _ := h.Scope.Get("ev"); ev != end {
				t.Errorf("%s: ev = %v, want the dragend event", tt.callback, ev)
			}
			if de, _ := h.Scope.Get("de"); de != tt.wantDE {
				t.Errorf("dropEffect = %v, want %q", de, tt.wantDE)
			}
		})
	}
}

func TestDragEndInvokesOnlyMatchingCallback(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(
		dnd.AttrDraggable, simplePayload,
		dnd.AttrMoved, "moved = true",
		dnd.AttrCopied, "copied = true",
		dnd.AttrCanceled, "canceled = true",
	)
	list := h.DropZone()

	drag := h.Drag(el)
	drag.Drop(list, "copy")
	drag.End()

	for name, want := range map[string]bool{"moved": false, "copied": true, "canceled": false} {
		_, called := h.Scope.Get(name)
		if called != want {
			t.Errorf("%s called = %v, want %v", name, called, want)
		}
	}
}

func TestDragEndGenericCallbackRunsFirst(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(
		dnd.AttrDraggable, simplePayload,
		dnd.AttrDragEnd, "order = 'generic'",
		dnd.AttrCanceled, "order = order + ',canceled'",
	)

	h.Drag(el).End()
	if got, _ := h.Scope.Get("order"); got != "generic,canceled" {
		t.Errorf("order = %v", got)
	}
}

func TestOutcomeDoesNotLeakIntoNextDrag(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload, dnd.AttrDragEnd, "de = dropEffect")
	list := h.DropZone()

	first := h.Drag(el)
	first.Drop(list, "move")
	first.End()

	h.Drag(el).End()
	if de, _ := h.Scope.Get("de"); de != "none" {
		t.Errorf("second drag dropEffect = %v, want none", de)
	}
}

func TestSurfacesDoNotInterfere(t *testing.T) {
	a := dndtest.New(t)
	b := dndtest.New(t)
	src := a.Draggable(dnd.AttrDraggable, simplePayload, dnd.AttrDragEnd, "de = dropEffect")
	foreign := b.DropZone()

	drag := a.Drag(src)
	// A drop on another surface's zone records on that surface's channel.
	drag.Drop(foreign, "move")
	drag.End()

	if de, _ := a.Scope.Get("de"); de != "none" {
		t.Errorf("dropEffect = %v, want none", de)
	}
}

func TestRapidRedragKeepsSourceClass(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	first := h.Drag(el)
	h.Flush()
	first.End()
	// New drag before the deferred removal ran.
	h.Drag(el)
	h.Flush()
	h.ExpectClasses(el, "dragging", "dragging-source")
}

func TestQuickDragLeavesNoClasses(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	h.Drag(el).End()
	h.Flush()
	h.ExpectClasses(el)
}

func TestClickWithoutSelected(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload)

	if h.Fire(dom.EventClick, el, nil).PropagationStopped() {
		t.Error("click without dnd-selected should not stop propagation")
	}
}

func TestClickWithSelected(t *testing.T) {
	h := dndtest.New(t)
	el := h.Draggable(dnd.AttrDraggable, simplePayload, dnd.AttrSelected, "count = count + 1")
	h.Scope.Set("count", 0)

	ev := h.Fire(dom.EventClick, el, nil)
	if !ev.PropagationStopped() {
		t.Error("click with dnd-selected should stop propagation")
	}
	if got, _ := h.Scope.Get("count"); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestDraggingState(t *testing.T) {
	h := dndtest.New(t)
	el := h.Element(dnd.AttrDraggable, simplePayload)
	d := h.Surface.Draggable(el, h.Scope)

	drag := h.Drag(el)
	if !d.Dragging() {
		t.Error("Dragging() should be true after dragstart")
	}
	drag.End()
	if d.Dragging() {
		t.Error("Dragging() should be false after dragend")
	}
	if d.Element() != el {
		t.Error("Element() mismatch")
	}
}
