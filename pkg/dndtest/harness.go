package dndtest

import (
	"slices"
	"testing"

	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/sched"
	"github.com/vango-dev/dnd/pkg/scope"
)

// Harness is a self-contained drag context for tests.
type Harness struct {
	T       testing.TB
	Doc     *dom.Document
	Scope   *scope.Scope
	Queue   *sched.Queue
	Surface *dnd.Surface
}

// New creates a harness. Options are passed to the Surface.
func New(t testing.TB, opts ...dnd.Option) *Harness {
	t.Helper()
	q := sched.NewQueue()
	return &Harness{
		T:       t,
		Doc:     dom.NewDocument(),
		Scope:   scope.New(),
		Queue:   q,
		Surface: dnd.NewSurface(q, opts...),
	}
}

// Element creates a div with the given attribute key/value pairs.
func (h *Harness) Element(attrs ...string) *dom.Element {
	h.T.Helper()
	if len(attrs)%2 != 0 {
		h.T.Fatalf("dndtest: odd number of attribute arguments: %v", attrs)
	}
	el := h.Doc.CreateElement("div")
	for i := 0; i < len(attrs); i += 2 {
		el.SetAttr(attrs[i], attrs[i+1])
	}
	return el
}

// Draggable creates an element, attaches a drag source and runs a digest.
func (h *Harness) Draggable(attrs ...string) *dom.Element {
	h.T.Helper()
	el := h.Element(attrs...)
	h.Surface.Draggable(el, h.Scope)
	h.Digest()
	return el
}

// DropZone creates an element, attaches a drop zone and runs a digest.
func (h *Harness) DropZone(attrs ...string) *dom.Element {
	h.T.Helper()
	el := h.Element(attrs...)
	h.Surface.DropZone(el, h.Scope)
	h.Digest()
	return el
}

// Digest runs a scope digest and fails the test on error.
func (h *Harness) Digest() {
	h.T.Helper()
	if err := h.Scope.Digest(); err != nil {
		h.T.Fatalf("digest: %v", err)
	}
}

// Flush runs all deferred work.
func (h *Harness) Flush() int {
	return h.Queue.Flush()
}

// Fire dispatches a new event of the given type on target.
func (h *Harness) Fire(eventType string, target *dom.Element, dt *dom.DataTransfer) *dom.Event {
	ev := dom.NewEvent(eventType, target, dt)
	dom.Dispatch(ev)
	return ev
}

// ExpectClasses fails unless el has exactly the given classes, in any order.
func (h *Harness) ExpectClasses(el *dom.Element, want ...string) {
	h.T.Helper()
	got := el.Classes()
	slices.Sort(got)
	want = slices.Clone(want)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		h.T.Errorf("classes of %s = %v, want %v", el.HID, got, want)
	}
}

// ExpectAttr fails unless el has attr set to want.
func (h *Harness) ExpectAttr(el *dom.Element, attr, want string) {
	h.T.Helper()
	got, ok := el.Attr(attr)
	if !ok || got != want {
		h.T.Errorf("%s[%s] = %q (present %v), want %q", el.HID, attr, got, ok, want)
	}
}
