package dom

import (
	"slices"
	"strconv"
)

// Handler handles an event delivered to an element.
type Handler func(ev *Event)

// Element is a node in a Document.
type Element struct {
	Tag string
	HID string

	doc      *Document
	parent   *Element
	children []*Element
	attrs    map[string]string
	classes  []string
	handlers map[string][]Handler
}

// Document owns a tree of elements and records their mutations.
type Document struct {
	nodes   map[string]*Element
	nextID  uint64
	pending []Mutation
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]*Element)}
}

// CreateElement creates a detached element with a fresh HID.
func (d *Document) CreateElement(tag string) *Element {
	d.nextID++
	el := &Element{
		Tag:   tag,
		HID:   "h" + strconv.FormatUint(d.nextID, 10),
		doc:   d,
		attrs: make(map[string]string),
	}
	d.nodes[el.HID] = el
	return el
}

// ByHID returns the element with the given HID.
func (d *Document) ByHID(hid string) (*Element, bool) {
	el, ok := d.nodes[hid]
	return el, ok
}

// Len returns the number of elements owned by the document.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Pending returns the number of undrained mutations.
func (d *Document) Pending() int {
	return len(d.pending)
}

// Drain returns the recorded mutations in order and clears them.
func (d *Document) Drain() []Mutation {
	out := d.pending
	d.pending = nil
	return out
}

func (d *Document) record(m Mutation) {
	if d == nil {
		return
	}
	d.pending = append(d.pending, m)
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Parent returns the parent element, or nil for a root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the child elements.
func (e *Element) Children() []*Element {
	return e.children
}

// AppendChild attaches child as the last child of e and returns e.
func (e *Element) AppendChild(child *Element) *Element {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	return e
}

func (e *Element) removeChild(child *Element) {
	if i := slices.Index(e.children, child); i >= 0 {
		e.children = slices.Delete(e.children, i, i+1)
	}
	child.parent = nil
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

// SetAttr sets an attribute. Setting an unchanged value records nothing.
func (e *Element) SetAttr(name, value string) {
	if old, ok := e.attrs[name]; ok && old == value {
		return
	}
	e.attrs[name] = value
	e.doc.record(Mutation{Op: MutSetAttr, HID: e.HID, Key: name, Value: value})
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	e.doc.record(Mutation{Op: MutRemoveAttr, HID: e.HID, Key: name})
}

// HasClass reports whether the element has the class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes, class)
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// AddClass adds a class. Adding a present class is a no-op.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
	e.doc.record(Mutation{Op: MutAddClass, HID: e.HID, Value: class})
}

// RemoveClass removes a class. Removing an absent class is a no-op.
func (e *Element) RemoveClass(class string) {
	i := slices.Index(e.classes, class)
	if i < 0 {
		return
	}
	e.classes = slices.Delete(e.classes, i, i+1)
	e.doc.record(Mutation{Op: MutRemoveClass, HID: e.HID, Value: class})
}

// On registers a handler for an event type.
func (e *Element) On(eventType string, h Handler) {
	if e.handlers == nil {
		e.handlers = make(map[string][]Handler)
	}
	e.handlers[eventType] = append(e.handlers[eventType], h)
}

// HasHandler reports whether any handler is registered for eventType.
func (e *Element) HasHandler(eventType string) bool {
	return len(e.handlers[eventType]) > 0
}

// Closest returns the nearest ancestor-or-self carrying the attribute.
func (e *Element) Closest(attr string) *Element {
	for el := e; el != nil; el = el.parent {
		if el.HasAttr(attr) {
			return el
		}
	}
	return nil
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for el := other; el != nil; el = el.parent {
		if el == e {
			return true
		}
	}
	return false
}
