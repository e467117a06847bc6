package dom

import (
	"maps"
	"slices"
	"strconv"
)

// Event type names.
const (
	EventClick     = "click"
	EventDragStart = "dragstart"
	EventDragEnter = "dragenter"
	EventDragOver  = "dragover"
	EventDrop      = "drop"
	EventDragEnd   = "dragend"
)

// DataTransfer is the drag payload carried by drag events.
type DataTransfer struct {
	// EffectAllowed restricts which drop effects a target may choose.
	EffectAllowed string

	// DropEffect is the effect negotiated by the drop target.
	DropEffect string

	// AllowSetDragImage reports whether the client supports custom drag images.
	AllowSetDragImage bool

	data      map[string]string
	order     []string
	dragImage *Element
	imageX    int
	imageY    int
}

// NewDataTransfer creates an empty data transfer.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{data: make(map[string]string)}
}

// SetData stores data under a format key.
func (dt *DataTransfer) SetData(format, data string) {
	if dt.data == nil {
		dt.data = make(map[string]string)
	}
	if _, ok := dt.data[format]; !ok {
		dt.order = append(dt.order, format)
	}
	dt.data[format] = data
}

// GetData returns the data stored under a format key.
func (dt *DataTransfer) GetData(format string) string {
	return dt.data[format]
}

// Types returns the format keys in insertion order.
func (dt *DataTransfer) Types() []string {
	return slices.Clone(dt.order)
}

// Data returns a copy of the payload map.
func (dt *DataTransfer) Data() map[string]string {
	return maps.Clone(dt.data)
}

// SetDragImage selects el as the drag image with the given cursor offset.
// It records a mutation so remote clients can apply it.
func (dt *DataTransfer) SetDragImage(el *Element, x, y int) {
	dt.dragImage = el
	dt.imageX, dt.imageY = x, y
	if el != nil {
		el.doc.record(Mutation{
			Op:    MutSetDragImage,
			HID:   el.HID,
			Key:   strconv.Itoa(x) + "," + strconv.Itoa(y),
			Value: el.HID,
		})
	}
}

// DragImage returns the selected drag image, if any.
func (dt *DataTransfer) DragImage() (*Element, int, int) {
	return dt.dragImage, dt.imageX, dt.imageY
}

// Event is a DOM event delivered to element handlers.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	DataTransfer  *DataTransfer

	// Seq is the client sequence number, zero for locally created events.
	Seq uint64

	propagationStopped bool
	defaultPrevented   bool
}

// NewEvent creates an event. A nil data transfer is replaced by an empty one.
func NewEvent(eventType string, target *Element, dt *DataTransfer) *Event {
	if dt == nil {
		dt = NewDataTransfer()
	}
	return &Event{Type: eventType, Target: target, DataTransfer: dt}
}

// StopPropagation prevents the event from reaching ancestor handlers.
func (ev *Event) StopPropagation() { ev.propagationStopped = true }

// PreventDefault cancels the event's default action.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

// PropagationStopped reports whether StopPropagation was called.
func (ev *Event) PropagationStopped() bool { return ev.propagationStopped }

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// ReturnValue is false once the default action has been prevented.
func (ev *Event) ReturnValue() bool { return !ev.defaultPrevented }

// Dispatch delivers ev to its target and bubbles it up the tree. All handlers
// on one element run even if an earlier one stops propagation.
func Dispatch(ev *Event) bool {
	for el := ev.Target; el != nil; el = el.parent {
		ev.CurrentTarget = el
		for _, h := range el.handlers[ev.Type] {
			h(ev)
		}
		if ev.propagationStopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return ev.ReturnValue()
}
