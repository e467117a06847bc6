package protocol

import (
	"errors"
	"slices"
)

// EventType identifies a client event.
type EventType uint8

// Event type constants.
const (
	EventClick     EventType = 0x01
	EventDragStart EventType = 0x50
	EventDragEnd   EventType = 0x51
	EventDrop      EventType = 0x52
	EventDragOver  EventType = 0x53
	EventDragEnter EventType = 0x54
)

// ErrUnknownEvent is returned when an event type byte is not recognized.
var ErrUnknownEvent = errors.New("protocol: unknown event type")

// String returns the DOM name of the event type.
func (et EventType) String() string {
	switch et {
	case EventClick:
		return "click"
	case EventDragStart:
		return "dragstart"
	case EventDragEnd:
		return "dragend"
	case EventDrop:
		return "drop"
	case EventDragOver:
		return "dragover"
	case EventDragEnter:
		return "dragenter"
	default:
		return "unknown"
	}
}

// IsDrag reports whether events of this type carry a data transfer.
func (et EventType) IsDrag() bool {
	switch et {
	case EventDragStart, EventDragEnd, EventDrop, EventDragOver, EventDragEnter:
		return true
	}
	return false
}

// ParseEventType maps a DOM event name to its wire type.
func ParseEventType(name string) (EventType, bool) {
	for _, et := range []EventType{EventClick, EventDragStart, EventDragEnd, EventDrop, EventDragOver, EventDragEnter} {
		if et.String() == name {
			return et, true
		}
	}
	return 0, false
}

// Event flag bits.
const (
	flagAllowSetDragImage byte = 1 << 0
)

// Event is a client event targeted at an element by hydration ID.
type Event struct {
	Seq  uint64
	Type EventType
	HID  string

	// Drag events only.
	EffectAllowed     string
	DropEffect        string
	AllowSetDragImage bool
	Data              map[string]string
}

// EncodeEvent encodes an event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo encodes an event using the provided encoder.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Seq)
	e.WriteByte(byte(ev.Type))
	e.WriteString(ev.HID)
	if !ev.Type.IsDrag() {
		return
	}

	var flags byte
	if ev.AllowSetDragImage {
		flags |= flagAllowSetDragImage
	}
	e.WriteByte(flags)
	e.WriteString(ev.EffectAllowed)
	e.WriteString(ev.DropEffect)

	formats := make([]string, 0, len(ev.Data))
	for format := range ev.Data {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	e.WriteUvarint(uint64(len(formats)))
	for _, format := range formats {
		e.WriteString(format)
		e.WriteString(ev.Data[format])
	}
}

// DecodeEvent decodes an event using DefaultLimits.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev, err := DecodeEventFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return ev, nil
}

// DecodeEventFrom decodes one event from d.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	typ, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev := &Event{Seq: seq, Type: EventType(typ)}
	if ev.Type.String() == "unknown" {
		return nil, ErrUnknownEvent
	}
	if ev.HID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if !ev.Type.IsDrag() {
		return ev, nil
	}

	flags, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.AllowSetDragImage = flags&flagAllowSetDragImage != 0
	if ev.EffectAllowed, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.DropEffect, err = d.ReadString(); err != nil {
		return nil, err
	}

	// Each entry is at least two empty strings.
	count, err := d.readCount(d.limits.MaxEntries, 2)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		ev.Data = make(map[string]string, count)
	}
	for i := 0; i < count; i++ {
		format, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		value, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		ev.Data[format] = value
	}
	return ev, nil
}
