package protocol

import (
	"errors"

	"github.com/vango-dev/dnd/pkg/dom"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

// Patch operation constants.
const (
	PatchSetAttr      PatchOp = 0x02 // Key=name, Value=value
	PatchRemoveAttr   PatchOp = 0x03 // Key=name
	PatchAddClass     PatchOp = 0x10 // Value=class
	PatchRemoveClass  PatchOp = 0x11 // Value=class
	PatchSetDragImage PatchOp = 0x16 // Key="x,y", Value=image HID
)

// ErrUnknownPatch is returned when a patch op byte is not recognized.
var ErrUnknownPatch = errors.New("protocol: unknown patch op")

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchAddClass:
		return "AddClass"
	case PatchRemoveClass:
		return "RemoveClass"
	case PatchSetDragImage:
		return "SetDragImage"
	default:
		return "Unknown"
	}
}

// Patch is a single element change sent to the client.
type Patch struct {
	Op    PatchOp
	HID   string
	Key   string
	Value string
}

// NewSetAttrPatch creates a SetAttr patch.
func NewSetAttrPatch(hid, key, value string) Patch {
	return Patch{Op: PatchSetAttr, HID: hid, Key: key, Value: value}
}

// NewAddClassPatch creates an AddClass patch.
func NewAddClassPatch(hid, class string) Patch {
	return Patch{Op: PatchAddClass, HID: hid, Value: class}
}

// NewRemoveClassPatch creates a RemoveClass patch.
func NewRemoveClassPatch(hid, class string) Patch {
	return Patch{Op: PatchRemoveClass, HID: hid, Value: class}
}

// PatchFromMutation converts a recorded element change to a patch.
func PatchFromMutation(m dom.Mutation) (Patch, bool) {
	var op PatchOp
	switch m.Op {
	case dom.MutSetAttr:
		op = PatchSetAttr
	case dom.MutRemoveAttr:
		op = PatchRemoveAttr
	case dom.MutAddClass:
		op = PatchAddClass
	case dom.MutRemoveClass:
		op = PatchRemoveClass
	case dom.MutSetDragImage:
		op = PatchSetDragImage
	default:
		return Patch{}, false
	}
	return Patch{Op: op, HID: m.HID, Key: m.Key, Value: m.Value}, true
}

// PatchesFromMutations converts mutations in order, skipping unknown ops.
func PatchesFromMutations(muts []dom.Mutation) []Patch {
	patches := make([]Patch, 0, len(muts))
	for _, m := range muts {
		if p, ok := PatchFromMutation(m); ok {
			patches = append(patches, p)
		}
	}
	return patches
}

// PatchesFrame is a sequenced batch of patches.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for _, p := range pf.Patches {
		e.WriteByte(byte(p.Op))
		e.WriteString(p.HID)
		switch p.Op {
		case PatchSetAttr, PatchSetDragImage:
			e.WriteString(p.Key)
			e.WriteString(p.Value)
		case PatchRemoveAttr:
			e.WriteString(p.Key)
		default:
			e.WriteString(p.Value)
		}
	}
}

// DecodePatches decodes a patches frame using DefaultLimits.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	pf, err := DecodePatchesFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return pf, nil
}

// DecodePatchesFrom decodes a patches frame from d.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	// Smallest patch: op byte, empty HID, empty value.
	count, err := d.readCount(d.limits.MaxPatches, 3)
	if err != nil {
		return nil, err
	}
	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, 0, count)}
	for i := 0; i < count; i++ {
		p, err := decodePatch(d)
		if err != nil {
			return nil, err
		}
		pf.Patches = append(pf.Patches, p)
	}
	return pf, nil
}

func decodePatch(d *Decoder) (Patch, error) {
	op, err := d.ReadByte()
	if err != nil {
		return Patch{}, err
	}
	p := Patch{Op: PatchOp(op)}
	if p.Op.String() == "Unknown" {
		return Patch{}, ErrUnknownPatch
	}
	if p.HID, err = d.ReadString(); err != nil {
		return Patch{}, err
	}
	switch p.Op {
	case PatchSetAttr, PatchSetDragImage:
		if p.Key, err = d.ReadString(); err != nil {
			return Patch{}, err
		}
		p.Value, err = d.ReadString()
	case PatchRemoveAttr:
		p.Key, err = d.ReadString()
	default:
		p.Value, err = d.ReadString()
	}
	if err != nil {
		return Patch{}, err
	}
	return p, nil
}
