package dom

// MutationOp is the kind of a recorded element change.
type MutationOp uint8

const (
	MutSetAttr      MutationOp = iota + 1 // Key=name, Value=value
	MutRemoveAttr                         // Key=name
	MutAddClass                           // Value=class
	MutRemoveClass                        // Value=class
	MutSetDragImage                       // Key="x,y" offset, Value=HID of the image element
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case MutSetAttr:
		return "SetAttr"
	case MutRemoveAttr:
		return "RemoveAttr"
	case MutAddClass:
		return "AddClass"
	case MutRemoveClass:
		return "RemoveClass"
	case MutSetDragImage:
		return "SetDragImage"
	default:
		return "Unknown"
	}
}

// Mutation is a single recorded change to an element.
type Mutation struct {
	Op    MutationOp
	HID   string
	Key   string
	Value string
}
