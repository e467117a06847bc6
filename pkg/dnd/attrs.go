package dnd

// Directive attributes.
const (
	AttrDraggable     = "dnd-draggable"
	AttrDisableIf     = "dnd-disable-if"
	AttrEffectAllowed = "dnd-effect-allowed"
	AttrDragStart     = "dnd-dragstart"
	AttrDragEnd       = "dnd-dragend"
	AttrMoved         = "dnd-moved"
	AttrCopied        = "dnd-copied"
	AttrCanceled      = "dnd-canceled"
	AttrSelected      = "dnd-selected"
	AttrHandle        = "dnd-handle"
	AttrList          = "dnd-list"
	AttrDrop          = "dnd-drop"
)

// Locals injected into callback expressions.
const (
	LocalEvent      = "event"
	LocalDropEffect = "dropEffect"
	LocalItem       = "item"
)
