package dnd

// Drop effects reported by drop targets.
const (
	EffectMove = "move"
	EffectCopy = "copy"
	EffectLink = "link"
	EffectNone = "none"
)

// Outcome is the classified result of a finished drag.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"
	OutcomeCopied   Outcome = "copied"
	OutcomeCanceled Outcome = "canceled"
)

// Classify maps a recorded drop effect to an outcome. Anything other than
// move or copy, including link and no recorded effect, is canceled.
func Classify(effect string) Outcome {
	switch effect {
	case EffectMove:
		return OutcomeMoved
	case EffectCopy:
		return OutcomeCopied
	default:
		return OutcomeCanceled
	}
}

// DropEffect returns the effect passed to the generic dragend callback.
func (o Outcome) DropEffect() string {
	switch o {
	case OutcomeMoved:
		return EffectMove
	case OutcomeCopied:
		return EffectCopy
	default:
		return EffectNone
	}
}

// Attr returns the attribute holding the outcome's specific callback.
func (o Outcome) Attr() string {
	switch o {
	case OutcomeMoved:
		return AttrMoved
	case OutcomeCopied:
		return AttrCopied
	default:
		return AttrCanceled
	}
}
