package protocol

// Default decoding limits.
const (
	// DefaultMaxString bounds a single decoded string (64KB).
	DefaultMaxString = 64 * 1024

	// DefaultMaxEntries bounds the data entries of one event.
	DefaultMaxEntries = 32

	// DefaultMaxPatches bounds the patches in one frame.
	DefaultMaxPatches = 4096
)

// Limits bounds what a Decoder will accept.
type Limits struct {
	MaxString  int
	MaxEntries int
	MaxPatches int
}

// DefaultLimits returns the default decoding limits.
func DefaultLimits() Limits {
	return Limits{
		MaxString:  DefaultMaxString,
		MaxEntries: DefaultMaxEntries,
		MaxPatches: DefaultMaxPatches,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxString <= 0 {
		l.MaxString = DefaultMaxString
	}
	if l.MaxEntries <= 0 {
		l.MaxEntries = DefaultMaxEntries
	}
	if l.MaxPatches <= 0 {
		l.MaxPatches = DefaultMaxPatches
	}
	return l
}
