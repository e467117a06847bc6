package dnd

import (
	"log/slog"
	"time"

	"github.com/vango-dev/dnd/internal/config"
	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/sched"
	"github.com/vango-dev/dnd/pkg/scope"
)

// Scope is what directives need from the application scope.
type Scope interface {
	scope.Evaluator
	Watch(expr string, fn func(value, old any)) func()
}

// Classes are the CSS classes applied to a drag source.
type Classes struct {
	// Dragging is added synchronously at dragstart.
	Dragging string

	// DraggingSource is added one turn after dragstart.
	DraggingSource string
}

// Surface is an independent drag context shared by the drag sources and
// drop zones attached to it.
type Surface struct {
	Channel *Channel

	scheduler     sched.Scheduler
	classes       Classes
	payloadFormat string
	effectAllowed string
	serialize     Serializer
	deserialize   Deserializer
	observer      Observer
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures a Surface.
type Option func(*Surface)

// WithChannel shares an existing channel instead of creating one.
func WithChannel(ch *Channel) Option {
	return func(s *Surface) {
		s.Channel = ch
	}
}

// WithClasses overrides the drag state classes.
func WithClasses(c Classes) Option {
	return func(s *Surface) {
		s.classes = c
	}
}

// WithPayloadFormat sets the data transfer key for the payload.
func WithPayloadFormat(format string) Option {
	return func(s *Surface) {
		s.payloadFormat = format
	}
}

// WithEffectAllowed sets the effectAllowed used when dnd-effect-allowed is absent.
func WithEffectAllowed(effect string) Option {
	return func(s *Surface) {
		s.effectAllowed = effect
	}
}

// WithSerializer sets the payload codec.
func WithSerializer(ser Serializer, de Deserializer) Option {
	return func(s *Surface) {
		s.serialize = ser
		s.deserialize = de
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Surface) {
		s.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for drag duration measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Surface) {
		s.now = now
	}
}

// WithConfig applies the drag section of a loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Surface) {
		s.payloadFormat = cfg.Drag.PayloadFormat
		s.effectAllowed = cfg.Drag.EffectAllowed
		s.classes = Classes{
			Dragging:       cfg.Drag.DraggingClass,
			DraggingSource: cfg.Drag.DraggingSourceClass,
		}
	}
}

// NewSurface creates a drag context whose deferred class changes run on s.
func NewSurface(s sched.Scheduler, opts ...Option) *Surface {
	surface := &Surface{
		scheduler:     s,
		classes:       Classes{Dragging: config.DefaultDraggingClass, DraggingSource: config.DefaultDraggingSourceClass},
		payloadFormat: config.DefaultPayloadFormat,
		effectAllowed: config.DefaultEffectAllowed,
		serialize:     JSONSerializer,
		deserialize:   JSONDeserializer,
		observer:      NopObserver{},
		logger:        slog.Default().With("component", "dnd"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(surface)
	}
	if surface.Channel == nil {
		surface.Channel = NewChannel()
	}
	return surface
}

// Classes returns the drag state classes.
func (s *Surface) Classes() Classes {
	return s.classes
}

// PayloadFormat returns the data transfer key for the payload.
func (s *Surface) PayloadFormat() string {
	return s.payloadFormat
}

// eval evaluates the expression stored in attr. A missing attribute or a
// failing expression yields nil.
func (s *Surface) eval(sc Scope, el *dom.Element, attr string, locals scope.Locals) any {
	expr, ok := el.Attr(attr)
	if !ok || expr == "" {
		return nil
	}
	v, err := sc.Eval(expr, locals)
	if err != nil {
		s.logger.Warn("expression failed", "attr", attr, "expr", expr, "hid", el.HID, "error", err)
		return nil
	}
	return v
}

// invoke runs the callback stored in attr. It reports whether one was bound.
func (s *Surface) invoke(sc Scope, el *dom.Element, attr string, locals scope.Locals) bool {
	expr, ok := el.Attr(attr)
	if !ok || expr == "" {
		return false
	}
	if err := sc.Invoke(expr, locals); err != nil {
		s.logger.Warn("callback failed", "attr", attr, "expr", expr, "hid", el.HID, "error", err)
	}
	return true
}
