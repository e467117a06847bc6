package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
)

// Default tracer name.
const defaultTracerName = "dnd"

// TracingConfig configures the drag tracer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "dnd").
	TracerName string

	// Provider is the tracer provider. Default: otel.GetTracerProvider().
	Provider trace.TracerProvider
}

// TracingOption configures the drag tracer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// Tracer records one span per drag. It implements dnd.Observer.
type Tracer struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[*dom.Element]trace.Span
}

var _ dnd.Observer = (*Tracer)(nil)

// NewTracer creates a drag tracer.
func NewTracer(opts ...TracingOption) *Tracer {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer: config.Provider.Tracer(config.TracerName),
		spans:  make(map[*dom.Element]trace.Span),
	}
}

func elementAttrs(el *dom.Element) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("dnd.hid", el.HID),
		attribute.String("dnd.tag", el.Tag),
	}
}

// DragStarted implements dnd.Observer.
func (t *Tracer) DragStarted(el *dom.Element) {
	_, span := t.tracer.Start(context.Background(), "dnd.drag",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(elementAttrs(el)...),
	)

	t.mu.Lock()
	if prev, ok := t.spans[el]; ok {
		// A dragend never arrived for the previous drag.
		prev.SetStatus(codes.Error, "superseded by a new dragstart")
		prev.End()
	}
	t.spans[el] = span
	t.mu.Unlock()
}

// DragAborted implements dnd.Observer.
func (t *Tracer) DragAborted(el *dom.Element) {
	_, span := t.tracer.Start(context.Background(), "dnd.drag.aborted",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(elementAttrs(el)...),
	)
	span.End()
}

// DragEnded implements dnd.Observer.
func (t *Tracer) DragEnded(el *dom.Element, outcome dnd.Outcome, elapsed time.Duration) {
	t.mu.Lock()
	span, ok := t.spans[el]
	delete(t.spans, el)
	t.mu.Unlock()

	if !ok {
		_, span = t.tracer.Start(context.Background(), "dnd.drag",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(elementAttrs(el)...),
		)
	}
	span.SetAttributes(
		attribute.String("dnd.outcome", string(outcome)),
		attribute.Int64("dnd.elapsed_ms", elapsed.Milliseconds()),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

// Release ends the open spans of drags whose element belongs to doc. Call it
// when the document's session goes away mid-drag.
func (t *Tracer) Release(doc *dom.Document) {
	t.mu.Lock()
	var open []trace.Span
	for el, span := range t.spans {
		if el.Document() == doc {
			open = append(open, span)
			delete(t.spans, el)
		}
	}
	t.mu.Unlock()

	for _, span := range open {
		span.SetStatus(codes.Error, "session closed during drag")
		span.End()
	}
}

// Active returns the number of drags with an open span.
func (t *Tracer) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}
