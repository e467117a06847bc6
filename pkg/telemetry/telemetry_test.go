package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))
	el := dom.NewDocument().CreateElement("li")

	m.DragStarted(el)
	m.DragAborted(el)
	m.DragEnded(el, dnd.OutcomeMoved, 300*time.Millisecond)
	m.DragEnded(el, dnd.OutcomeCanceled, time.Second)

	if v := counterValue(t, m.dragStarts); v != 1 {
		t.Errorf("drag_starts_total = %v, want 1", v)
	}
	if v := counterValue(t, m.dragAborts); v != 1 {
		t.Errorf("drag_aborts_total = %v, want 1", v)
	}
	if v := counterValue(t, m.dragOutcomes.WithLabelValues("moved")); v != 1 {
		t.Errorf("drag_outcomes_total{moved} = %v, want 1", v)
	}
	if v := counterValue(t, m.dragOutcomes.WithLabelValues("canceled")); v != 1 {
		t.Errorf("drag_outcomes_total{canceled} = %v, want 1", v)
	}
	if n := histogramCount(t, m.dragDuration); n != 2 {
		t.Errorf("drag_duration_seconds count = %d, want 2", n)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_drag_starts_total" {
			found = true
		}
	}
	if !found {
		t.Error("test_drag_starts_total not registered")
	}
}

func TestMetricsServerHooks(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.EventReceived("dragstart")
	m.PatchesSent(3)
	m.WebSocketError("read")

	if v := gaugeValue(t, m.activeSessions); v != 1 {
		t.Errorf("active_sessions = %v, want 1", v)
	}
	if v := counterValue(t, m.eventsTotal.WithLabelValues("dragstart")); v != 1 {
		t.Errorf("events_total{dragstart} = %v, want 1", v)
	}
	if v := counterValue(t, m.patchesSent); v != 3 {
		t.Errorf("patches_sent_total = %v, want 3", v)
	}
	if v := counterValue(t, m.wsErrors.WithLabelValues("read")); v != 1 {
		t.Errorf("websocket_errors_total{read} = %v, want 1", v)
	}
}

func TestTracerSpanPerDrag(t *testing.T) {
	tr := NewTracer(WithTracerProvider(noop.NewTracerProvider()), WithTracerName("test"))
	doc := dom.NewDocument()
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")

	tr.DragStarted(a)
	tr.DragStarted(b)
	if tr.Active() != 2 {
		t.Fatalf("Active() = %d, want 2", tr.Active())
	}

	tr.DragStarted(a)
	if tr.Active() != 2 {
		t.Errorf("restarting a drag should replace its span, Active() = %d", tr.Active())
	}

	tr.DragEnded(a, dnd.OutcomeCopied, time.Second)
	tr.DragEnded(b, dnd.OutcomeCanceled, time.Second)
	if tr.Active() != 0 {
		t.Errorf("Active() = %d after dragend, want 0", tr.Active())
	}

	// Neither of these may panic or leak.
	tr.DragEnded(a, dnd.OutcomeMoved, 0)
	tr.DragAborted(b)
	if tr.Active() != 0 {
		t.Errorf("Active() = %d, want 0", tr.Active())
	}
}

func TestTracerReleaseEndsDocumentSpans(t *testing.T) {
	tr := NewTracer(WithTracerProvider(noop.NewTracerProvider()))
	closing := dom.NewDocument()
	other := dom.NewDocument()
	a := closing.CreateElement("li")
	b := other.CreateElement("li")

	tr.DragStarted(a)
	tr.DragStarted(b)
	tr.Release(closing)
	if tr.Active() != 1 {
		t.Fatalf("Active() = %d after Release, want 1", tr.Active())
	}

	tr.Release(closing)
	tr.DragEnded(b, dnd.OutcomeMoved, 0)
	if tr.Active() != 0 {
		t.Errorf("Active() = %d, want 0", tr.Active())
	}
}

func TestTracerDefaultsToGlobalProvider(t *testing.T) {
	tr := NewTracer()
	el := dom.NewDocument().CreateElement("div")
	tr.DragStarted(el)
	tr.DragEnded(el, dnd.OutcomeMoved, time.Millisecond)
	if tr.Active() != 0 {
		t.Errorf("Active() = %d, want 0", tr.Active())
	}
}
