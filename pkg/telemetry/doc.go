// Package telemetry exports drag and server activity to Prometheus and
// OpenTelemetry.
//
// Both Metrics and Tracer implement dnd.Observer and can be combined:
//
//	metrics := telemetry.NewMetrics(telemetry.WithNamespace("board"))
//	tracer := telemetry.NewTracer(telemetry.WithTracerName("board"))
//	surface := dnd.NewSurface(loop, dnd.WithObserver(dnd.Observers{metrics, tracer}))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected (namespace "dnd" by default):
//   - dnd_drag_starts_total: accepted dragstarts
//   - dnd_drag_aborts_total: dragstarts blocked by dnd-disable-if
//   - dnd_drag_outcomes_total{outcome}: finished drags by outcome
//   - dnd_drag_duration_seconds: time from dragstart to dragend
//   - dnd_active_sessions: open WebSocket sessions
//   - dnd_events_total{type}: client events received
//   - dnd_patches_sent_total: patches written to clients
//   - dnd_websocket_errors_total{type}: transport errors
//
// The tracer opens one span per drag, from dragstart to dragend, using the
// global tracer provider unless another is supplied.
package telemetry
