package dnd

import (
	"time"

	"github.com/vango-dev/dnd/pkg/dom"
)

// Observer is notified about drag lifecycle transitions of drag sources.
type Observer interface {
	// DragStarted is called once a dragstart has been accepted.
	DragStarted(el *dom.Element)

	// DragAborted is called when dnd-disable-if blocked a dragstart.
	DragAborted(el *dom.Element)

	// DragEnded is called after the dragend callbacks ran.
	DragEnded(el *dom.Element, outcome Outcome, elapsed time.Duration)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) DragStarted(*dom.Element) {}

func (NopObserver) DragAborted(*dom.Element) {}

func (NopObserver) DragEnded(*dom.Element, Outcome, time.Duration) {}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (obs Observers) DragStarted(el *dom.Element) {
	for _, o := range obs {
		o.DragStarted(el)
	}
}

func (obs Observers) DragAborted(el *dom.Element) {
	for _, o := range obs {
		o.DragAborted(el)
	}
}

func (obs Observers) DragEnded(el *dom.Element, outcome Outcome, elapsed time.Duration) {
	for _, o := range obs {
		o.DragEnded(el, outcome, elapsed)
	}
}
