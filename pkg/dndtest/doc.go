// Package dndtest provides testing helpers for drag sources and drop zones.
//
// A Harness bundles a Document, a Scope, a manually flushed scheduler Queue
// and a Surface, so a test can build elements from directive attributes and
// step through a drag turn by turn.
//
// # Quick Start
//
//	func TestMoved(t *testing.T) {
//	    h := dndtest.New(t)
//	    item := h.Draggable(dnd.AttrDraggable, "{hello: 'world'}", dnd.AttrMoved, "ev = event")
//	    list := h.DropZone()
//
//	    drag := h.Drag(item)
//	    drag.Drop(list, "move")
//	    end := drag.End()
//
//	    ev, _ := h.Scope.Get("ev")
//	    if ev != end {
//	        t.Fatal("dnd-moved did not receive the dragend event")
//	    }
//	}
//
// # Deferred Work
//
// Class changes scheduled for the next turn stay queued until Flush:
//
//	h.Drag(item)
//	h.ExpectClasses(item, "dragging")
//	h.Flush()
//	h.ExpectClasses(item, "dragging", "dragging-source")
package dndtest
