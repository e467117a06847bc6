// Package dnd turns elements into drag sources and drop zones.
//
// A Surface is one independent drag context. It owns the drop-outcome
// Channel that connects drop zones to drag sources, the scheduler used for
// deferred class changes, and the shared options. Elements attached to the
// same Surface can exchange drags; separate surfaces never interfere.
//
//	surface := dnd.NewSurface(queue)
//	item := doc.CreateElement("li")
//	item.SetAttr(dnd.AttrDraggable, "item")
//	item.SetAttr(dnd.AttrMoved, "remove(item)")
//	surface.Draggable(item, sc)
//
//	list := doc.CreateElement("ul")
//	list.SetAttr(dnd.AttrList, "items")
//	surface.DropZone(list, sc)
//
// # Drag source lifecycle
//
// On dragstart the source serializes its payload into the data transfer,
// sets effectAllowed, adds the dragging class and, one turn later, the
// dragging-source class. On dragend it removes both (the second one a turn
// later), reads the effect recorded by the drop zone and invokes the
// dnd-dragend callback followed by one of dnd-moved, dnd-copied or
// dnd-canceled.
//
// Bound expressions are read from the element's attributes each time they
// are needed, so updating an attribute changes the behavior of the next drag.
package dnd
