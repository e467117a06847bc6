// Package dom is a small server-side model of the browser elements that take
// part in drag and drop.
//
// A Document owns Elements addressed by hydration ID (HID). Elements carry
// attributes, an ordered class list and per-event handler lists. Events are
// delivered with Dispatch, which bubbles from the target to the root until a
// handler stops propagation, mirroring the DOM.
//
// Every visible change (attribute set, class added or removed, drag image
// selected) is recorded as a Mutation on the owning Document. The server
// drains these after each turn and ships them to the client as patches:
//
//	doc := dom.NewDocument()
//	item := doc.CreateElement("li")
//	item.SetAttr("draggable", "true")
//	item.AddClass("dragging")
//	for _, m := range doc.Drain() {
//	    fmt.Println(m.Op, m.HID, m.Key, m.Value)
//	}
package dom
