// Package demo builds the sample board served by dndd.
package demo

import (
	"fmt"
	"slices"

	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/scope"
)

// Titles of the sample cards.
var Titles = []string{"Write release notes", "Review drop zones", "Fix flaky test"}

// Board is a list of cards with a trash zone and a copy zone.
type Board struct {
	Root   *dom.Element
	List   *dom.Element
	Cards  []*dom.Element
	Handle *dom.Element
	Trash  *dom.Element
	Copies *dom.Element
}

// Build mounts the board into doc. Card state lives in sc:
//
//	items       the card payloads
//	locked      disables every card while truthy
//	selected    the last clicked card
//	trashed     the last card dropped on the trash zone
//	copies      cards dropped on the copy zone
//	lastEffect  the drop effect reported by the last dragend
func Build(doc *dom.Document, sc *scope.Scope, surface *dnd.Surface) *Board {
	items := make([]any, len(Titles))
	for i, title := range Titles {
		items[i] = map[string]any{"id": i + 1, "title": title}
	}
	sc.Set("items", items)
	sc.Set("locked", false)
	sc.Set("copies", []any{})

	b := &Board{
		Root:   doc.CreateElement("main"),
		List:   doc.CreateElement("ul"),
		Trash:  doc.CreateElement("div"),
		Copies: doc.CreateElement("div"),
	}
	b.Root.AppendChild(b.List)

	for i := range items {
		card := doc.CreateElement("li")
		b.List.AppendChild(card)
		card.SetAttr(dnd.AttrDraggable, fmt.Sprintf("items[%d]", i))
		card.SetAttr(dnd.AttrDisableIf, "locked")
		card.SetAttr(dnd.AttrEffectAllowed, "copyMove")
		card.SetAttr(dnd.AttrDragEnd, "lastEffect = dropEffect")
		card.SetAttr(dnd.AttrSelected, fmt.Sprintf("selected = items[%d]", i))

		moved := fmt.Sprintf("hideCard(%d)", i)
		card.SetAttr(dnd.AttrMoved, moved)
		sc.Func(moved, func(*scope.Scope, scope.Locals) any {
			card.SetAttr("hidden", "")
			return nil
		})

		surface.Draggable(card, sc)
		b.Cards = append(b.Cards, card)
	}

	// The first card can also be dragged by its grip.
	b.Handle = doc.CreateElement("span")
	b.Handle.SetAttr(dnd.AttrHandle, "")
	b.Cards[0].AppendChild(b.Handle)

	b.Root.AppendChild(b.Trash)
	b.Trash.SetAttr(dnd.AttrDrop, "trashed = item")
	surface.DropZone(b.Trash, sc)

	b.Root.AppendChild(b.Copies)
	b.Copies.SetAttr(dnd.AttrDrop, "addCopy(item)")
	sc.Func("addCopy(item)", func(sc *scope.Scope, locals scope.Locals) any {
		copies, _ := sc.Get("copies")
		list, _ := copies.([]any)
		sc.Set("copies", append(slices.Clone(list), locals[dnd.LocalItem]))
		return nil
	})
	surface.DropZone(b.Copies, sc)

	return b
}
