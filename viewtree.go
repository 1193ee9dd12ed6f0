package osr

import (
	"fmt"
	"image"
)

// RelationKind tags an edge in the view tree. The closed set of kinds is
// dispatched with switches; there is no per-kind behavior type.
type RelationKind uint8

const (
	// RelationPopup attaches a transient surface (menu, dropdown) over a
	// parent. A surface has at most one popup at a time.
	RelationPopup RelationKind = iota + 1

	// RelationChild attaches a full-size child view, as used during
	// cross-process navigation handoff. A surface has at most one
	// current child at a time.
	RelationChild

	// RelationGuest embeds another surface's content inside the
	// embedder's visible area. Many guests per embedder; the edge is
	// purely observational and never transfers ownership.
	RelationGuest
)

func (k RelationKind) String() string {
	switch k {
	case RelationPopup:
		return "popup"
	case RelationChild:
		return "child"
	case RelationGuest:
		return "guest"
	default:
		return fmt.Sprintf("RelationKind(%d)", uint8(k))
	}
}

// viewNode is one surface's edges. parent is zero when detached.
type viewNode struct {
	parent SurfaceID
	kind   RelationKind
	rect   image.Rectangle

	popup  SurfaceID
	child  SurfaceID
	guests map[SurfaceID]struct{}
}

// viewTree models parent/popup/child/guest relationships as a directed
// graph stored by identifier. The compositor's registry owns the
// surfaces; edges here are non-owning and looked up by id, so destroying
// a surface can never dangle a reference, only miss a lookup.
type viewTree struct {
	nodes map[SurfaceID]*viewNode
}

func newViewTree() *viewTree {
	return &viewTree{nodes: make(map[SurfaceID]*viewNode)}
}

func (t *viewTree) node(id SurfaceID) *viewNode {
	n := t.nodes[id]
	if n == nil {
		n = &viewNode{}
		t.nodes[id] = n
	}
	return n
}

// Attach adds an edge of the given kind from child to parent. rect is the
// rectangle the child occupies in the parent's coordinate space (the
// popup position or the guest's embedded area; unused for child views).
//
// Popup and child slots are exclusive: attaching a new one implicitly
// detaches the previous occupant. An attach that would make a surface its
// own ancestor is rejected.
func (t *viewTree) Attach(child, parent SurfaceID, kind RelationKind, rect image.Rectangle) error {
	if child == parent {
		return fmt.Errorf("%w: surface %d cannot attach to itself", ErrInvalidRelation, child)
	}
	switch kind {
	case RelationPopup, RelationChild, RelationGuest:
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidRelation, kind)
	}
	// Walk ancestors of parent; finding child there would create a cycle.
	for id := parent; id != 0; {
		n := t.nodes[id]
		if n == nil {
			break
		}
		if n.parent == child {
			return fmt.Errorf("%w: surface %d is an ancestor of %d", ErrInvalidRelation, child, parent)
		}
		id = n.parent
	}

	// Re-attaching moves the edge; drop the old one first.
	t.detachEdge(child)

	cn := t.node(child)
	pn := t.node(parent)
	cn.parent = parent
	cn.kind = kind
	cn.rect = rect

	switch kind {
	case RelationPopup:
		if pn.popup != 0 && pn.popup != child {
			t.detachEdge(pn.popup)
		}
		pn.popup = child
	case RelationChild:
		if pn.child != 0 && pn.child != child {
			t.detachEdge(pn.child)
		}
		pn.child = child
	case RelationGuest:
		if pn.guests == nil {
			pn.guests = make(map[SurfaceID]struct{})
		}
		pn.guests[child] = struct{}{}
	}
	return nil
}

// Detach removes all edges touching id: its own upward edge and,
// recursively, every popup, child, and guest attached below it, so no
// dangling edges remain. Detaching an already-detached surface is a
// no-op.
func (t *viewTree) Detach(id SurfaceID) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	if n.popup != 0 {
		t.Detach(n.popup)
	}
	if n.child != 0 {
		t.Detach(n.child)
	}
	for g := range n.guests {
		t.Detach(g)
	}
	t.detachEdge(id)
	delete(t.nodes, id)
}

// detachEdge removes only id's upward edge, leaving its own subtree.
func (t *viewTree) detachEdge(id SurfaceID) {
	n := t.nodes[id]
	if n == nil || n.parent == 0 {
		return
	}
	if pn := t.nodes[n.parent]; pn != nil {
		switch n.kind {
		case RelationPopup:
			if pn.popup == id {
				pn.popup = 0
			}
		case RelationChild:
			if pn.child == id {
				pn.child = 0
			}
		case RelationGuest:
			delete(pn.guests, id)
		}
	}
	n.parent = 0
	n.kind = 0
	n.rect = image.Rectangle{}
}

// Embedder returns the surface embedding id as a guest and the rectangle
// the guest occupies there.
func (t *viewTree) Embedder(id SurfaceID) (SurfaceID, image.Rectangle, bool) {
	n := t.nodes[id]
	if n == nil || n.kind != RelationGuest || n.parent == 0 {
		return 0, image.Rectangle{}, false
	}
	return n.parent, n.rect, true
}

// Popup returns the surface currently attached as id's popup.
func (t *viewTree) Popup(id SurfaceID) (SurfaceID, bool) {
	n := t.nodes[id]
	if n == nil || n.popup == 0 {
		return 0, false
	}
	return n.popup, true
}

// Child returns the surface currently attached as id's child view.
func (t *viewTree) Child(id SurfaceID) (SurfaceID, bool) {
	n := t.nodes[id]
	if n == nil || n.child == 0 {
		return 0, false
	}
	return n.child, true
}

// Guests returns the ids currently embedded in id, in no particular
// order.
func (t *viewTree) Guests(id SurfaceID) []SurfaceID {
	n := t.nodes[id]
	if n == nil || len(n.guests) == 0 {
		return nil
	}
	out := make([]SurfaceID, 0, len(n.guests))
	for g := range n.guests {
		out = append(out, g)
	}
	return out
}
