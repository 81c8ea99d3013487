package property

import "github.com/delaneyj/bindgraph/internal/slotmap"

type (
	// listKey addresses the list of holders that depend on one property or tracker.
	listKey struct{ slotmap.Key }
	// holderKey addresses a binding, tracker or change tracker.
	holderKey struct{ slotmap.Key }
	edgeKey   struct{ slotmap.Key }
)

// holder is anything that records the properties it reads and is told when
// one of them changes.
type holder interface {
	setDirty() (wasDirty bool)
	// onDirty runs after the flag is set, with the previous flag value.
	onDirty(wasDirty bool)
	// dependents is the list to continue propagation into, or the zero key.
	dependents() listKey
}

type depList struct {
	head, tail edgeKey
	kind       NodeKind
	name       string
}

type holderSlot struct {
	h     holder
	owned edgeKey
	kind  NodeKind
	name  string
}

// edge records that holder read the property or tracker owning list. It sits
// in the list (doubly linked, insertion order) and in the holder's owned
// chain (singly linked). It owns neither side.
type edge struct {
	holder     holderKey
	list       listKey
	prev, next edgeKey
	nextOwned  edgeKey
}

type graph struct {
	lists   *slotmap.Map[depList]
	holders *slotmap.Map[holderSlot]
	edges   *slotmap.Map[edge]
}

func newGraph() *graph {
	return &graph{
		lists:   slotmap.New[depList](),
		holders: slotmap.New[holderSlot](),
		edges:   slotmap.New[edge](),
	}
}

func (g *graph) newList(kind NodeKind, name string) listKey {
	return listKey{g.lists.Insert(depList{kind: kind, name: name})}
}

// removeList tombstones l. Edges still pointing at it stop resolving on the
// list side and are reclaimed when their holder clears its dependencies.
func (g *graph) removeList(l listKey) {
	g.lists.Remove(l.Key)
}

func (g *graph) newHolder(h holder, kind NodeKind, name string) holderKey {
	return holderKey{g.holders.Insert(holderSlot{h: h, kind: kind, name: name})}
}

func (g *graph) removeHolder(k holderKey) {
	g.clearOwned(k)
	g.holders.Remove(k.Key)
}

// register links holder k into list l unless k is already the last entry.
func (g *graph) register(l listKey, k holderKey) {
	list, ok := g.lists.Get(l.Key)
	if !ok {
		return
	}
	hs, ok := g.holders.Get(k.Key)
	if !ok {
		return
	}
	if tail, ok := g.edges.Get(list.tail.Key); ok && tail.holder == k {
		return
	}

	ek := edgeKey{g.edges.Insert(edge{
		holder:    k,
		list:      l,
		prev:      list.tail,
		nextOwned: hs.owned,
	})}
	if tail, ok := g.edges.Get(list.tail.Key); ok {
		tail.next = ek
	} else {
		list.head = ek
	}
	list.tail = ek
	hs.owned = ek
}

// clearOwned drops every edge holder k created.
func (g *graph) clearOwned(k holderKey) {
	hs, ok := g.holders.Get(k.Key)
	if !ok {
		return
	}
	ek := hs.owned
	hs.owned = edgeKey{}
	for !ek.IsZero() {
		e, ok := g.edges.Get(ek.Key)
		if !ok {
			return
		}
		next := e.nextOwned
		g.unlink(e)
		g.edges.Remove(ek.Key)
		ek = next
	}
}

func (g *graph) unlink(e *edge) {
	list, ok := g.lists.Get(e.list.Key)
	if !ok {
		return
	}
	if prev, ok := g.edges.Get(e.prev.Key); ok {
		prev.next = e.next
	} else {
		list.head = e.next
	}
	if next, ok := g.edges.Get(e.next.Key); ok {
		next.prev = e.prev
	} else {
		list.tail = e.prev
	}
}

// markDependentsDirty flags every holder in l, then recurses into the
// dependents of each holder that was clean. Flags are set before recursing,
// so a cycle stops at the first holder it revisits. Nothing is evaluated.
func (g *graph) markDependentsDirty(l listKey) {
	list, ok := g.lists.Get(l.Key)
	if !ok {
		return
	}

	// snapshot: dirty hooks may add or drop edges while we walk
	var targets []holderKey
	for ek := list.head; !ek.IsZero(); {
		e, ok := g.edges.Get(ek.Key)
		if !ok {
			break
		}
		targets = append(targets, e.holder)
		ek = e.next
	}

	for _, k := range targets {
		hs, ok := g.holders.Get(k.Key)
		if !ok {
			continue
		}
		h := hs.h
		wasDirty := h.setDirty()
		h.onDirty(wasDirty)
		if !wasDirty {
			g.markDependentsDirty(h.dependents())
		}
	}
}

func (g *graph) listLen(l listKey) int {
	list, ok := g.lists.Get(l.Key)
	if !ok {
		return 0
	}
	n := 0
	for ek := list.head; !ek.IsZero(); {
		e, ok := g.edges.Get(ek.Key)
		if !ok {
			break
		}
		n++
		ek = e.next
	}
	return n
}

// ownedLen counts the edges of k whose list is still alive.
func (g *graph) ownedLen(k holderKey) int {
	hs, ok := g.holders.Get(k.Key)
	if !ok {
		return 0
	}
	n := 0
	for ek := hs.owned; !ek.IsZero(); {
		e, ok := g.edges.Get(ek.Key)
		if !ok {
			break
		}
		if g.lists.Contains(e.list.Key) {
			n++
		}
		ek = e.nextOwned
	}
	return n
}
