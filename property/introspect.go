package property

import (
	"fmt"

	"github.com/delaneyj/bindgraph/internal/slotmap"
)

type NodeKind uint8

const (
	KindProperty NodeKind = iota
	KindTracker
	KindBinding
	KindChangeTracker
)

func (k NodeKind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindTracker:
		return "tracker"
	case KindBinding:
		return "binding"
	case KindChangeTracker:
		return "change-tracker"
	default:
		return "unknown"
	}
}

// Node identifies one side of a dependency edge. Sources are dependency
// lists (properties and trackers); dependents are holders.
type Node struct {
	Kind NodeKind
	ID   uint64
	Name string
	// Holder is set for the dependent side. Lists and holders are numbered
	// independently, so a tracker has one Node of each.
	Holder bool
}

func (n Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s:%s", n.Kind, n.Name)
	}
	return fmt.Sprintf("%s#%x", n.Kind, n.ID)
}

// Edge says Dependent read Source during its last evaluation.
type Edge struct {
	Dependent Node
	Source    Node
}

// VisitEdges walks every live edge, grouped by source in list order. fn must
// not mutate the graph.
func (rt *Runtime) VisitEdges(fn func(Edge) bool) {
	g := rt.g
	g.lists.Each(func(k slotmap.Key, list *depList) bool {
		source := Node{Kind: list.kind, ID: k.Uint64(), Name: list.name}
		for ek := list.head; !ek.IsZero(); {
			e, ok := g.edges.Get(ek.Key)
			if !ok {
				break
			}
			ek = e.next
			hs, ok := g.holders.Get(e.holder.Key)
			if !ok {
				continue
			}
			dependent := Node{Kind: hs.kind, ID: e.holder.Uint64(), Name: hs.name, Holder: true}
			if !fn(Edge{Dependent: dependent, Source: source}) {
				return false
			}
		}
		return true
	})
}

// VisitNodes walks every live dependency list, then every live holder. A
// tracker shows up twice: once as a source and once as a dependent.
func (rt *Runtime) VisitNodes(fn func(Node) bool) {
	g := rt.g
	more := true
	g.lists.Each(func(k slotmap.Key, list *depList) bool {
		more = fn(Node{Kind: list.kind, ID: k.Uint64(), Name: list.name})
		return more
	})
	if !more {
		return
	}
	g.holders.Each(func(k slotmap.Key, hs *holderSlot) bool {
		return fn(Node{Kind: hs.kind, ID: k.Uint64(), Name: hs.name, Holder: true})
	})
}
