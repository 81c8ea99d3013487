package inspect

import (
	"io"

	"github.com/delaneyj/bindgraph/property"
	qt "github.com/valyala/quicktemplate"
)

var dotShapes = map[property.NodeKind]string{
	property.KindProperty:      "ellipse",
	property.KindBinding:       "box",
	property.KindTracker:       "diamond",
	property.KindChangeTracker: "octagon",
}

// WriteDOT renders g as a Graphviz digraph. Edges point from a source to
// the dependents it dirties.
func WriteDOT(w io.Writer, g *Graph) {
	qw := qt.AcquireWriter(w)
	defer qt.ReleaseWriter(qw)
	streamDOT(qw, g)
}

// DOT is WriteDOT into a string.
func DOT(g *Graph) string {
	bb := qt.AcquireByteBuffer()
	defer qt.ReleaseByteBuffer(bb)
	WriteDOT(bb, g)
	return string(bb.B)
}

func streamDOT(qw *qt.Writer, g *Graph) {
	w := qw.N()
	w.S("digraph bindgraph {\n")
	w.S("\trankdir=LR;\n")
	for _, n := range g.Nodes {
		w.S("\t")
		streamNodeID(w, n)
		w.S(" [label=")
		w.Q(n.String())
		w.S(" shape=")
		w.S(dotShapes[n.Kind])
		w.S("];\n")
	}
	for _, e := range g.Edges {
		w.S("\t")
		streamNodeID(w, e.Source)
		w.S(" -> ")
		streamNodeID(w, e.Dependent)
		w.S(";\n")
	}
	w.S("}\n")
}

func streamNodeID(w *qt.QWriter, n property.Node) {
	w.S(`"`)
	if n.Holder {
		w.S("h_")
	} else {
		w.S("s_")
	}
	w.DUL(n.ID)
	w.S(`"`)
}
