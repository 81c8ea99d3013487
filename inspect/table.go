package inspect

import (
	"github.com/delaneyj/bindgraph/property"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders one row per node with its dependency counts, followed by
// one row per edge when edges is set.
func Table(g *Graph, style table.Style, edges bool) string {
	tbl := table.NewWriter()
	tbl.SetStyle(style)
	tbl.SetTitle("Dependency graph")
	tbl.AppendHeader(table.Row{"node", "side", "reads", "read by"})
	for _, n := range g.Nodes {
		tbl.AppendRow(table.Row{n.String(), role(n), len(g.Sources(n)), len(g.Dependents(n))})
	}
	tbl.AppendFooter(table.Row{"", "", len(g.Edges), len(g.Edges)})

	if edges && len(g.Edges) > 0 {
		tbl.AppendSeparator()
		for _, e := range g.Edges {
			tbl.AppendRow(table.Row{e.Dependent.String(), "reads", e.Source.String(), ""})
		}
	}
	return tbl.Render()
}

func role(n property.Node) string {
	if n.Holder {
		return "dependent"
	}
	return "source"
}
