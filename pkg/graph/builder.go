package graph

import (
	"fmt"
	"strings"

	"github.com/voltlab/spicegraph/pkg/netlist"
)

// Build constructs the bipartite multigraph for a component list. Each
// component becomes a comp vertex; each pin lazily creates its node
// vertex and a keyed electrical edge. Coupling components (class K)
// contribute comp-comp coupling edges resolved from their raw line.
// Components with zero pins are tolerated.
func Build(comps []netlist.Component) *Graph {
	g := New()

	for i := range comps {
		c := &comps[i]
		g.AddVertex(&Vertex{ID: c.Ref, Kind: KindComp, CType: c.CType, Comp: c})
	}

	for i := range comps {
		c := &comps[i]
		for _, p := range c.Pins {
			g.AddVertex(&Vertex{ID: p.Node, Kind: KindNode})
			g.AddEdge(&Edge{
				Key:  fmt.Sprintf("%s:%s", c.Ref, p.Name),
				Kind: EdgeElectrical,
				From: c.Ref,
				To:   p.Node,
				Pin:  p.Name,
			})
		}
		if strings.EqualFold(c.CType, "K") && c.Raw != "" {
			addCoupling(g, c)
		}
	}

	return g
}

// addCoupling extracts the two referenced element names (and optional
// coefficient) from a coupling line and links them. Referenced elements
// not present in the component list get placeholder inductor vertices.
func addCoupling(g *Graph, c *netlist.Component) {
	toks := netlist.Tokenize(c.Raw)
	if len(toks) < 3 {
		return
	}
	l1, l2 := toks[1], toks[2]
	coeff := ""
	if len(toks) >= 4 {
		coeff = toks[3]
	}
	g.AddVertex(&Vertex{ID: l1, Kind: KindComp, CType: "L"})
	g.AddVertex(&Vertex{ID: l2, Kind: KindComp, CType: "L"})
	g.AddEdge(&Edge{
		Key:   fmt.Sprintf("%s:%s:%s", c.Ref, l1, l2),
		Kind:  EdgeCoupling,
		From:  l1,
		To:    l2,
		Coeff: coeff,
	})
}
