package erc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/voltlab/spicegraph/pkg/graph"
	"github.com/voltlab/spicegraph/pkg/netlist"
)

// DefaultRules returns the full rule set in its fixed evaluation order.
// Order is part of the contract: reports list problems in this order.
func DefaultRules() []Rule {
	return []Rule{
		GroundExists{},
		MinDegree{},
		ParallelVoltageSources{},
		LCIdeal{},
		DevicePinCount{},
	}
}

// GroundExists requires the canonical reference node to be present.
type GroundExists struct{}

func (GroundExists) Name() string { return "ground_exists" }

func (GroundExists) Check(g *graph.Graph, ground string) ([]string, []string) {
	if v, ok := g.Vertex(ground); ok && v.Kind == graph.KindNode {
		return nil, nil
	}
	return []string{fmt.Sprintf("no reference node '%s' in design", ground)},
		[]string{fmt.Sprintf("connect a return point to %s (ground)", ground)}
}

// MinDegree flags floating or degree-1 electrical nodes. Ground is
// exempt.
type MinDegree struct{}

func (MinDegree) Name() string { return "min_degree" }

func (MinDegree) Check(g *graph.Graph, ground string) ([]string, []string) {
	var errors, fixes []string
	for _, v := range g.Vertices() {
		if v.Kind != graph.KindNode || v.ID == ground {
			continue
		}
		if g.Degree(v.ID) < 2 {
			errors = append(errors, fmt.Sprintf("floating or degree-1 node: %s", v.ID))
			fixes = append(fixes, fmt.Sprintf("add Rshunt %s %s 10Meg", v.ID, ground))
		}
	}
	return errors, fixes
}

// ParallelVoltageSources flags pairs of voltage sources connected
// across the same unordered node pair.
type ParallelVoltageSources struct{}

func (ParallelVoltageSources) Name() string { return "parallel_voltage_sources" }

func (ParallelVoltageSources) Check(g *graph.Graph, _ string) ([]string, []string) {
	var errors, fixes []string
	seen := make(map[[2]string]string)
	for _, v := range g.Vertices() {
		if v.Kind != graph.KindComp || !strings.EqualFold(v.CType, "V") {
			continue
		}
		nodes := make([]string, 0, 2)
		for _, nbr := range g.Neighbors(v.ID) {
			if nbr.Kind == graph.KindNode {
				nodes = append(nodes, nbr.ID)
			}
		}
		if len(nodes) != 2 {
			continue
		}
		sort.Strings(nodes)
		key := [2]string{nodes[0], nodes[1]}
		if first, dup := seen[key]; dup {
			errors = append(errors, fmt.Sprintf(
				"parallel voltage sources: %s and %s across (%s, %s)",
				first, v.ID, key[0], key[1]))
			fixes = append(fixes, fmt.Sprintf("insert 10m series resistance on %s", v.ID))
		} else {
			seen[key] = v.ID
		}
	}
	return errors, fixes
}

// esrParam matches an explicit series-resistance parameter in the raw
// component text.
var esrParam = regexp.MustCompile(`(?i)\b(rser|esr|res)\s*=\s*`)

// LCIdeal requires every inductor and capacitor to carry an ESR, either
// as an explicit parameter or as a structurally interposed series
// resistor on one of its nodes.
type LCIdeal struct{}

func (LCIdeal) Name() string { return "LC_ideal" }

func (LCIdeal) Check(g *graph.Graph, _ string) ([]string, []string) {
	var errors, fixes []string
	for _, v := range g.Vertices() {
		if v.Kind != graph.KindComp {
			continue
		}
		ct := strings.ToUpper(v.CType)
		if ct != "L" && ct != "C" {
			continue
		}
		raw := ""
		if v.Comp != nil {
			raw = v.Comp.Raw
		}
		if esrParam.MatchString(raw) {
			continue
		}
		if hasSeriesResistor(g, v.ID) {
			continue
		}
		errors = append(errors, fmt.Sprintf("%s (%s) has no series ESR (param or series R)", v.ID, ct))
		fixes = append(fixes, fmt.Sprintf("add a small series R with %s (10m-200m)", v.ID))
	}
	return errors, fixes
}

// hasSeriesResistor reports whether any node incident to the component
// connects to exactly one other component, and that component is a
// resistor.
func hasSeriesResistor(g *graph.Graph, ref string) bool {
	for _, node := range g.Neighbors(ref) {
		if node.Kind != graph.KindNode {
			continue
		}
		var others []*graph.Vertex
		for _, x := range g.Neighbors(node.ID) {
			if x.ID != ref && x.Kind == graph.KindComp {
				others = append(others, x)
			}
		}
		if len(others) == 1 && strings.EqualFold(others[0].CType, "R") {
			return true
		}
	}
	return false
}

// DevicePinCount checks observed terminal counts against the device
// class table. Behavioral and variable-arity classes are exempt.
type DevicePinCount struct{}

func (DevicePinCount) Name() string { return "device_pin_count" }

func (DevicePinCount) Check(g *graph.Graph, _ string) ([]string, []string) {
	var errors, fixes []string
	for _, v := range g.Vertices() {
		if v.Kind != graph.KindComp || v.Comp == nil {
			// Placeholder vertices from coupling references carry no
			// pin data to check.
			continue
		}
		ct := strings.ToUpper(v.CType)
		if !netlist.HasFixedPins(ct) {
			continue
		}
		want := netlist.PinCount[ct]
		have := len(v.Comp.Pins)
		if have != want {
			errors = append(errors, fmt.Sprintf(
				"%s (%s) has unexpected pin count: %d != %d", v.ID, ct, have, want))
			fixes = append(fixes, fmt.Sprintf("check pin order and model of %s", v.ID))
		}
	}
	return errors, fixes
}
