package netlist

// Pin connects one component terminal to an electrical node.
// Name is the positional label ("1", "2", ...); Node is the
// normalized electrical node identifier.
type Pin struct {
	Name string `json:"name"`
	Node string `json:"node"`
}

// Component is one parsed netlist element.
type Component struct {
	Ref    string            `json:"ref"`
	CType  string            `json:"type"`
	Pins   []Pin             `json:"pins"`
	Params map[string]string `json:"params,omitempty"`
	Raw    string            `json:"-"` // original line, debug only
}

// Clone creates a deep copy of a component.
func (c *Component) Clone() *Component {
	clone := &Component{
		Ref:   c.Ref,
		CType: c.CType,
		Pins:  make([]Pin, len(c.Pins)),
		Raw:   c.Raw,
	}
	copy(clone.Pins, c.Pins)
	if c.Params != nil {
		clone.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			clone.Params[k] = v
		}
	}
	return clone
}

// Nodes returns the electrical node ids referenced by the component's
// pins, in pin order.
func (c *Component) Nodes() []string {
	nodes := make([]string, len(c.Pins))
	for i, p := range c.Pins {
		nodes[i] = p.Node
	}
	return nodes
}

// VariablePins marks a device class whose terminal count is free (X
// subcircuits) as opposed to the fixed counts in PinCount.
const VariablePins = -1

// PinCount maps a device-class letter to its expected terminal count.
// K (magnetic coupling) carries no electrical terminals of its own;
// X (subcircuit) takes any number.
var PinCount = map[string]int{
	// Passives and independent sources
	"R": 2, "L": 2, "C": 2, "V": 2, "I": 2, "D": 2,
	// Actives
	"M": 4, // MOS: D G S B
	"Q": 3, // BJT: C B E
	"J": 3, // JFET: D G S
	// Dependent / behavioral sources
	"E": 4, // VCVS
	"G": 4, // VCCS
	"F": 2, // CCCS, control source in params
	"H": 2, // CCVS, control source in params
	"B": 2,
	// Subcircuits and couplings
	"X": VariablePins,
	"K": 0,
}

// variableClasses are exempt from strict pin-count checking: their
// terminal count is behavioral or free-form.
var variableClasses = map[string]bool{
	"E": true, "G": true, "H": true, "F": true, "B": true, "X": true, "K": true,
}

// HasFixedPins reports whether the class participates in strict
// pin-count validation.
func HasFixedPins(ctype string) bool {
	if variableClasses[ctype] {
		return false
	}
	want, ok := PinCount[ctype]
	return ok && want > 0
}

// PinAliases maps role-style pin names to positional names, per device
// class. Used when editing pins through a role-keyed mapping.
var PinAliases = map[string]map[string]string{
	"D": {"A": "1", "K": "2"},
	"Q": {"C": "1", "B": "2", "E": "3"},
	"J": {"D": "1", "G": "2", "S": "3"},
	"M": {"D": "1", "G": "2", "S": "3", "B": "4"},
}

// WaveformKeywords are the source specifications recognized after the
// node list of an independent source line.
var WaveformKeywords = map[string]bool{
	"dc": true, "ac": true, "pulse": true, "sin": true,
	"exp": true, "sffm": true, "pwl": true,
}
