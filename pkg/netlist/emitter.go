package netlist

import (
	"fmt"
	"sort"
	"strings"
)

// EmitLayer is the emitter's view of one construction layer.
type EmitLayer struct {
	Name       string
	Locked     bool
	Components []Component
}

// Emit renders layers back to netlist text: a title comment, then per
// layer a header comment and one line per component. The output
// re-parses to the same (ref, ctype, pins) set.
func Emit(title string, layers []EmitLayer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* %s\n\n", title)

	for _, ly := range layers {
		fmt.Fprintf(&b, "* --- layer: %s (locked=%t) ---\n", ly.Name, ly.Locked)
		for _, c := range ly.Components {
			b.WriteString(FormatComponent(&c))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatComponent renders one component line: reference, node list,
// then value, waveform(spec), and remaining k=v parameters.
func FormatComponent(c *Component) string {
	parts := make([]string, 0, len(c.Pins)+len(c.Params)+1)
	parts = append(parts, c.Ref)
	for _, p := range c.Pins {
		parts = append(parts, p.Node)
	}

	if v, ok := c.Params["value"]; ok {
		parts = append(parts, v)
	}
	if wf, ok := c.Params["waveform"]; ok {
		wf = strings.TrimSpace(wf)
		spec := strings.TrimSpace(c.Params["spec"])
		if spec != "" {
			if !(strings.HasPrefix(spec, "(") && strings.HasSuffix(spec, ")")) {
				spec = "(" + spec + ")"
			}
			parts = append(parts, wf+spec)
		} else {
			parts = append(parts, wf)
		}
	}

	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		if k == "value" || k == "waveform" || k == "spec" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+c.Params[k])
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}
