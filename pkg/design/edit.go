package design

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voltlab/spicegraph/pkg/logging"
	"github.com/voltlab/spicegraph/pkg/netlist"
)

// PinEdit is the tagged union of accepted pin update shapes: an
// ordered node list (rebuilds the pin sequence) or a mapping keyed by
// positional name or per-class role alias (updates pins in place).
// Exactly one field is set.
type PinEdit struct {
	List []string
	Map  map[string]string
}

// Update describes an edit to one component. Zero-valued fields are
// left untouched; Params merge into the existing map.
type Update struct {
	Pins   *PinEdit
	Params map[string]string
	CType  string
}

// EditComponent applies an update to a component in the current
// unlocked layer.
func (d *Design) EditComponent(ref string, upd Update) error {
	err := d.editComponent(ref, upd)
	if d.metrics != nil {
		d.metrics.RecordLayerOp("edit_component", err)
	}
	return err
}

func (d *Design) editComponent(ref string, upd Update) error {
	last := d.last()
	if last == nil {
		return ErrNoLayers
	}
	if last.Locked {
		return fmt.Errorf("%w: roll back or begin a new layer", ErrLayerLocked)
	}

	for i := range last.Components {
		c := &last.Components[i]
		if c.Ref != ref {
			continue
		}
		if upd.Pins != nil {
			if err := d.applyPinEdit(c, upd.Pins); err != nil {
				return err
			}
		}
		if len(upd.Params) > 0 {
			if c.Params == nil {
				c.Params = make(map[string]string, len(upd.Params))
			}
			for k, v := range upd.Params {
				c.Params[k] = v
			}
		}
		if upd.CType != "" {
			c.CType = upd.CType
		}
		d.bump()
		d.logger.Debug("component edited", logging.Ref(ref), logging.Layer(last.Name))
		return nil
	}
	return fmt.Errorf("%w: %q in layer %q", ErrComponentNotFound, ref, last.Name)
}

func (d *Design) applyPinEdit(c *netlist.Component, edit *PinEdit) error {
	switch {
	case edit.List != nil:
		pins := make([]netlist.Pin, len(edit.List))
		for i, node := range edit.List {
			pins[i] = netlist.Pin{Name: strconv.Itoa(i + 1), Node: d.norm.Normalize(node)}
		}
		c.Pins = pins
		return nil
	case edit.Map != nil:
		mapping := resolvePinNames(c.CType, edit.Map)
		for i := range c.Pins {
			if node, ok := mapping[c.Pins[i].Name]; ok {
				c.Pins[i].Node = d.norm.Normalize(node)
			}
		}
		return nil
	default:
		return ErrBadPinShape
	}
}

// resolvePinNames translates role-alias keys (D/G/S/B and friends)
// into positional names when the mapping contains any non-numeric key.
func resolvePinNames(ctype string, pins map[string]string) map[string]string {
	numeric := true
	for k := range pins {
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		return pins
	}

	alias := netlist.PinAliases[strings.ToUpper(ctype)]
	out := make(map[string]string, len(pins))
	for k, node := range pins {
		name := k
		if mapped, ok := alias[strings.ToUpper(k)]; ok {
			name = mapped
		}
		out[name] = node
	}
	return out
}
