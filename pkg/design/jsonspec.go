package design

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/voltlab/spicegraph/pkg/erc"
	"github.com/voltlab/spicegraph/pkg/logging"
)

// validate is the singleton struct validator for strict spec checks.
var specValidator = validator.New()

// Spec is the JSON netlist specification. Either Layers is present
// (nested form) or Components is, in which case the components are
// wrapped into a single synthetic layer.
type Spec struct {
	Title      string          `json:"title,omitempty"`
	Name       string          `json:"name,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Layers     []LayerSpec     `json:"layers,omitempty" validate:"omitempty,dive"`
	Components []ComponentSpec `json:"components,omitempty" validate:"omitempty,dive"`
}

// LayerSpec is one layer in the nested specification form. An explicit
// Locked:true seals the layer even when auto-lock is off; non-last
// layers are sealed regardless, since the next layer requires a sealed
// predecessor.
type LayerSpec struct {
	Name       string          `json:"name,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Locked     *bool           `json:"locked,omitempty"`
	Components []ComponentSpec `json:"components" validate:"dive"`
}

// ComponentSpec is one component in the specification.
type ComponentSpec struct {
	Ref     string            `json:"ref" validate:"required"`
	Type    string            `json:"type" validate:"required_without=TypeAlt"`
	TypeAlt string            `json:"ctype,omitempty"`
	Pins    PinsSpec          `json:"pins" validate:"-"`
	Params  map[string]string `json:"params,omitempty"`
}

// CType resolves the device class from either accepted key.
func (c *ComponentSpec) CType() string {
	if c.Type != "" {
		return c.Type
	}
	return c.TypeAlt
}

// PinsSpec accepts the two pin shapes the specification allows: an
// ordered node list, or a mapping keyed by a sortable index. Anything
// else is treated as empty rather than rejected; the defaulting in
// Apply keeps construction from failing.
type PinsSpec struct {
	List []string
	Map  map[string]string
}

// UnmarshalJSON implements the list-or-map union.
func (p *PinsSpec) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		p.List = list
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		p.Map = m
		return nil
	}
	// Unrecognized shape: leave empty, the adapter defaults it.
	return nil
}

// MarshalJSON emits whichever shape is populated, the list by default.
func (p PinsSpec) MarshalJSON() ([]byte, error) {
	if p.Map != nil {
		return json.Marshal(p.Map)
	}
	if p.List == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(p.List)
}

// Ordered flattens the pin shape into an ordered node list. Mapping
// keys sort numerically when possible, lexically otherwise.
func (p *PinsSpec) Ordered() []string {
	if p.Map == nil {
		return p.List
	}
	keys := make([]string, 0, len(p.Map))
	numeric := true
	for k := range p.Map {
		keys = append(keys, k)
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
		}
	}
	if numeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
	} else {
		sort.Strings(keys)
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = p.Map[k]
	}
	return out
}

// Options tunes Apply behavior. The zero value matches the documented
// defaults: auto-lock on, lenient shapes.
type Options struct {
	// DisableAutolock keeps non-final layers unlocked unless their
	// spec says otherwise.
	DisableAutolock bool
	// Strict validates the spec shape up front and rejects malformed
	// input instead of defaulting it.
	Strict bool
}

// ApplyResult pairs the post-rebuild layer summary with a moderate
// validation report.
type ApplyResult struct {
	Summary    Summary     `json:"summary"`
	Validation *erc.Report `json:"validation"`
}

// ParseSpec decodes a JSON specification document.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSpec, err)
	}
	return &spec, nil
}

// Apply performs a full replace: the existing design is discarded and
// rebuilt from the specification. Missing or empty pin lists default
// to two ground pins so construction never fails on shape; structural
// problems surface in the returned layer_complete validation instead.
func (d *Design) Apply(spec *Spec, opts Options) (*ApplyResult, error) {
	result, err := d.apply(spec, opts)
	if d.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		d.metrics.ApplyTotal.WithLabelValues(status).Inc()
	}
	return result, err
}

func (d *Design) apply(spec *Spec, opts Options) (*ApplyResult, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrBadSpec)
	}
	if opts.Strict {
		if err := specValidator.Struct(spec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSpec, err)
		}
	}

	layers := spec.Layers
	if layers == nil {
		// Flat form: wrap into one synthetic layer.
		name := spec.Name
		if name == "" {
			name = "auto"
		}
		layers = []LayerSpec{{Name: name, Notes: spec.Notes, Components: spec.Components}}
	}

	// Rebuild on a scratch design so a mid-apply failure leaves the
	// current state untouched.
	scratch := New(WithGround(d.ground))
	scratch.norm = d.norm

	for idx, ly := range layers {
		isLast := idx == len(layers)-1
		if err := scratch.applyLayer(ly, idx, isLast, opts); err != nil {
			return nil, err
		}
	}

	d.layers = scratch.layers
	d.version += scratch.version
	if d.metrics != nil {
		d.metrics.UpdateDesignGauges(d.version, len(d.layers), len(d.Components()))
	}
	d.logger.Info("specification applied",
		logging.Count(len(d.layers)),
		logging.Version(d.version))

	summary := d.Summary()
	validation, _ := d.Validate(erc.PhaseLayerComplete, false)
	return &ApplyResult{Summary: summary, Validation: validation}, nil
}

func (d *Design) applyLayer(ly LayerSpec, idx int, isLast bool, opts Options) error {
	name := ly.Name
	if name == "" {
		name = fmt.Sprintf("layer-%d", idx+1)
	}
	if err := d.beginLayer(name, ly.Notes); err != nil {
		return err
	}

	for _, comp := range ly.Components {
		pins := comp.Pins.Ordered()
		if len(pins) == 0 {
			// Lenient default: ground both terminals and let
			// validation report the structural problem.
			pins = []string{d.ground, d.ground}
		}
		if err := d.addComponent(comp.Ref, strings.ToUpper(comp.CType()), pins, comp.Params); err != nil {
			return err
		}
	}

	// Lock policy: an explicit locked:true always seals; otherwise
	// every layer but the last is sealed unless auto-lock is off.
	wantLocked := (ly.Locked != nil && *ly.Locked) || (!opts.DisableAutolock && !isLast)
	if wantLocked {
		// Empty layers stay unlocked rather than failing the apply.
		_ = d.lockLayer()
	}
	return nil
}

// Export is the inverse of Apply: the current layers rendered as a
// nested specification, pins as ordered node lists.
func (d *Design) Export() *Spec {
	if d.metrics != nil {
		d.metrics.ExportTotal.Inc()
	}
	spec := &Spec{Title: "Layered Netlist", Layers: make([]LayerSpec, 0, len(d.layers))}
	for _, ly := range d.layers {
		comps := make([]ComponentSpec, 0, len(ly.Components))
		for _, c := range ly.Components {
			params := make(map[string]string, len(c.Params))
			for k, v := range c.Params {
				params[k] = v
			}
			comps = append(comps, ComponentSpec{
				Ref:    c.Ref,
				Type:   c.CType,
				Pins:   PinsSpec{List: c.Nodes()},
				Params: params,
			})
		}
		locked := ly.Locked
		spec.Layers = append(spec.Layers, LayerSpec{
			Name:       ly.Name,
			Notes:      ly.Notes,
			Locked:     &locked,
			Components: comps,
		})
	}
	return spec
}
