// Package design implements the layered construction state machine at
// the heart of the netlist core: an ordered sequence of lockable
// layers holding components, with contextual validation, a JSON
// specification adapter, netlist emission, and a bounded feedback
// history.
package design

import (
	"fmt"
	"strconv"

	"github.com/voltlab/spicegraph/pkg/logging"
	"github.com/voltlab/spicegraph/pkg/metrics"
	"github.com/voltlab/spicegraph/pkg/netlist"
)

// Layer is one ordered, lockable unit of circuit construction. While
// unlocked it is the only mutable layer; once locked it is immutable
// except via rollback.
type Layer struct {
	Name       string              `json:"name"`
	Locked     bool                `json:"locked"`
	Components []netlist.Component `json:"components"`
	Notes      string              `json:"notes,omitempty"`
}

// Design is the authoritative mutable state: an ordered layer sequence
// plus a version counter incremented on every successful mutation.
// At most one unlocked layer exists and it is always the last one.
//
// A Design is not safe for concurrent mutation; the owner serializes
// access, one Design per logical session.
type Design struct {
	ground   string
	layers   []*Layer
	version  uint64
	norm     *netlist.Normalizer
	feedback feedbackTracker
	logger   logging.Logger
	metrics  *metrics.Registry
}

// Option configures a Design.
type Option func(*Design)

// WithGround overrides the canonical ground node identifier.
func WithGround(ground string) Option {
	return func(d *Design) { d.ground = ground }
}

// WithGroundAliases extends the spellings normalized onto ground.
func WithGroundAliases(aliases ...string) Option {
	return func(d *Design) { d.norm = netlist.NewNormalizer(aliases...) }
}

// WithLogger attaches a structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(d *Design) { d.logger = logger }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(d *Design) { d.metrics = reg }
}

// New creates an empty design.
func New(opts ...Option) *Design {
	d := &Design{
		ground: netlist.GroundNode,
		norm:   netlist.NewNormalizer(),
		logger: logging.NewNopLogger(),
	}
	d.feedback.init()
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ground returns the canonical ground identifier for this design.
func (d *Design) Ground() string { return d.ground }

// Version returns the mutation counter.
func (d *Design) Version() uint64 { return d.version }

// Layers returns the layer sequence. Callers must not mutate it.
func (d *Design) Layers() []*Layer { return d.layers }

// last returns the current (final) layer, or nil when empty.
func (d *Design) last() *Layer {
	if len(d.layers) == 0 {
		return nil
	}
	return d.layers[len(d.layers)-1]
}

func (d *Design) bump() {
	d.version++
	if d.metrics != nil {
		d.metrics.UpdateDesignGauges(d.version, len(d.layers), len(d.Components()))
	}
}

// BeginLayer appends a new unlocked, empty layer. The previous layer
// must be sealed and the name must be unused anywhere in the design.
func (d *Design) BeginLayer(name, notes string) error {
	err := d.beginLayer(name, notes)
	if d.metrics != nil {
		d.metrics.RecordLayerOp("begin_layer", err)
	}
	return err
}

func (d *Design) beginLayer(name, notes string) error {
	if last := d.last(); last != nil && !last.Locked {
		return fmt.Errorf("%w: lock %q or roll back before beginning %q", ErrLayerNotSealed, last.Name, name)
	}
	for _, ly := range d.layers {
		if ly.Name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateLayer, name)
		}
	}
	d.layers = append(d.layers, &Layer{Name: name, Notes: notes})
	d.bump()
	d.logger.Info("layer started", logging.Layer(name), logging.Version(d.version))
	return nil
}

// AddComponent appends a component to the current unlocked layer. Pin
// nodes are normalized; positional pin names are assigned in order.
func (d *Design) AddComponent(ref, ctype string, pins []string, params map[string]string) error {
	err := d.addComponent(ref, ctype, pins, params)
	if d.metrics != nil {
		d.metrics.RecordLayerOp("add_component", err)
	}
	return err
}

func (d *Design) addComponent(ref, ctype string, pins []string, params map[string]string) error {
	last := d.last()
	if last == nil {
		return fmt.Errorf("%w: begin a layer first", ErrNoLayers)
	}
	if last.Locked {
		return fmt.Errorf("%w: roll back or begin a new layer", ErrLayerLocked)
	}

	pinObjs := make([]netlist.Pin, len(pins))
	for i, node := range pins {
		pinObjs[i] = netlist.Pin{Name: strconv.Itoa(i + 1), Node: d.norm.Normalize(node)}
	}
	var p map[string]string
	if len(params) > 0 {
		p = make(map[string]string, len(params))
		for k, v := range params {
			p[k] = v
		}
	}

	last.Components = append(last.Components, netlist.Component{
		Ref:    ref,
		CType:  ctype,
		Pins:   pinObjs,
		Params: p,
	})
	d.bump()
	d.logger.Debug("component added", logging.Ref(ref), logging.Layer(last.Name))
	return nil
}

// LockLayer seals the current layer. Locking an already-locked layer
// is a harmless no-op; locking an empty layer is an error.
func (d *Design) LockLayer() error {
	err := d.lockLayer()
	if d.metrics != nil {
		d.metrics.RecordLayerOp("lock_layer", err)
	}
	return err
}

func (d *Design) lockLayer() error {
	last := d.last()
	if last == nil {
		return ErrNoLayers
	}
	if len(last.Components) == 0 {
		return fmt.Errorf("%w: %q, add components first", ErrEmptyLayerLock, last.Name)
	}
	if last.Locked {
		return nil
	}
	last.Locked = true
	d.bump()
	d.logger.Info("layer sealed", logging.Layer(last.Name), logging.Count(len(last.Components)))
	return nil
}

// RollbackTo truncates the design to the named layer inclusive and
// reopens it for editing.
func (d *Design) RollbackTo(name string) error {
	err := d.rollbackTo(name)
	if d.metrics != nil {
		d.metrics.RecordLayerOp("rollback_to", err)
	}
	return err
}

func (d *Design) rollbackTo(name string) error {
	for i, ly := range d.layers {
		if ly.Name == name {
			d.layers = d.layers[:i+1]
			ly.Locked = false
			d.bump()
			d.logger.Info("rolled back", logging.Layer(name), logging.Version(d.version))
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrLayerNotFound, name)
}

// Components returns the union of components across all layers, in
// layer order.
func (d *Design) Components() []netlist.Component {
	out := make([]netlist.Component, 0)
	for _, ly := range d.layers {
		out = append(out, ly.Components...)
	}
	return out
}

// LayerSummary describes one layer for reporting.
type LayerSummary struct {
	Name           string `json:"name"`
	Locked         bool   `json:"locked"`
	ComponentCount int    `json:"component_count"`
	Notes          string `json:"notes"`
}

// Summary describes the whole design for reporting.
type Summary struct {
	TotalLayers     int            `json:"total_layers"`
	LockedLayers    int            `json:"locked_layers"`
	TotalComponents int            `json:"total_components"`
	Layers          []LayerSummary `json:"layers"`
}

// Summary reports layer counts and per-layer detail.
func (d *Design) Summary() Summary {
	s := Summary{Layers: make([]LayerSummary, 0, len(d.layers))}
	for _, ly := range d.layers {
		s.TotalLayers++
		if ly.Locked {
			s.LockedLayers++
		}
		s.TotalComponents += len(ly.Components)
		s.Layers = append(s.Layers, LayerSummary{
			Name:           ly.Name,
			Locked:         ly.Locked,
			ComponentCount: len(ly.Components),
			Notes:          ly.Notes,
		})
	}
	return s
}

// EmitNetlist renders the design back to netlist text, one commented
// section per layer.
func (d *Design) EmitNetlist(title string) string {
	if title == "" {
		title = "Layered Netlist"
	}
	layers := make([]netlist.EmitLayer, len(d.layers))
	for i, ly := range d.layers {
		layers[i] = netlist.EmitLayer{
			Name:       ly.Name,
			Locked:     ly.Locked,
			Components: ly.Components,
		}
	}
	return netlist.Emit(title, layers)
}
