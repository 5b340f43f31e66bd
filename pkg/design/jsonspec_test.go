package design

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/spicegraph/pkg/netlist"
)

func TestApplyNestedForm(t *testing.T) {
	doc := []byte(`{
		"title": "amp",
		"layers": [
			{"name": "power", "components": [
				{"ref": "V1", "type": "V", "pins": ["vcc", "0"], "params": {"value": "5"}}
			]},
			{"name": "load", "components": [
				{"ref": "R1", "type": "R", "pins": ["vcc", "0"], "params": {"value": "1k"}}
			]}
		]
	}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	result, err := d.Apply(spec, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.TotalLayers)
	assert.Equal(t, 2, result.Summary.TotalComponents)
	// Auto-lock seals every layer but the last.
	assert.Equal(t, 1, result.Summary.LockedLayers)
	assert.True(t, d.Layers()[0].Locked)
	assert.False(t, d.Layers()[1].Locked)
	require.NotNil(t, result.Validation)
}

func TestApplyFlatForm(t *testing.T) {
	doc := []byte(`{
		"components": [
			{"ref": "R1", "type": "R", "pins": ["a", "0"]},
			{"ref": "C1", "type": "C", "pins": ["a", "0"]}
		]
	}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	result, err := d.Apply(spec, Options{})
	require.NoError(t, err)

	require.Equal(t, 1, result.Summary.TotalLayers)
	assert.Equal(t, "auto", d.Layers()[0].Name)
	assert.Equal(t, 2, len(d.Layers()[0].Components))
	// The single synthetic layer is the last layer, so it stays open.
	assert.False(t, d.Layers()[0].Locked)
}

func TestApplyPinsMapOrdering(t *testing.T) {
	doc := []byte(`{
		"components": [
			{"ref": "M1", "type": "M", "pins": {"2": "g", "10": "b", "1": "d", "3": "s"}}
		]
	}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	_, err = d.Apply(spec, Options{})
	require.NoError(t, err)

	comps := d.Components()
	require.Len(t, comps, 1)
	// Numeric keys sort numerically, so "10" comes last.
	assert.Equal(t, []string{"d", "g", "s", "b"}, comps[0].Nodes())
}

func TestApplyEmptyPinsDefaultToGround(t *testing.T) {
	doc := []byte(`{
		"components": [{"ref": "R1", "type": "R"}]
	}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	result, err := d.Apply(spec, Options{})
	require.NoError(t, err)

	comps := d.Components()
	require.Len(t, comps, 1)
	assert.Equal(t, []string{"0", "0"}, comps[0].Nodes())
	require.NotNil(t, result.Validation)
}

func TestApplyLowercaseTypeNormalized(t *testing.T) {
	doc := []byte(`{
		"components": [{"ref": "r1", "ctype": "r", "pins": ["a", "0"]}]
	}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	_, err = d.Apply(spec, Options{})
	require.NoError(t, err)

	comps := d.Components()
	require.Len(t, comps, 1)
	assert.Equal(t, "R", comps[0].CType)
}

func TestApplyExplicitLockedOverridesAutolock(t *testing.T) {
	locked := true
	unlocked := false
	spec := &Spec{Layers: []LayerSpec{
		{
			Name:       "power",
			Locked:     &unlocked,
			Components: []ComponentSpec{{Ref: "V1", Type: "V", Pins: PinsSpec{List: []string{"vcc", "0"}}}},
		},
		{
			Name:       "load",
			Locked:     &locked,
			Components: []ComponentSpec{{Ref: "R1", Type: "R", Pins: PinsSpec{List: []string{"vcc", "0"}}}},
		},
	}}

	d := New()
	_, err := d.Apply(spec, Options{})
	// Explicit locked:false cannot keep a non-last layer open: the
	// auto-lock still seals it so the next layer can begin.
	require.NoError(t, err)
	assert.True(t, d.Layers()[0].Locked)
	assert.True(t, d.Layers()[1].Locked)
}

func TestApplyFailureLeavesDesignUntouched(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("base", ""))
	require.NoError(t, d.AddComponent("R1", "R", []string{"a", "0"}, nil))
	before := d.Version()

	// With auto-lock off the first layer stays open, so beginning the
	// second fails and the whole apply must roll back.
	spec := &Spec{Layers: []LayerSpec{
		{Name: "l1", Components: []ComponentSpec{{Ref: "V1", Type: "V", Pins: PinsSpec{List: []string{"vcc", "0"}}}}},
		{Name: "l2", Components: []ComponentSpec{{Ref: "R2", Type: "R", Pins: PinsSpec{List: []string{"vcc", "0"}}}}},
	}}
	_, err := d.Apply(spec, Options{DisableAutolock: true})
	require.ErrorIs(t, err, ErrLayerNotSealed)

	require.Len(t, d.Layers(), 1)
	assert.Equal(t, "base", d.Layers()[0].Name)
	assert.Equal(t, before, d.Version())
}

func TestApplyDuplicateLayerNameFails(t *testing.T) {
	spec := &Spec{Layers: []LayerSpec{
		{Name: "a", Components: []ComponentSpec{{Ref: "R1", Type: "R", Pins: PinsSpec{List: []string{"x", "0"}}}}},
		{Name: "a", Components: []ComponentSpec{{Ref: "R2", Type: "R", Pins: PinsSpec{List: []string{"x", "0"}}}}},
	}}
	d := New()
	_, err := d.Apply(spec, Options{})
	require.ErrorIs(t, err, ErrDuplicateLayer)
	assert.Empty(t, d.Layers())
}

func TestApplyNilSpec(t *testing.T) {
	d := New()
	_, err := d.Apply(nil, Options{})
	require.ErrorIs(t, err, ErrBadSpec)
}

func TestApplyStrictRejectsMissingRef(t *testing.T) {
	doc := []byte(`{"components": [{"type": "R", "pins": ["a", "0"]}]}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	_, err = d.Apply(spec, Options{Strict: true})
	require.ErrorIs(t, err, ErrBadSpec)

	// The default lenient mode accepts the same document.
	_, err = d.Apply(spec, Options{})
	require.NoError(t, err)
}

func TestApplyReplacesExistingState(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("old", ""))
	require.NoError(t, d.AddComponent("X1", "X", []string{"a", "b"}, nil))
	v := d.Version()

	spec := &Spec{Components: []ComponentSpec{
		{Ref: "R1", Type: "R", Pins: PinsSpec{List: []string{"a", "0"}}},
	}}
	_, err := d.Apply(spec, Options{})
	require.NoError(t, err)

	require.Len(t, d.Layers(), 1)
	assert.Equal(t, "auto", d.Layers()[0].Name)
	assert.Greater(t, d.Version(), v)
}

func TestParseSpecBadJSON(t *testing.T) {
	_, err := ParseSpec([]byte(`{"layers": [`))
	require.ErrorIs(t, err, ErrBadSpec)
}

func TestPinsSpecUnrecognizedShape(t *testing.T) {
	var spec ComponentSpec
	require.NoError(t, json.Unmarshal([]byte(`{"ref": "R1", "type": "R", "pins": 42}`), &spec))
	assert.Empty(t, spec.Pins.Ordered())
}

func TestExportRoundTrip(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("power", "supply rails"))
	require.NoError(t, d.AddComponent("V1", "V", []string{"vcc", "0"}, map[string]string{"value": "5"}))
	require.NoError(t, d.LockLayer())
	require.NoError(t, d.BeginLayer("load", ""))
	require.NoError(t, d.AddComponent("R1", "R", []string{"vcc", "0"}, map[string]string{"value": "1k"}))

	exported := d.Export()
	require.Len(t, exported.Layers, 2)
	assert.Equal(t, "power", exported.Layers[0].Name)
	assert.Equal(t, "supply rails", exported.Layers[0].Notes)
	require.NotNil(t, exported.Layers[0].Locked)
	assert.True(t, *exported.Layers[0].Locked)
	require.NotNil(t, exported.Layers[1].Locked)
	assert.False(t, *exported.Layers[1].Locked)

	// The export survives a JSON round trip into a fresh design.
	data, err := json.Marshal(exported)
	require.NoError(t, err)
	spec, err := ParseSpec(data)
	require.NoError(t, err)

	d2 := New()
	_, err = d2.Apply(spec, Options{})
	require.NoError(t, err)

	assert.Equal(t, d.Summary(), d2.Summary())
	assert.Equal(t, d.EmitNetlist(""), d2.EmitNetlist(""))
}

func TestExportAfterApplyPreservesComponents(t *testing.T) {
	doc := []byte(`{
		"layers": [
			{"name": "power", "components": [
				{"ref": "V1", "type": "V", "pins": ["vcc", "0"], "params": {"waveform": "DC", "spec": "12"}}
			]},
			{"name": "filter", "components": [
				{"ref": "L1", "type": "L", "pins": ["vcc", "out"], "params": {"value": "10u", "Rser": "0.1"}},
				{"ref": "C1", "type": "C", "pins": ["out", "0"], "params": {"value": "100n"}}
			]}
		]
	}`)
	spec, err := ParseSpec(doc)
	require.NoError(t, err)

	d := New()
	_, err = d.Apply(spec, Options{})
	require.NoError(t, err)

	exported := d.Export()
	require.Len(t, exported.Layers, 2)
	assert.Equal(t, "power", exported.Layers[0].Name)
	assert.Equal(t, "filter", exported.Layers[1].Name)

	got := exported.Layers[1].Components
	require.Len(t, got, 2)
	assert.Equal(t, "L1", got[0].Ref)
	assert.Equal(t, "L", got[0].Type)
	assert.Equal(t, []string{"vcc", "out"}, got[0].Pins.List)
	assert.Equal(t, map[string]string{"value": "10u", "Rser": "0.1"}, got[0].Params)

	// The emitted netlist re-parses to the same (ref, ctype, pins) set.
	reparsed := netlist.Parse(d.EmitNetlist(""))
	require.Len(t, reparsed, 3)
	for i, want := range d.Components() {
		assert.Equal(t, want.Ref, reparsed[i].Ref)
		assert.Equal(t, want.CType, reparsed[i].CType)
		assert.Equal(t, want.Pins, reparsed[i].Pins)
	}
}

func TestExportApplyRoundTripProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50

	node := gen.RegexMatch(`[a-z][a-z0-9]{0,4}`)
	value := gen.RegexMatch(`[1-9][0-9]{0,2}[kmu]?`)

	properties := gopter.NewProperties(params)
	properties.Property("apply(export(d)) preserves the emitted netlist", prop.ForAll(
		func(n1, n2, v1, v2 string) bool {
			d := New()
			if err := d.BeginLayer("l1", ""); err != nil {
				return false
			}
			if err := d.AddComponent("R1", "R", []string{n1, "0"}, map[string]string{"value": v1}); err != nil {
				return false
			}
			if err := d.LockLayer(); err != nil {
				return false
			}
			if err := d.BeginLayer("l2", ""); err != nil {
				return false
			}
			if err := d.AddComponent("C1", "C", []string{n2, "0"}, map[string]string{"value": v2}); err != nil {
				return false
			}

			d2 := New()
			if _, err := d2.Apply(d.Export(), Options{}); err != nil {
				return false
			}
			return d.EmitNetlist("") == d2.EmitNetlist("")
		},
		node, node, value, value,
	))
	properties.TestingRun(t)
}
