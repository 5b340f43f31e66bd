package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeProgressComplete(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("l1", ""))
	require.NoError(t, d.AddComponent("V1", "V", []string{"vcc", "0"}, nil))
	require.NoError(t, d.AddComponent("R1", "R", []string{"vcc", "0"}, nil))

	p := d.AnalyzeProgress("V1 V supply\nR1 R load")
	assert.Equal(t, "complete", p.Status)
	assert.Equal(t, 100.0, p.ProgressPercentage)
	assert.Empty(t, p.Missing)
	assert.Empty(t, p.Extra)
	assert.Equal(t, map[string]int{"V": 1, "R": 1}, p.ComponentTypes)
}

func TestAnalyzeProgressMissingAndExtra(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("l1", ""))
	require.NoError(t, d.AddComponent("R1", "R", []string{"a", "0"}, nil))
	require.NoError(t, d.AddComponent("C9", "C", []string{"a", "0"}, nil))

	p := d.AnalyzeProgress("R1 R load\nV1 V supply rail\nL1 L choke")
	assert.Equal(t, "in_progress", p.Status)
	require.Len(t, p.Missing, 2)
	assert.Equal(t, "V1", p.Missing[0].Ref)
	assert.Equal(t, "supply rail", p.Missing[0].Description)
	assert.Equal(t, []string{"C9"}, p.Extra)

	require.NotEmpty(t, p.Recommendations)
	assert.Contains(t, p.Recommendations[0], "2 components still to implement")
	assert.Contains(t, p.Recommendations[1], "V1 (V)")
}

func TestAnalyzeProgressMissingCapAtThree(t *testing.T) {
	d := New()
	p := d.AnalyzeProgress("R1 R\nR2 R\nR3 R\nR4 R\nR5 R")
	require.Len(t, p.Missing, 5)
	// Recommendation detail stops after the first three missing refs.
	detail := 0
	for _, r := range p.Recommendations {
		if len(r) > 0 && r[0] == '-' {
			detail++
		}
	}
	assert.Equal(t, 3, detail)
}

func TestAnalyzeProgressOpenLayerCounts(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("power", ""))
	require.NoError(t, d.AddComponent("V1", "V", []string{"vcc", "0"}, nil))
	require.NoError(t, d.LockLayer())
	require.NoError(t, d.BeginLayer("load", ""))
	require.NoError(t, d.AddComponent("R1", "R", []string{"vcc", "0"}, nil))

	p := d.AnalyzeProgress("V1 V\nR1 R")
	assert.Contains(t, p.Recommendations, "layers completed: 1/2")
	assert.Contains(t, p.Recommendations, `current layer "load": 1 components`)
}

func TestParseComponentListSkipsCommentsAndBlanks(t *testing.T) {
	list := "# plan\n\nR1 R load\nbogus\n  V1 V supply  \n"
	expected := parseComponentList(list)
	require.Len(t, expected, 2)
	assert.Equal(t, "R1", expected[0].Ref)
	assert.Equal(t, "V1", expected[1].Ref)
}

func TestAnalyzeProgressEmptyPlan(t *testing.T) {
	d := New()
	require.NoError(t, d.BeginLayer("l1", ""))
	require.NoError(t, d.AddComponent("R1", "R", []string{"a", "0"}, nil))

	p := d.AnalyzeProgress("")
	assert.Equal(t, "complete", p.Status)
	assert.Equal(t, 0, p.Expected)
	assert.Equal(t, []string{"R1"}, p.Extra)
}
