package design

import (
	"fmt"
	"strings"
)

// ExpectedComponent is one entry of a plan the implementation is
// checked against.
type ExpectedComponent struct {
	Ref         string `json:"ref"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Progress reports how far the implemented design tracks an expected
// component list.
type Progress struct {
	Status             string              `json:"implementation_status"`
	ProgressPercentage float64             `json:"progress_percentage"`
	Implemented        int                 `json:"implemented_components"`
	Expected           int                 `json:"expected_components"`
	Missing            []ExpectedComponent `json:"missing_components"`
	Extra              []string            `json:"extra_components"`
	ComponentTypes     map[string]int      `json:"component_types"`
	LayerSummary       Summary             `json:"layer_summary"`
	Recommendations    []string            `json:"recommendations"`
}

// AnalyzeProgress diffs the implemented components against an expected
// list, one component per line as "ref type description...". Blank
// lines and lines starting with '#' are ignored.
func (d *Design) AnalyzeProgress(componentList string) Progress {
	expected := parseComponentList(componentList)
	comps := d.Components()

	typeCounts := make(map[string]int)
	implRefs := make([]string, 0, len(comps))
	implSet := make(map[string]bool, len(comps))
	for _, c := range comps {
		typeCounts[c.CType]++
		implRefs = append(implRefs, c.Ref)
		implSet[c.Ref] = true
	}

	expectedSet := make(map[string]bool, len(expected))
	missing := make([]ExpectedComponent, 0)
	for _, e := range expected {
		expectedSet[e.Ref] = true
		if !implSet[e.Ref] {
			missing = append(missing, e)
		}
	}
	extra := make([]string, 0)
	for _, ref := range implRefs {
		if !expectedSet[ref] {
			extra = append(extra, ref)
		}
	}

	status := "complete"
	if len(missing) > 0 {
		status = "in_progress"
	}
	denom := len(expected)
	if denom == 0 {
		denom = 1
	}

	p := Progress{
		Status:             status,
		ProgressPercentage: float64(len(implRefs)) / float64(denom) * 100,
		Implemented:        len(implRefs),
		Expected:           len(expected),
		Missing:            missing,
		Extra:              extra,
		ComponentTypes:     typeCounts,
		LayerSummary:       d.Summary(),
		Recommendations:    make([]string, 0),
	}

	if len(missing) > 0 {
		p.Recommendations = append(p.Recommendations,
			fmt.Sprintf("%d components still to implement", len(missing)))
		for i, m := range missing {
			if i == 3 {
				break
			}
			p.Recommendations = append(p.Recommendations,
				fmt.Sprintf("- %s (%s): %s", m.Ref, m.Type, m.Description))
		}
	}
	if len(extra) > 0 {
		p.Recommendations = append(p.Recommendations,
			fmt.Sprintf("additional components implemented: %s", strings.Join(extra, ", ")))
	}
	if last := d.last(); last != nil && !last.Locked {
		locked := 0
		for _, ly := range d.layers {
			if ly.Locked {
				locked++
			}
		}
		p.Recommendations = append(p.Recommendations,
			fmt.Sprintf("layers completed: %d/%d", locked, len(d.layers)),
			fmt.Sprintf("current layer %q: %d components", last.Name, len(last.Components)))
	}

	return p
}

func parseComponentList(list string) []ExpectedComponent {
	out := make([]ExpectedComponent, 0)
	for _, line := range strings.Split(list, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		out = append(out, ExpectedComponent{
			Ref:         parts[0],
			Type:        parts[1],
			Description: strings.Join(parts[2:], " "),
		})
	}
	return out
}
