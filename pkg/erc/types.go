package erc

import (
	"time"

	"github.com/voltlab/spicegraph/pkg/graph"
)

// Phase identifies the construction stage a validation ran under.
type Phase string

const (
	PhaseInProgress    Phase = "in_progress"
	PhaseLayerComplete Phase = "layer_complete"
	PhaseFinal         Phase = "final"
)

// Rule is one deterministic structural or electrical check. Rules are
// pure: they inspect the graph and report problems with suggested
// fixes, never mutating anything.
type Rule interface {
	// Name returns a stable identifier used in failure reports.
	Name() string

	// Check inspects the graph and returns problem descriptions with
	// matching fix suggestions.
	Check(g *graph.Graph, ground string) (errors []string, fixes []string)
}

// Report is the aggregated outcome of a validation run.
type Report struct {
	Pass     bool          `json:"pass"`
	Errors   []string      `json:"errors"`
	Warnings []string      `json:"warnings,omitempty"`
	Fixes    []string      `json:"fixes"`
	Stats    graph.Stats   `json:"stats"`
	Phase    Phase         `json:"phase,omitempty"`
	Message  string        `json:"message,omitempty"`
	Elapsed  time.Duration `json:"-"`
}
