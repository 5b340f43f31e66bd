package erc

import (
	"fmt"
	"time"

	"github.com/voltlab/spicegraph/pkg/graph"
	"github.com/voltlab/spicegraph/pkg/netlist"
)

// Engine runs an ordered rule set against a graph. The engine never
// propagates a rule failure: a rule that panics contributes a single
// error entry naming it.
type Engine struct {
	rules  []Rule
	ground string
}

// NewEngine creates an engine with the default rule set.
func NewEngine(ground string) *Engine {
	return &Engine{rules: DefaultRules(), ground: ground}
}

// NewEngineWithRules creates an engine with an explicit rule set.
// Evaluation order is the slice order.
func NewEngineWithRules(ground string, rules []Rule) *Engine {
	return &Engine{rules: rules, ground: ground}
}

// Rules returns the rule set in evaluation order.
func (e *Engine) Rules() []Rule { return e.rules }

// Validate runs every rule in order and aggregates the outcome.
func (e *Engine) Validate(g *graph.Graph) *Report {
	start := time.Now()
	report := &Report{
		Errors: make([]string, 0),
		Fixes:  make([]string, 0),
	}

	for _, rule := range e.rules {
		errs, fixes := runRule(rule, g, e.ground)
		report.Errors = append(report.Errors, errs...)
		report.Fixes = append(report.Fixes, fixes...)
	}

	report.Pass = len(report.Errors) == 0
	report.Stats = g.Stats()
	report.Elapsed = time.Since(start)
	return report
}

// runRule isolates one rule invocation, converting a panic into a
// single error entry.
func runRule(rule Rule, g *graph.Graph, ground string) (errs, fixes []string) {
	defer func() {
		if r := recover(); r != nil {
			errs = []string{fmt.Sprintf("rule %s failed: %v", rule.Name(), r)}
			fixes = nil
		}
	}()
	return rule.Check(g, ground)
}

// Timing breaks down the stages of a full ERC pipeline run.
type Timing struct {
	Parse    time.Duration `json:"parse_time"`
	Build    time.Duration `json:"graph_time"`
	Validate time.Duration `json:"validation_time"`
	Total    time.Duration `json:"total_time"`
}

// RunERC is the complete pipeline: parse the netlist text, build the
// graph, validate it, and report per-stage timing.
func RunERC(text, ground string) (*Report, Timing) {
	var timing Timing
	start := time.Now()

	comps := netlist.Parse(text)
	timing.Parse = time.Since(start)

	buildStart := time.Now()
	g := graph.Build(comps)
	timing.Build = time.Since(buildStart)

	report := NewEngine(ground).Validate(g)
	timing.Validate = report.Elapsed
	timing.Total = time.Since(start)

	return report, timing
}
