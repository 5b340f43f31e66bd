package design

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// feedbackHistoryLimit bounds retained history; oldest entries are
	// evicted first.
	feedbackHistoryLimit = 50
	// feedbackWindow is how many recent entries summaries look at.
	feedbackWindow = 10
)

// FeedbackEntry is one recorded operation outcome.
type FeedbackEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Operation string         `json:"operation"`
	Ref       string         `json:"component_ref,omitempty"`
	Layer     string         `json:"layer"`
	Data      map[string]any `json:"data,omitempty"`
}

// FeedbackSummary aggregates the recent history window.
type FeedbackSummary struct {
	TotalFeedback    int            `json:"total_feedback"`
	RecentOperations int            `json:"recent_operations"`
	OperationCounts  map[string]int `json:"operation_counts"`
	WarningCounts    map[string]int `json:"warning_counts"`
	ErrorCounts      map[string]int `json:"error_counts"`
	Insights         []string       `json:"insights"`
	Summary          string         `json:"summary"`
}

// feedbackTracker keeps a bounded operation history. Purely
// observational: it never fails, and malformed data degrades to an
// empty summary.
type feedbackTracker struct {
	history []FeedbackEntry
}

func (t *feedbackTracker) init() {
	t.history = make([]FeedbackEntry, 0, feedbackHistoryLimit)
}

// RecordFeedback appends an operation outcome to the bounded history.
func (d *Design) RecordFeedback(operation, ref string, data map[string]any) {
	layer := "none"
	if last := d.last(); last != nil {
		layer = last.Name
	}
	d.feedback.history = append(d.feedback.history, FeedbackEntry{
		Timestamp: time.Now(),
		Operation: operation,
		Ref:       ref,
		Layer:     layer,
		Data:      data,
	})
	if n := len(d.feedback.history); n > feedbackHistoryLimit {
		d.feedback.history = d.feedback.history[n-feedbackHistoryLimit:]
	}
}

// FeedbackHistory returns the retained entries, oldest first.
func (d *Design) FeedbackHistory() []FeedbackEntry {
	return d.feedback.history
}

// FeedbackSummary aggregates the most recent operations: per-operation
// counts, warning and error totals, and qualitative insights.
func (d *Design) FeedbackSummary() FeedbackSummary {
	history := d.feedback.history
	if len(history) == 0 {
		return FeedbackSummary{
			OperationCounts: map[string]int{},
			WarningCounts:   map[string]int{},
			ErrorCounts:     map[string]int{},
			Insights:        []string{},
			Summary:         "no feedback available",
		}
	}

	recent := history
	if len(recent) > feedbackWindow {
		recent = recent[len(recent)-feedbackWindow:]
	}

	opCounts := make(map[string]int)
	warnCounts := make(map[string]int)
	errCounts := make(map[string]int)
	for _, entry := range recent {
		opCounts[entry.Operation]++
		if n := countIn(entry.Data, "warnings"); n > 0 {
			warnCounts[entry.Operation] += n
		}
		if n := countIn(entry.Data, "errors"); n > 0 {
			errCounts[entry.Operation] += n
		}
	}

	insights := make([]string, 0, 3)
	if total := sumCounts(warnCounts); total > 0 {
		insights = append(insights, fmt.Sprintf("total warnings in last operations: %d", total))
	}
	if total := sumCounts(errCounts); total > 0 {
		insights = append(insights, fmt.Sprintf("total errors in last operations: %d", total))
	}
	if op, n := mostCommon(opCounts); op != "" {
		insights = append(insights, fmt.Sprintf("most common operation: %s (%d times)", op, n))
	}

	summary := "no significant patterns detected"
	if len(insights) > 0 {
		summary = strings.Join(insights, "; ")
	}

	return FeedbackSummary{
		TotalFeedback:    len(history),
		RecentOperations: len(recent),
		OperationCounts:  opCounts,
		WarningCounts:    warnCounts,
		ErrorCounts:      errCounts,
		Insights:         insights,
		Summary:          summary,
	}
}

// Recommendations derives heuristic suggestions from the feedback
// aggregates.
func (d *Design) Recommendations() []string {
	summary := d.FeedbackSummary()
	recs := make([]string, 0, 3)

	if total := sumCounts(summary.ErrorCounts); total > 3 {
		recs = append(recs, "multiple errors detected, run a final-phase validation for detailed analysis")
	}
	if total := sumCounts(summary.WarningCounts); total > 5 {
		recs = append(recs, "many warnings detected, consider adding missing components or connections")
	}
	if summary.OperationCounts["add_component"] > 5 {
		recs = append(recs, "many components added recently, check implementation progress for completion")
	}
	if len(recs) == 0 {
		recs = append(recs, "feedback patterns look normal, continue with current approach")
	}
	return recs
}

// countIn extracts the length of a warnings/errors list from loosely
// typed feedback data.
func countIn(data map[string]any, key string) int {
	v, ok := data[key]
	if !ok {
		return 0
	}
	switch list := v.(type) {
	case []string:
		return len(list)
	case []any:
		return len(list)
	case int:
		return list
	default:
		return 0
	}
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// mostCommon returns the highest-count operation; ties break by name
// so summaries are deterministic.
func mostCommon(m map[string]int) (string, int) {
	best, bestN := "", 0
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] > bestN {
			best, bestN = k, m[k]
		}
	}
	return best, bestN
}
