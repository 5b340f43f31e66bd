package netlist

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern captures bare words (including k=v pairs, with
// parenthesized values attached) and keeps parenthesized or braced
// groups together as single tokens.
var tokenPattern = regexp.MustCompile(`[\w.+\-/!$]+=\([^)]*\)|[\w.+\-/!$=]+|\([^)]*\)|\{[^}]*\}`)

// ParseStats describes what the parser did with its input.
type ParseStats struct {
	ProcessedLines int            `json:"processed_lines"`
	SkippedLines   int            `json:"skipped_lines"`
	ClassCounts    map[string]int `json:"class_counts"`
}

// Parse converts netlist text into an ordered component list. It never
// fails: lines it cannot classify (directives, comments, unknown device
// classes) are skipped.
func Parse(text string) []Component {
	comps, _ := ParseWithStats(text)
	return comps
}

// ParseWithStats is Parse plus line accounting per device class.
func ParseWithStats(text string) ([]Component, ParseStats) {
	stats := ParseStats{ClassCounts: make(map[string]int)}
	comps := make([]Component, 0)

	for _, line := range joinContinuations(text) {
		toks := tokenizeLine(line)
		if len(toks) == 0 {
			stats.SkippedLines++
			continue
		}

		ref := toks[0]
		ctype := strings.ToUpper(ref[:1])
		want, known := PinCount[ctype]
		if !known {
			// Directives (.tran, .param, ...) and unknown classes.
			stats.SkippedLines++
			continue
		}
		stats.ClassCounts[ctype]++

		if ctype == "K" {
			// Couplings carry no electrical terminals; the referenced
			// inductors are resolved at graph-build time from Raw.
			comps = append(comps, Component{Ref: ref, CType: ctype, Raw: line})
			stats.ProcessedLines++
			continue
		}

		rest := toks[1:]
		pins, tail := splitPins(rest, want)
		params := parseTail(ctype, tail)

		comps = append(comps, Component{
			Ref:    ref,
			CType:  ctype,
			Pins:   pins,
			Params: params,
			Raw:    line,
		})
		stats.ProcessedLines++
	}

	return comps, stats
}

// joinContinuations merges lines starting with '+' into the preceding
// logical line, space-separated.
func joinContinuations(text string) []string {
	out := make([]string, 0)
	acc := ""
	for _, ln := range strings.Split(text, "\n") {
		s := strings.TrimRight(ln, " \t\r")
		if strings.HasPrefix(s, "+") {
			acc += " " + strings.TrimLeft(s[1:], " \t")
			continue
		}
		if acc != "" {
			out = append(out, acc)
		}
		acc = s
	}
	if acc != "" {
		out = append(out, acc)
	}
	return out
}

// Tokenize exposes the line tokenizer for callers that need to revisit
// raw lines, such as coupling resolution during graph construction.
func Tokenize(line string) []string {
	return tokenizeLine(line)
}

// tokenizeLine strips comments and splits a logical line into tokens.
// Full-line comments start with '*'; inline comments start at the first
// ';' or '*' not immediately preceded by ')'.
func tokenizeLine(line string) []string {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "*") {
		return nil
	}
	s = stripInlineComment(s)
	return tokenPattern.FindAllString(s, -1)
}

func stripInlineComment(s string) string {
	for i, r := range s {
		if r != ';' && r != '*' {
			continue
		}
		if i > 0 && s[i-1] == ')' {
			continue
		}
		return s[:i]
	}
	return s
}

// isParamToken reports whether a token ends the node list: k=v pairs,
// parenthesized groups, and model/type keywords.
func isParamToken(t string) bool {
	if strings.Contains(t, "=") || strings.HasPrefix(t, "(") {
		return true
	}
	low := strings.ToLower(t)
	return strings.HasPrefix(low, "model") ||
		strings.HasPrefix(low, "mod") ||
		strings.HasPrefix(low, "type")
}

// splitPins consumes node tokens up to the class's expected count and
// returns the pins plus the unconsumed tail. Fixed-count classes fall
// back to the two leading tokens when too few node tokens were found.
func splitPins(rest []string, want int) ([]Pin, []string) {
	nodeToks := make([]string, 0, 4)
	if want > 0 {
		for _, t := range rest {
			if isParamToken(t) {
				break
			}
			nodeToks = append(nodeToks, t)
			if len(nodeToks) == want {
				break
			}
		}
		minNodes := want
		if minNodes > 2 {
			minNodes = 2
		}
		if len(nodeToks) < minNodes {
			if len(rest) >= 2 {
				nodeToks = rest[:2]
			} else {
				nodeToks = rest
			}
		}
	} else {
		// Variable-arity subcircuits: nodes run until the first
		// parameter-like token.
		for _, t := range rest {
			if isParamToken(t) {
				break
			}
			nodeToks = append(nodeToks, t)
		}
	}

	pins := make([]Pin, len(nodeToks))
	for i, n := range nodeToks {
		pins[i] = Pin{Name: strconv.Itoa(i + 1), Node: NormalizeNode(n)}
	}
	return pins, rest[len(nodeToks):]
}

// parseTail classifies the tokens after the node list: control-source
// references for F/H, a bare scalar value, a waveform keyword with its
// spec, and trailing k=v parameters.
func parseTail(ctype string, tail []string) map[string]string {
	params := make(map[string]string)
	i := 0
	if len(tail) > 0 {
		t0 := tail[0]
		t0low := strings.ToLower(t0)
		switch {
		case (ctype == "F" || ctype == "H") && !strings.Contains(t0, "="):
			params["ctrl"] = t0
			i = 1
			if len(tail) > 1 && !strings.Contains(tail[1], "=") {
				params["value"] = tail[1]
				i = 2
			}
		case !strings.Contains(t0, "=") && !WaveformKeywords[t0low] &&
			!strings.HasPrefix(t0, "(") && !strings.HasPrefix(t0, "{"):
			params["value"] = t0
			i = 1
		}
		if i < len(tail) && WaveformKeywords[strings.ToLower(tail[i])] {
			params["waveform"] = tail[i]
			i++
			if i < len(tail) {
				params["spec"] = strings.Join(tail[i:], " ")
			}
			i = len(tail)
		}
	}
	for _, t := range tail[i:] {
		if !strings.Contains(t, "=") || strings.HasPrefix(t, "=") {
			continue
		}
		k, v, _ := strings.Cut(t, "=")
		params[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), "()")
	}
	if len(params) == 0 {
		return nil
	}
	return params
}
