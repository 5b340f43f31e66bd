package netlist

import "strings"

// GroundNode is the canonical reference node identifier.
const GroundNode = "0"

// defaultGroundAliases are the textual spellings collapsed onto the
// canonical ground node.
var defaultGroundAliases = map[string]bool{
	"0": true, "gnd": true, "gnd!": true, "earth": true,
}

// NormalizeNode collapses ground aliases onto GroundNode and trims
// surrounding whitespace. Any other identifier passes through unchanged.
func NormalizeNode(node string) string {
	s := strings.TrimSpace(node)
	if defaultGroundAliases[strings.ToLower(s)] {
		return GroundNode
	}
	return s
}

// Normalizer carries a configurable ground alias set for callers that
// extend the default spellings.
type Normalizer struct {
	aliases map[string]bool
}

// NewNormalizer builds a normalizer from the default aliases plus any
// extras.
func NewNormalizer(extra ...string) *Normalizer {
	aliases := make(map[string]bool, len(defaultGroundAliases)+len(extra))
	for a := range defaultGroundAliases {
		aliases[a] = true
	}
	for _, a := range extra {
		aliases[strings.ToLower(strings.TrimSpace(a))] = true
	}
	return &Normalizer{aliases: aliases}
}

// Normalize applies the alias set to one node identifier.
func (n *Normalizer) Normalize(node string) string {
	s := strings.TrimSpace(node)
	if n.aliases[strings.ToLower(s)] {
		return GroundNode
	}
	return s
}
