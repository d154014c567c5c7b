package loader

import "strings"

// SplitAxis says how a 2-D tensor is distributed across multi-part files.
type SplitAxis int

const (
	// SplitByColumns shards each row: part p holds columns
	// [p*ne0, (p+1)*ne0) of every row.
	SplitByColumns SplitAxis = iota
	// SplitByRows shards whole rows: part p holds rows
	// [p*ne1, (p+1)*ne1).
	SplitByRows
)

func (a SplitAxis) String() string {
	switch a {
	case SplitByColumns:
		return "columns"
	case SplitByRows:
		return "rows"
	default:
		return "unknown"
	}
}

// splitRules maps tensor name substrings to split axes. The first match
// wins, so the embedding and projection overrides come before the broad
// "layers" rule.
var splitRules = []struct {
	substr string
	axis   SplitAxis
}{
	{"tok_embeddings", SplitByColumns},
	{"attention.wo.weight", SplitByColumns},
	{"feed_forward.w2.weight", SplitByColumns},
	{"layers", SplitByRows},
	{"output", SplitByRows},
}

// SplitFor returns the split axis for a tensor name. Names matching no
// rule split by columns.
func SplitFor(name string) SplitAxis {
	for _, rule := range splitRules {
		if strings.Contains(name, rule.substr) {
			return rule.axis
		}
	}
	return SplitByColumns
}
