// Package barcode finds the closest known barcode to a noisy candidate.
//
// Distances are either Hamming (substitutions only, patterns of a different
// length than the candidate are never compared) or Levenshtein (unit cost
// substitutions, insertions and deletions). A candidate matches when
// exactly one known pattern sits at the smallest distance and that distance
// is within budget. Ties are reported as Ambiguous and never broken.
package barcode

// Entry is one line of a barcode file.
type Entry struct {
	Label   string
	Pattern string
}

// Outcome of a lookup.
type Outcome int

const (
	NoMatch Outcome = iota
	Matched
	// Ambiguous means two or more patterns share the smallest distance.
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	}
	return "no match"
}

// Index holds the known patterns. It is read-only after NewIndex and safe
// for concurrent lookups.
type Index struct {
	root *node
	size int

	hood         map[string]neighbour
	hoodDistance int
}

// Option configures an Index.
type Option func(*Index)

// WithNeighbourhood precomputes every string within d substitutions of a
// pattern so Hamming lookups at exactly that budget are a map hit. The
// table is skipped when a pattern has a symbol outside ACGTN.
func WithNeighbourhood(d int) Option {
	return func(ix *Index) {
		ix.hoodDistance = d
		ix.hood = make(map[string]neighbour)
	}
}

// NewIndex builds an index. A pattern listed twice keeps its last label.
func NewIndex(entries []Entry, opts ...Option) *Index {
	ix := &Index{root: newNode(), hoodDistance: -1}
	for _, o := range opts {
		o(ix)
	}

	last := make(map[string]string, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, seen := last[e.Pattern]; !seen {
			order = append(order, e.Pattern)
		}
		last[e.Pattern] = e.Label
	}
	for _, p := range order {
		ix.root.insert(p, last[p])
	}
	ix.size = len(order)

	if ix.hood != nil {
		for _, p := range order {
			if !nucleotides(p) {
				// neighbours of other symbols are not enumerated, so
				// table hits could hide a tie
				ix.hood, ix.hoodDistance = nil, -1
				break
			}
		}
	}
	if ix.hood != nil {
		for _, p := range order {
			ix.expand(p, last[p])
		}
	}
	return ix
}

// Len is the number of distinct patterns.
func (ix *Index) Len() int {
	return ix.size
}

// BestMatch returns the label of the only pattern at the smallest distance
// from candidate, provided that distance is at most maxDistance.
func (ix *Index) BestMatch(candidate string, maxDistance int, useEdit bool) (string, Outcome) {
	if maxDistance < 0 {
		return "", NoMatch
	}
	if !useEdit && maxDistance == ix.hoodDistance {
		if n, ok := ix.hood[candidate]; ok {
			if n.tied {
				return "", Ambiguous
			}
			return n.label, Matched
		}
	}

	b := &best{limit: maxDistance}
	if useEdit {
		row := make([]int, len(candidate)+1)
		for j := range row {
			row[j] = j
		}
		ix.root.levenshtein(candidate, row, b)
	} else {
		ix.root.hamming(candidate, 0, 0, b)
	}

	switch {
	case b.count == 0:
		return "", NoMatch
	case b.count > 1:
		return "", Ambiguous
	}
	return b.label, Matched
}
