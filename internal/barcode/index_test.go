package barcode

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func StringSlicesDiffer(expected []string, actual []string) (differ bool) {

	if len(expected) != len(actual) {
		return true
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return true
		}
	}
	return false
}

func TestMismatches(t *testing.T) {

	type test struct {
		input    string
		distance int
		want     []string
	}

	tests := []test{
		{"A", 0, []string{"A"}},
		{"A", 1, []string{"A", "C", "G", "T", "N"}},
		{"A", 2, []string{"A", "C", "G", "T", "N"}},
		{"AT", 0, []string{"AT"}},
		{"AT", 1, []string{"AT", "CT", "GT", "TT", "NT", "AA", "AC", "AG", "AN"}},
		{"AT", 2, []string{"AT",
			"CT", "GT", "TT", "NT",
			"AA", "AC", "AG", "AN",
			"CA", "CC", "CG", "CN",
			"GA", "GC", "GG", "GN",
			"TA", "TC", "TG", "TN",
			"NA", "NC", "NG", "NN",
		}},
		{"A+T", 1, []string{"A+T", "C+T", "G+T", "T+T", "N+T", "A+A", "A+C", "A+G", "A+N"}},
	}

	for _, test := range tests {
		hood := mismatches(test.input, test.distance)
		actual := make([]string, 0, len(hood))
		for s, d := range hood {
			actual = append(actual, s)
			if want := hamming(test.input, s); d != want {
				t.Errorf("%s -> %s: distance %d, want %d", test.input, s, d, want)
			}
		}

		sort.Strings(actual)
		sort.Strings(test.want)
		if StringSlicesDiffer(test.want, actual) {
			t.Errorf("Test: %#v, received: %#v", test, actual)
		}
	}
}

// hamming is the reference distance, -1 for different lengths.
func hamming(a, b string) int {
	if len(a) != len(b) {
		return -1
	}
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

func levenshtein(a, b string) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			sub := prev
			if a[i-1] != b[j-1] {
				sub++
			}
			row[j] = min(sub, row[j]+1, row[j-1]+1)
			prev = cur
		}
	}
	return row[len(b)]
}

// scan is the exhaustive matcher every index lookup must agree with.
func scan(entries []Entry, candidate string, maxDistance int, useEdit bool) (string, Outcome) {
	labels := make(map[string]string)
	for _, e := range entries {
		labels[e.Pattern] = e.Label
	}
	bestD, label, count := -1, "", 0
	for p, l := range labels {
		var d int
		if useEdit {
			d = levenshtein(candidate, p)
		} else if d = hamming(candidate, p); d < 0 {
			continue
		}
		switch {
		case bestD < 0 || d < bestD:
			bestD, label, count = d, l, 1
		case d == bestD:
			count++
		}
	}
	switch {
	case count == 0 || bestD > maxDistance:
		return "", NoMatch
	case count > 1:
		return "", Ambiguous
	}
	return label, Matched
}

var fourBarcodes = []Entry{
	{"1", "AAAA"},
	{"2", "CCCC"},
	{"3", "GGGG"},
	{"4", "TTTT"},
}

func TestBestMatch(t *testing.T) {
	ix := NewIndex(fourBarcodes)

	tests := []struct {
		name      string
		candidate string
		distance  int
		edit      bool
		want      string
		outcome   Outcome
	}{
		{"exact hamming", "TTTT", 0, false, "4", Matched},
		{"exact edit", "GGGG", 0, true, "3", Matched},
		{"one substitution", "TTAT", 1, false, "4", Matched},
		{"over budget", "TTAA", 1, false, "", NoMatch},
		{"tie", "AACC", 2, false, "", Ambiguous},
		{"tie edit", "AACC", 2, true, "", Ambiguous},
		{"short candidate hamming", "CCC", 1, false, "", NoMatch},
		{"short candidate edit", "CCC", 1, true, "2", Matched},
		{"short candidate edit zero", "CCC", 0, true, "", NoMatch},
		{"long candidate edit", "GGGGG", 1, true, "3", Matched},
		{"empty candidate", "", 4, true, "", Ambiguous},
		{"negative budget", "AAAA", -1, false, "", NoMatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, outcome := ix.BestMatch(tc.candidate, tc.distance, tc.edit)
			if got != tc.want || outcome != tc.outcome {
				t.Errorf("BestMatch(%q, %d, %v) = %q, %v; want %q, %v",
					tc.candidate, tc.distance, tc.edit, got, outcome, tc.want, tc.outcome)
			}
		})
	}
}

func TestExactAlwaysWins(t *testing.T) {
	entries := []Entry{
		{"a", "ACGTAC"}, {"b", "ACGTAG"}, {"c", "ACG"}, {"d", "TTGCAAT"},
	}
	ix := NewIndex(entries)
	for _, e := range entries {
		for _, edit := range []bool{false, true} {
			if got, outcome := ix.BestMatch(e.Pattern, 0, edit); got != e.Label || outcome != Matched {
				t.Errorf("BestMatch(%q, 0, %v) = %q, %v", e.Pattern, edit, got, outcome)
			}
		}
	}
}

func TestDuplicatePatternLastWins(t *testing.T) {
	ix := NewIndex([]Entry{{"first", "ACGT"}, {"second", "ACGT"}})
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
	if got, _ := ix.BestMatch("ACGT", 0, false); got != "second" {
		t.Errorf("BestMatch() = %q, want second", got)
	}
}

func randomSeq(r *rand.Rand, n int) string {
	return randomFrom(r, "ACGTN", n)
}

func randomFrom(r *rand.Rand, alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func TestAgreesWithScan(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 40; round++ {
		alphabet := "ACGTN"
		if round%4 == 3 {
			alphabet = "ACGTNR+"
		}
		entries := make([]Entry, 3+r.Intn(20))
		for i := range entries {
			entries[i] = Entry{fmt.Sprint(i), randomFrom(r, alphabet, 3+r.Intn(4))}
		}
		plain := NewIndex(entries)
		hooded := make([]*Index, 4)
		for d := range hooded {
			hooded[d] = NewIndex(entries, WithNeighbourhood(d))
		}
		for q := 0; q < 200; q++ {
			candidate := randomFrom(r, alphabet, 2+r.Intn(6))
			if q%3 == 0 {
				candidate = entries[r.Intn(len(entries))].Pattern
			}
			d := r.Intn(4)
			for _, edit := range []bool{false, true} {
				want, wantOutcome := scan(entries, candidate, d, edit)
				for name, ix := range map[string]*Index{"trie": plain, "neighbourhood": hooded[d]} {
					got, outcome := ix.BestMatch(candidate, d, edit)
					if got != want || outcome != wantOutcome {
						t.Fatalf("%s: BestMatch(%q, %d, %v) = %q, %v; scan = %q, %v (entries %v)",
							name, candidate, d, edit, got, outcome, want, wantOutcome, entries)
					}
				}
			}
		}
	}
}

func TestNeighbourhoodNonNucleotide(t *testing.T) {
	// '.' is never mutated into the table, the trie must still answer
	ix := NewIndex(fourBarcodes, WithNeighbourhood(1))
	if got, outcome := ix.BestMatch("AA.A", 1, false); got != "1" || outcome != Matched {
		t.Errorf("BestMatch(AA.A) = %q, %v", got, outcome)
	}
}

func TestNeighbourhoodKeepsTies(t *testing.T) {
	tests := []struct {
		entries   []Entry
		candidate string
	}{
		{[]Entry{{"one", "ACGT"}, {"two", "RCGT"}}, "GCGT"},
		{[]Entry{{"one", "RCGT"}, {"two", "ACGA"}}, "RCGA"},
		{[]Entry{{"one", "A+T"}, {"two", "ACA"}}, "ACT"},
	}
	for _, tc := range tests {
		for name, ix := range map[string]*Index{
			"trie":          NewIndex(tc.entries),
			"neighbourhood": NewIndex(tc.entries, WithNeighbourhood(1)),
		} {
			if got, outcome := ix.BestMatch(tc.candidate, 1, false); got != "" || outcome != Ambiguous {
				t.Errorf("%s %v: BestMatch(%q) = %q, %v; want ambiguous", name, tc.entries, tc.candidate, got, outcome)
			}
		}
	}
}

func BenchmarkMismatches(b *testing.B) {
	b.ReportAllocs()
	for mm := 0; mm <= 4; mm++ {
		b.Run(fmt.Sprintf("Mismatches%d", mm),
			func(b *testing.B) {
				for n := 0; n < b.N; n++ {
					mismatches("ACGTACGT+GATCGATC", mm)
				}
			})
	}
}

func BenchmarkBestMatch(b *testing.B) {
	r := rand.New(rand.NewSource(7))
	entries := make([]Entry, 384)
	for i := range entries {
		entries[i] = Entry{fmt.Sprint(i), randomSeq(r, 8)}
	}
	ix := NewIndex(entries)
	queries := make([]string, 1024)
	for i := range queries {
		queries[i] = randomSeq(r, 8)
	}
	for _, edit := range []bool{false, true} {
		b.Run(fmt.Sprintf("edit=%v", edit), func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				ix.BestMatch(queries[n%len(queries)], 2, edit)
			}
		})
	}
}
