package barcode

// node is one prefix of the known patterns. label is set when the prefix
// is itself a pattern.
type node struct {
	children map[byte]*node
	keys     []byte // insertion order, so searches are deterministic
	terminal bool
	pattern  string
	label    string
}

func newNode() *node {
	return &node{children: make(map[byte]*node)}
}

func (n *node) insert(pattern, label string) {
	cur := n
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		next, ok := cur.children[c]
		if !ok {
			next = newNode()
			cur.children[c] = next
			cur.keys = append(cur.keys, c)
		}
		cur = next
	}
	cur.terminal = true
	cur.pattern = pattern
	cur.label = label
}

// best tracks the closest patterns seen during a search.
type best struct {
	limit    int // largest distance still worth reporting
	distance int
	label    string
	pattern  string
	count    int // patterns at distance
}

func (b *best) offer(n *node, d int) {
	switch {
	case d > b.limit:
		return
	case b.count == 0 || d < b.distance:
		b.distance, b.label, b.pattern, b.count = d, n.label, n.pattern, 1
		b.limit = d
	case d == b.distance:
		b.count++
	}
}

// hamming walks equal-length branches, counting substitutions. Branches
// are cut once they exceed the bound, never when they only reach it, so
// ties are still seen.
func (n *node) hamming(word string, depth, d int, b *best) {
	if d > b.limit {
		return
	}
	if depth == len(word) {
		if n.terminal {
			b.offer(n, d)
		}
		return
	}
	for _, c := range n.keys {
		cost := d
		if c != word[depth] {
			cost++
		}
		n.children[c].hamming(word, depth+1, cost, b)
	}
}

// levenshtein walks the trie carrying one row of the edit distance matrix
// between the current prefix and word.
func (n *node) levenshtein(word string, row []int, b *best) {
	if n.terminal {
		b.offer(n, row[len(word)])
	}
	if minInt(row) > b.limit {
		return
	}
	for _, c := range n.keys {
		next := make([]int, len(row))
		next[0] = row[0] + 1
		for j := 1; j <= len(word); j++ {
			sub := row[j-1]
			if word[j-1] != c {
				sub++
			}
			next[j] = min(sub, row[j]+1, next[j-1]+1)
		}
		n.children[c].levenshtein(word, next, b)
	}
}

func minInt(row []int) int {
	m := row[0]
	for _, v := range row[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
