// ═══════════════════════════════════════════════════════════════════════════════
// RADIX TREE: the token dictionary
// ═══════════════════════════════════════════════════════════════════════════════
// The radix tree is the source of truth for which terms exist in the index.
// It is a compressed trie: edges carry whole runs of bytes instead of one byte
// each, and an internal node is only kept around if it either holds a value or
// branches into two or more children.
//
// Layout, grounded on the classic radix/patricia structure (compare the
// pack's caravan-go-immutable-radix "iradix.go", which keeps an edge label
// plus a child pointer per branch): here each node owns a map from the first
// byte of an outgoing edge to the child reached by that edge, and the child
// itself stores its own edge label as `prefix`. Unlike that reference tree,
// this one mutates in place — spec's concurrency model is single-threaded
// cooperative, so there's no need for the copy-on-write transaction log an
// immutable tree would otherwise require.
//
//	root
//	 └─ 'q' ─► node{prefix:"quick", value:<postings of "quick">}
//	            └─ 'l' ─► node{prefix:"ly", value:<postings of "quickly">}
//
// ═══════════════════════════════════════════════════════════════════════════════

package minidex

import "sort"

// radixNode is one node of the tree. prefix is the edge label leading to
// this node from its parent (the root's own prefix is always empty and is
// never consulted). value is non-nil exactly when the path terminating at
// this node is a live key.
type radixNode struct {
	prefix   string
	children map[byte]*radixNode
	value    *termPostings
}

// RadixTree is the token dictionary. The zero value is not usable; use
// newRadixTree.
type RadixTree struct {
	root *radixNode
	size int // number of live keys, maintained incrementally
}

func newRadixTree() *RadixTree {
	return &RadixTree{root: &radixNode{}}
}

// Len returns the number of live keys.
func (t *RadixTree) Len() int { return t.size }

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Get returns the value stored at key, or (nil, false) if key is not a live
// key in the tree.
func (t *RadixTree) Get(key string) (*termPostings, bool) {
	cur := t.root
	remaining := key
	for remaining != "" {
		if cur.children == nil {
			return nil, false
		}
		child, ok := cur.children[remaining[0]]
		if !ok || len(child.prefix) > len(remaining) || remaining[:len(child.prefix)] != child.prefix {
			return nil, false
		}
		remaining = remaining[len(child.prefix):]
		cur = child
	}
	if cur.value == nil {
		return nil, false
	}
	return cur.value, true
}

// Update inserts key if absent, or replaces its value, via fn. fn receives
// the current value (nil if key is new) and returns the value to store.
// This is the "update with function" variant spec.md calls for so that
// callers can accumulate posting lists rather than clobber them.
func (t *RadixTree) Update(key string, fn func(existing *termPostings) *termPostings) {
	existed := false
	t.root = insertNode(t.root, key, func(v *termPostings) *termPostings {
		existed = v != nil
		return fn(v)
	})
	if !existed {
		t.size++
	}
}

// Insert sets key to v unconditionally, replacing any existing value.
func (t *RadixTree) Insert(key string, v *termPostings) {
	t.Update(key, func(*termPostings) *termPostings { return v })
}

// UpdateOrRemove applies fn to key's current value (fn is not called if key
// is not live) and either replaces it in place or removes the key entirely,
// keeping size and edge compaction correct in a single step. This is the
// primitive document removal needs: clearing a posting and, if that was the
// term's last posting, pruning the key from the tree without leaving a
// valueless node or a stale size count behind (the two-step "Update to nil,
// then Get to notice and Remove" sequence can't keep both invariants at
// once, since Update never decrements size and Remove no-ops on a value
// that's already nil).
func (t *RadixTree) UpdateOrRemove(key string, fn func(existing *termPostings) (newValue *termPostings, remove bool)) {
	existing, ok := t.Get(key)
	if !ok {
		return
	}
	newValue, remove := fn(existing)
	if remove {
		t.Remove(key)
		return
	}
	t.root = insertNode(t.root, key, func(*termPostings) *termPostings { return newValue })
}

func insertNode(n *radixNode, search string, fn func(*termPostings) *termPostings) *radixNode {
	if search == "" {
		n.value = fn(n.value)
		return n
	}
	if n.children == nil {
		n.children = make(map[byte]*radixNode)
	}
	c := search[0]
	child, exists := n.children[c]
	if !exists {
		n.children[c] = &radixNode{prefix: search, value: fn(nil)}
		return n
	}

	common := commonPrefixLen(search, child.prefix)
	if common == len(child.prefix) {
		n.children[c] = insertNode(child, search[common:], fn)
		return n
	}

	// The new key diverges partway through child's edge: split the edge.
	split := &radixNode{prefix: child.prefix[:common]}
	child.prefix = child.prefix[common:]
	split.children = map[byte]*radixNode{child.prefix[0]: child}

	rest := search[common:]
	if rest == "" {
		split.value = fn(nil)
	} else {
		split.children[rest[0]] = &radixNode{prefix: rest, value: fn(nil)}
	}
	n.children[c] = split
	return n
}

// Remove deletes key from the tree, compacting any node left with neither a
// value nor at least two children. Returns true if key was a live key.
func (t *RadixTree) Remove(key string) bool {
	newRoot, removed := removeNode(t.root, key)
	if removed {
		t.root = newRoot
		t.size--
	}
	return removed
}

func removeNode(n *radixNode, search string) (*radixNode, bool) {
	if search == "" {
		if n.value == nil {
			return n, false
		}
		n.value = nil
		return n, true
	}

	c := search[0]
	child, exists := n.children[c]
	if !exists || len(child.prefix) > len(search) || search[:len(child.prefix)] != child.prefix {
		return n, false
	}

	newChild, removed := removeNode(child, search[len(child.prefix):])
	if !removed {
		return n, false
	}

	switch {
	case newChild.value == nil && len(newChild.children) == 0:
		delete(n.children, c)
	case newChild.value == nil && len(newChild.children) == 1:
		for _, grandchild := range newChild.children {
			merged := &radixNode{
				prefix:   newChild.prefix + grandchild.prefix,
				children: grandchild.children,
				value:    grandchild.value,
			}
			n.children[c] = merged
		}
	default:
		n.children[c] = newChild
	}
	return n, true
}

// Entry is one (term, value) pair produced by enumeration.
type Entry struct {
	Term  string
	Value *termPostings
}

// Entries returns every live key in the tree, in a fixed (lexicographic)
// order. Order is unspecified by spec.md but must be deterministic; sorting
// keeps callers (snapshot export, tests) predictable without demanding a
// particular traversal order from the tree itself.
func (t *RadixTree) Entries() []Entry {
	var out []Entry
	collect(t.root, "", &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

func collect(n *radixNode, prefix string, out *[]Entry) {
	if n.value != nil {
		*out = append(*out, Entry{Term: prefix, Value: n.value})
	}
	for _, child := range n.children {
		collect(child, prefix+child.prefix, out)
	}
}

// View is a borrowed, read-only handle onto the subtree whose keys all share
// a given prefix. Writes through a view are not supported: the radix tree
// that owns the view remains the only mutable entry point, per spec.md §9.
type View struct {
	tree    *RadixTree
	node    *radixNode // node reached by the walk; nil if the prefix has no matches
	matched string     // the cumulative prefix the view was asked for
	pending string     // unconsumed tail of node.prefix, "" if the walk landed exactly on a node boundary
}

// AtPrefix returns a view over the subtree whose keys start with p.
func (t *RadixTree) AtPrefix(p string) *View {
	node, pending, ok := walkPrefix(t.root, p)
	if !ok {
		return &View{tree: t, node: nil, matched: p}
	}
	return &View{tree: t, node: node, matched: p, pending: pending}
}

// AtPrefix narrows the view further by p, which must extend the view's
// current pending suffix (or be extended by it). Returns ErrInvalidPrefix
// if p diverges from the already-matched path.
func (v *View) AtPrefix(p string) (*View, error) {
	if v.node == nil {
		return &View{tree: v.tree, node: nil, matched: v.matched + p}, nil
	}
	if v.pending == "" {
		node, pending, ok := walkPrefix(v.node, p)
		if !ok {
			return &View{tree: v.tree, node: nil, matched: v.matched + p}, nil
		}
		return &View{tree: v.tree, node: node, matched: v.matched + p, pending: pending}, nil
	}

	common := commonPrefixLen(p, v.pending)
	switch {
	case common < len(p) && common < len(v.pending):
		return nil, ErrInvalidPrefix
	case common == len(v.pending):
		// p consumes the whole pending suffix and possibly more: continue
		// descending from v.node using the remainder of p.
		node, pending, ok := walkPrefix(v.node, p[common:])
		if !ok {
			return &View{tree: v.tree, node: nil, matched: v.matched + p}, nil
		}
		return &View{tree: v.tree, node: node, matched: v.matched + p, pending: pending}, nil
	default: // common == len(p), p is a strict prefix of the pending suffix
		return &View{tree: v.tree, node: v.node, matched: v.matched + p, pending: v.pending[common:]}, nil
	}
}

// walkPrefix descends from n following search. It returns the node at which
// the walk ends and the unconsumed tail of that node's own edge label (empty
// when search consumes edges exactly up to a node boundary).
func walkPrefix(n *radixNode, search string) (*radixNode, string, bool) {
	cur := n
	remaining := search
	for remaining != "" {
		if cur.children == nil {
			return nil, "", false
		}
		child, ok := cur.children[remaining[0]]
		if !ok {
			return nil, "", false
		}
		common := commonPrefixLen(remaining, child.prefix)
		switch {
		case common < len(remaining) && common == len(child.prefix):
			remaining = remaining[common:]
			cur = child
			continue
		case common == len(remaining):
			return child, child.prefix[common:], true
		default:
			return nil, "", false
		}
	}
	return cur, "", true
}

// Entries enumerates every live key reachable from the view, with the
// view's own prefix restored on each term.
func (v *View) Entries() []Entry {
	if v.node == nil {
		return nil
	}
	var out []Entry
	if v.node.value != nil {
		out = append(out, Entry{Term: v.matched + v.pending, Value: v.node.value})
	}
	for _, child := range v.node.children {
		collect(child, v.matched+v.pending+child.prefix, &out)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// ═══════════════════════════════════════════════════════════════════════════════
// FUZZY LOOKUP: bounded Levenshtein search over the tree
// ═══════════════════════════════════════════════════════════════════════════════
// fuzzyGet walks the whole tree depth-first, carrying the dynamic-programming
// row of edit distances for the prefix matched so far. Edge compression is
// handled by advancing the row one byte at a time along an edge label
// (rather than once per node), so a long shared edge is pruned as early as a
// byte-by-byte trie would prune it. A branch is abandoned once the row's
// minimum value exceeds maxDistance — no completion of that branch can bring
// the distance back down, since edit distance can only increase or stay the
// same as more characters are consumed.
//
// Edit distance here is computed over bytes, not Unicode code points. Tokens
// reaching the tree have already passed through the default (or a supplied)
// tokenizer/term processor, which for the default pipeline yields lowercase
// ASCII; byte-level and rune-level Levenshtein coincide for ASCII input, so
// this is a simplification rather than a correctness gap for the common
// case, and a host indexing non-ASCII scripts can supply its own fuzzy
// matching via a custom SearchOption if byte-level distance misleads.
// ═══════════════════════════════════════════════════════════════════════════════

// FuzzyMatch is one result of a bounded edit-distance lookup.
type FuzzyMatch struct {
	Term     string
	Distance int
	Value    *termPostings
}

// FuzzyGet returns every key within maxDistance edits of key, sorted by
// distance then lexicographically (spec.md's deterministic tie-break).
func (t *RadixTree) FuzzyGet(key string, maxDistance int) []FuzzyMatch {
	if maxDistance < 0 {
		return nil
	}
	row := make([]int, len(key)+1)
	for i := range row {
		row[i] = i
	}

	var results []FuzzyMatch
	var walk func(n *radixNode, matched string, prevRow []int)
	walk = func(n *radixNode, matched string, prevRow []int) {
		for _, child := range n.children {
			row := prevRow
			acc := matched
			pruned := false
			for i := 0; i < len(child.prefix); i++ {
				row = stepRow(row, key, child.prefix[i])
				acc += string(child.prefix[i])
				if minInt(row) > maxDistance {
					pruned = true
					break
				}
			}
			if pruned {
				continue
			}
			if child.value != nil {
				dist := row[len(key)]
				if dist <= maxDistance {
					results = append(results, FuzzyMatch{Term: acc, Distance: dist, Value: child.value})
				}
			}
			walk(child, acc, row)
		}
	}
	walk(t.root, "", row)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Term < results[j].Term
	})
	return results
}

// stepRow computes the next Levenshtein DP row after consuming byte b of the
// candidate term, given the previous row computed against key.
func stepRow(prev []int, key string, b byte) []int {
	row := make([]int, len(key)+1)
	row[0] = prev[0] + 1
	for i := 1; i <= len(key); i++ {
		deleteCost := prev[i] + 1
		insertCost := row[i-1] + 1
		substituteCost := prev[i-1]
		if key[i-1] != b {
			substituteCost++
		}
		row[i] = min3(deleteCost, insertCost, substituteCost)
	}
	return row
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
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
