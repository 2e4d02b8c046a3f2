package minidex

// posting is a single (document, field) occurrence record for a term:
// spec.md's Posting triple with the term itself implicit (it's the radix
// tree key that owns this posting).
type posting struct {
	Count     int   // term-count c ∈ ℕ₊ within (d, f)
	Positions []int // token offsets within the field, ascending; backs phrase/proximity search
}

// termPostings is the value stored at a live radix-tree key: the per-field,
// per-document postings for that term. fieldID -> docID -> posting.
type termPostings struct {
	fields map[uint16]map[int]*posting
}

func newTermPostings() *termPostings {
	return &termPostings{fields: make(map[uint16]map[int]*posting)}
}

// add records one more occurrence of the owning term at (docID, fieldID,
// position), incrementing the posting's count and appending the position.
func (tp *termPostings) add(fieldID uint16, docID, position int) {
	byDoc, ok := tp.fields[fieldID]
	if !ok {
		byDoc = make(map[int]*posting)
		tp.fields[fieldID] = byDoc
	}
	p, ok := byDoc[docID]
	if !ok {
		p = &posting{}
		byDoc[docID] = p
	}
	p.Count++
	p.Positions = append(p.Positions, position)
}

// removeDoc drops every posting belonging to docID across all fields, along
// with any field left without postings; isEmpty then reports whether any
// posting at all remains for the term.
func (tp *termPostings) removeDoc(docID int) {
	for fieldID, byDoc := range tp.fields {
		delete(byDoc, docID)
		if len(byDoc) == 0 {
			delete(tp.fields, fieldID)
		}
	}
}

func (tp *termPostings) isEmpty() bool {
	return len(tp.fields) == 0
}

// documentFrequency returns the number of distinct live documents carrying
// this term in any field — df(t) in the BM25 formula.
func (tp *termPostings) documentFrequency() int {
	seen := make(map[int]struct{})
	for _, byDoc := range tp.fields {
		for docID := range byDoc {
			seen[docID] = struct{}{}
		}
	}
	return len(seen)
}

func (tp *termPostings) get(fieldID uint16, docID int) (*posting, bool) {
	byDoc, ok := tp.fields[fieldID]
	if !ok {
		return nil, false
	}
	p, ok := byDoc[docID]
	return p, ok
}
