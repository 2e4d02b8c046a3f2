package minidex

import "github.com/RoaringBitmap/roaring"

// docFields holds the per-document, per-field token count used for BM25's
// length normalization, plus the exact token multiset recorded at add time.
// Recording the multiset (rather than re-tokenizing stored text on removal)
// resolves the open question in spec.md §9 in favor of the variant the
// source requires: removal reproduces the original tokenization exactly,
// because it never re-tokenizes at all.
type docFields struct {
	external any
	stored   map[string]string  // only fields declared in Config.StoreFields
	length   map[uint16]int     // fieldID -> token count
	terms    map[uint16][]string // fieldID -> tokens recorded at add time, in order
}

// documentRegistry assigns dense internal ids to external document ids and
// owns the bookkeeping BM25 needs: per-field lengths and the running
// average field length. It does not own postings — InvertedIndex does —
// but Remove walks the term multiset stored here to know exactly which
// postings to decrement.
type documentRegistry struct {
	externalToInternal map[any]int
	docs               map[int]*docFields
	tombstones         *roaring.Bitmap // internal ids removed within this epoch
	nextID             int
	liveCount          int
	avgFieldLength     map[uint16]float64
}

func newDocumentRegistry() *documentRegistry {
	return &documentRegistry{
		externalToInternal: make(map[any]int),
		docs:               make(map[int]*docFields),
		tombstones:         roaring.NewBitmap(),
		avgFieldLength:     make(map[uint16]float64),
	}
}

// allocate assigns a new internal id to an external id not currently live.
// The external id may have been tombstoned previously — re-adding after a
// removal is explicitly allowed by spec.md §3.
func (r *documentRegistry) allocate(external any) (int, error) {
	if _, live := r.externalToInternal[external]; live {
		return 0, ErrDuplicateID
	}
	id := r.nextID
	r.nextID++
	r.externalToInternal[external] = id
	r.docs[id] = &docFields{
		external: external,
		stored:   make(map[string]string),
		length:   make(map[uint16]int),
		terms:    make(map[uint16][]string),
	}
	r.liveCount++
	return id, nil
}

func (r *documentRegistry) internalID(external any) (int, bool) {
	id, ok := r.externalToInternal[external]
	return id, ok
}

func (r *documentRegistry) get(id int) (*docFields, bool) {
	d, ok := r.docs[id]
	return d, ok
}

func (r *documentRegistry) isLive(id int) bool {
	_, ok := r.docs[id]
	return ok && !r.tombstones.Contains(uint32(id))
}

// recordLength updates the field-length table and incrementally maintains
// avg_f exactly per spec.md §4.2 step 4: avg_f += (len - avg_f) / liveCount.
func (r *documentRegistry) recordLength(id int, fieldID uint16, length int, tokens []string) {
	d := r.docs[id]
	d.length[fieldID] = length
	d.terms[fieldID] = tokens
	avg := r.avgFieldLength[fieldID]
	r.avgFieldLength[fieldID] = avg + (float64(length)-avg)/float64(r.liveCount)
}

// remove tombstones external, returning the internal id and its recorded
// per-field token lists so the caller (InvertedIndex.removeDocument) can decrement
// exactly the postings that were added.
func (r *documentRegistry) remove(external any) (int, *docFields, error) {
	id, ok := r.externalToInternal[external]
	if !ok {
		return 0, nil, ErrUnknownDocument
	}
	d := r.docs[id]
	delete(r.externalToInternal, external)
	delete(r.docs, id)
	r.tombstones.Add(uint32(id))
	r.liveCount--

	for fieldID, length := range d.length {
		if r.liveCount == 0 {
			r.avgFieldLength[fieldID] = 0
			continue
		}
		avg := r.avgFieldLength[fieldID]
		r.avgFieldLength[fieldID] = avg - (float64(length)-avg)/float64(r.liveCount)
	}
	return id, d, nil
}

func (r *documentRegistry) averageFieldLength(fieldID uint16) float64 {
	return r.avgFieldLength[fieldID]
}

func (r *documentRegistry) documentCount() int { return r.liveCount }
