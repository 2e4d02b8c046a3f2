// ═══════════════════════════════════════════════════════════════════════════════
// INVERTED INDEX: term → field → document → count
// ═══════════════════════════════════════════════════════════════════════════════
// InvertedIndex owns the radix tree (the token dictionary, see radix.go) and
// delegates document bookkeeping to documentRegistry (registry.go). Indexing
// a document walks each declared field's text through that field's
// tokenizer and term processor, inserting/updating one radix-tree entry per
// distinct term with its (field, document, position) posting — the same
// three-step shape as the teacher's Index/indexToken, retargeted from a flat
// map[string]*roaring.Bitmap onto the radix tree required by spec.md §4.1.
// ═══════════════════════════════════════════════════════════════════════════════

package minidex

import (
	"fmt"
	"log/slog"
)

// InvertedIndex is the index proper: the radix tree plus the document
// registry it annotates. It holds no lock of its own — Engine (engine.go)
// serializes access per spec.md §5's single-logical-thread model.
type InvertedIndex struct {
	tree     *RadixTree
	registry *documentRegistry
	fields   []string
	fieldIDs map[string]uint16
	logger   *slog.Logger
}

func newInvertedIndex(fields []string, logger *slog.Logger) *InvertedIndex {
	ids := make(map[string]uint16, len(fields))
	for i, f := range fields {
		ids[f] = uint16(i)
	}
	return &InvertedIndex{
		tree:     newRadixTree(),
		registry: newDocumentRegistry(),
		fields:   fields,
		fieldIDs: ids,
		logger:   logger,
	}
}

// fieldID resolves a declared field name; ok is false for an undeclared
// field name.
func (idx *InvertedIndex) fieldID(name string) (uint16, bool) {
	id, ok := idx.fieldIDs[name]
	return id, ok
}

// indexField tokenizes and term-processes one field's text and writes the
// resulting postings into the radix tree, returning the token count for
// length normalization and the ordered multiset of surviving terms.
func (idx *InvertedIndex) indexField(docID int, fieldID uint16, fieldName, text string, tokenize Tokenizer, process TermProcessor) (int, []string) {
	raw := tokenize(text, fieldName)
	terms := make([]string, 0, len(raw))
	for position, tok := range raw {
		term := process(tok, fieldName)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		idx.tree.Update(term, func(existing *termPostings) *termPostings {
			tp := existing
			if tp == nil {
				tp = newTermPostings()
			}
			tp.add(fieldID, docID, position)
			return tp
		})
	}
	return len(terms), terms
}

// recordField stores the field-length and term multiset captured by
// indexField into the document registry, updating avg_f incrementally.
func (idx *InvertedIndex) recordField(docID int, fieldID uint16, length int, terms []string) {
	idx.registry.recordLength(docID, fieldID, length, terms)
}

// removeDocument tombstones external and subtracts its postings from the
// tree, using the exact per-field token multiset captured at add time
// (spec.md §9's resolution of the tokenization-on-removal question).
func (idx *InvertedIndex) removeDocument(external any) error {
	id, d, err := idx.registry.remove(external)
	if err != nil {
		return err
	}
	for _, terms := range d.terms {
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			idx.tree.UpdateOrRemove(term, func(existing *termPostings) (*termPostings, bool) {
				existing.removeDoc(id)
				return existing, existing.isEmpty()
			})
		}
	}
	idx.logger.Debug("removed document", slog.Int("internal_id", id), slog.Any("external_id", external))
	return nil
}

// documentCount returns N, the live document count used by BM25's IDF term.
func (idx *InvertedIndex) documentCount() int { return idx.registry.documentCount() }

func (idx *InvertedIndex) averageFieldLength(fieldID uint16) float64 {
	return idx.registry.averageFieldLength(fieldID)
}

// term exposes a term's postings for the scorer/evaluator, exact lookup
// only (no expansion) — spec.md §4.1's get operation.
func (idx *InvertedIndex) term(term string) (*termPostings, bool) {
	return idx.tree.Get(term)
}

// fieldPositions returns the sorted token offsets for term within a single
// document's field, used by phrase/proximity evaluation (positions.go).
func (idx *InvertedIndex) fieldPositions(term string, fieldID uint16, docID int) ([]int, bool) {
	tp, ok := idx.tree.Get(term)
	if !ok {
		return nil, false
	}
	p, ok := tp.get(fieldID, docID)
	if !ok {
		return nil, false
	}
	return p.Positions, true
}

func (idx *InvertedIndex) requireKnownField(name string) error {
	if _, ok := idx.fieldIDs[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}
