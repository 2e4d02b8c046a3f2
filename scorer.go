// ═══════════════════════════════════════════════════════════════════════════════
// SCORER: BM25 with field-length normalization and multi-expansion combination
// ═══════════════════════════════════════════════════════════════════════════════
// This follows spec.md §4.3's formula exactly, not the teacher's simpler
// single-length BM25 (search.go's calculateBM25Score, which normalizes
// against one document length rather than a per-field length and doesn't
// clamp negative IDF). The shape — idf(t), a saturating tf term, a length
// ratio against a running average — is the teacher's own structure; only
// the exact normalization target and the boost/penalty factors change.
// ═══════════════════════════════════════════════════════════════════════════════

package minidex

import "math"

// BM25Parameters are the tuning constants from spec.md §4.3.
type BM25Parameters struct {
	K1 float64
	B  float64
}

// DefaultBM25Parameters returns k1=1.2, b=0.7, spec.md's own defaults (not
// the teacher's 1.5/0.75 — those governed a different normalization).
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{K1: 1.2, B: 0.7}
}

// idf computes ln((N - df + 0.5)/(df + 0.5) + 1), clamped to 0 — spec.md §9
// notes IDF may go negative for extremely common terms and must be clamped
// so a common term can never invert the ranking by contributing negatively.
func idf(n, df float64) float64 {
	v := math.Log((n-df+0.5)/(df+0.5) + 1.0)
	if v < 0 {
		return 0
	}
	return v
}

// termScore is the BM25 contribution of one (term, field, document) posting.
func termScore(params BM25Parameters, n float64, df int, tf, fieldLen, avgFieldLen, boost float64) float64 {
	if avgFieldLen == 0 {
		avgFieldLen = fieldLen
	}
	if avgFieldLen == 0 {
		avgFieldLen = 1
	}
	tfNorm := tf / (1 - params.B + params.B*fieldLen/avgFieldLen)
	i := idf(n, float64(df))
	return i * (params.K1 + 1) * tfNorm / (params.K1 + tfNorm) * boost
}

// expansionPenalty scales down a non-exact match per spec.md §4.3: a small
// factor (≤1) proportional to how much the expansion differs from the
// queried term, so that exact matches always outrank fuzzy/prefix ones that
// happen to land on the same document.
func expansionPenalty(kind expansionKind, queryLen, expansionLen, editDistance int) float64 {
	switch kind {
	case expansionExact:
		return 1.0
	case expansionPrefix:
		if expansionLen == 0 {
			return 1.0
		}
		return 1.0 - float64(expansionLen-queryLen)/float64(expansionLen)
	case expansionFuzzy:
		if queryLen == 0 {
			return 1.0
		}
		return 1.0 - float64(editDistance)/float64(queryLen)
	default:
		return 1.0
	}
}

type expansionKind int

const (
	expansionExact expansionKind = iota
	expansionPrefix
	expansionFuzzy
)

// docScore accumulates one term's contribution to a single document: the
// raw BM25 term score summed across every field the search considers,
// weighted by that field's boost. The expansion penalty is not applied here;
// expansionPenalty computes that factor separately.
func (idx *InvertedIndex) docScore(params BM25Parameters, term string, fieldScope []uint16, boosts map[uint16]float64, docID int) float64 {
	tp, ok := idx.tree.Get(term)
	if !ok {
		return 0
	}
	n := float64(idx.documentCount())
	df := tp.documentFrequency()
	var total float64
	for _, fieldID := range fieldScope {
		p, ok := tp.get(fieldID, docID)
		if !ok {
			continue
		}
		avg := idx.averageFieldLength(fieldID)
		d, ok := idx.registry.get(docID)
		if !ok {
			continue
		}
		fieldLen := float64(d.length[fieldID])
		boost := boosts[fieldID]
		if boost == 0 {
			boost = 1
		}
		total += termScore(params, n, df, float64(p.Count), fieldLen, avg, boost)
	}
	return total
}
