// Package index provides the in-memory inverted index for boolean
// retrieval: a term to document-id-set mapping plus the universe of all
// known document ids. The index follows a build-then-freeze discipline:
// documents are added single-threaded, Freeze computes and caches the
// universe, and from that point on the index is read-only and safe for
// concurrent query evaluation.
package index

import (
	"sync"

	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
)

// Index maps terms to the set of documents containing them.
type Index struct {
	mu       sync.RWMutex
	postings map[string]DocSet
	universe DocSet
	docCount int
	frozen   bool
}

func New() *Index {
	return &Index{
		postings: make(map[string]DocSet),
	}
}

// Add folds a (docID, terms) pair into the index. Adding to a frozen
// index is an error.
func (ix *Index) Add(docID string, terms []string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.frozen {
		return apperrors.ErrIndexFrozen
	}
	for _, term := range terms {
		if term == "" {
			continue
		}
		set, ok := ix.postings[term]
		if !ok {
			set = make(DocSet)
			ix.postings[term] = set
		}
		set.Add(docID)
	}
	ix.docCount++
	return nil
}

// Freeze marks the index read-only and caches the universe (the union of
// all posting sets). Freeze is idempotent. This is the immutability
// boundary: after Freeze the index may be shared across goroutines
// without locking on the read path.
func (ix *Index) Freeze() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.frozen {
		return
	}
	universe := make(DocSet)
	for _, set := range ix.postings {
		for id := range set {
			universe[id] = struct{}{}
		}
	}
	ix.universe = universe
	ix.frozen = true
}

// Lookup returns the posting set for a term. Unknown terms yield an
// empty set, never an error. The returned set is shared with the index
// and must not be mutated by the caller.
func (ix *Index) Lookup(term string) DocSet {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if set, ok := ix.postings[term]; ok {
		return set
	}
	return nil
}

// AllDocIDs returns the universe of every document id indexed under any
// term. The index must be frozen first; before Freeze the universe is
// still growing and the result would not be stable.
func (ix *Index) AllDocIDs() DocSet {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.frozen {
		return ix.universe
	}
	universe := make(DocSet)
	for _, set := range ix.postings {
		for id := range set {
			universe[id] = struct{}{}
		}
	}
	return universe
}

// TermCount returns the number of distinct terms in the index.
func (ix *Index) TermCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.postings)
}

// DocCount returns the number of documents folded into the index.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docCount
}

// Frozen reports whether Freeze has been called.
func (ix *Index) Frozen() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.frozen
}
