package submission

import (
	"sort"
	"sync"

	"github.com/mkorolev/boolsearch/internal/index"
)

// Results accumulates the matching document set per query. It is safe
// for concurrent Add calls so batch workers can record matches as they
// finish.
type Results struct {
	mu      sync.RWMutex
	matches map[int]index.DocSet
}

func NewResults() *Results {
	return &Results{
		matches: make(map[int]index.DocSet),
	}
}

// Add records the matching documents for a query. The set is stored as
// given; callers hand over ownership.
func (r *Results) Add(queryID int, docs index.DocSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[queryID] = docs
}

// Match reports whether docID matched the query with the given id.
func (r *Results) Match(queryID int, docID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs, ok := r.matches[queryID]
	if !ok {
		return false
	}
	return docs.Contains(docID)
}

// QueryIDs returns the ids of all recorded queries in ascending order.
func (r *Results) QueryIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.matches))
	for id := range r.matches {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Docs returns the matching document set recorded for a query, or nil.
func (r *Results) Docs(queryID int) index.DocSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matches[queryID]
}

// Len returns the number of queries with recorded results.
func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
