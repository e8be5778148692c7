package git

// PairIterator yields admitted (commit, first parent) pairs in walk order.
// Next returns io.EOF once the walk is exhausted.
type PairIterator interface {
	Next() (CommitPair, error)
	Close()
	// Walked and Dropped count visited and unresolvable commits so far.
	Walked() int
	Dropped() int
}

// Compile-time interface conformance check.
var _ PairIterator = (*PairIter)(nil)
