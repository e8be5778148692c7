package git

import (
	"fmt"
	"io"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/masmgr/declmine/internal/console"
)

// SelectorOptions configures the revision selector.
type SelectorOptions struct {
	// Cutoff excludes every commit whose committer time is at or before it.
	Cutoff time.Time
	// StrictResolution turns an unresolvable commit into a walk error instead
	// of dropping it.
	StrictResolution bool
}

// RevisionSelector walks a repository's history from HEAD, most recent
// committer time first, and pairs every admitted commit with its first parent.
type RevisionSelector struct {
	repo *git.Repository
	opts SelectorOptions
	log  console.Logger
}

// NewRevisionSelector creates a selector over repo.
func NewRevisionSelector(repo *git.Repository, opts SelectorOptions, log console.Logger) *RevisionSelector {
	if log == nil {
		log = console.Discard
	}
	return &RevisionSelector{repo: repo, opts: opts, log: log}
}

// Walk starts the revision walk. Failing to resolve HEAD or its commit is a
// walk error.
func (s *RevisionSelector) Walk() (*PairIter, error) {
	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	head, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("start revision walk at %s: %w", ref.Hash(), err)
	}

	it := &PairIter{
		repo:    s.repo,
		opts:    s.opts,
		log:     s.log,
		heap:    binaryheap.NewWith(byCommitterTimeDesc),
		queued:  map[plumbing.Hash]struct{}{head.Hash: {}},
		pending: map[plumbing.Hash]*object.Commit{head.Hash: head},
		missing: make(map[plumbing.Hash]struct{}),
	}
	it.heap.Push(head)
	return it, nil
}

// byCommitterTimeDesc orders the walk frontier newest first. Equal times fall
// back to the hash so that repeated runs visit commits in the same order.
func byCommitterTimeDesc(a, b interface{}) int {
	ca, cb := a.(*object.Commit), b.(*object.Commit)
	switch {
	case ca.Committer.When.After(cb.Committer.When):
		return -1
	case ca.Committer.When.Before(cb.Committer.When):
		return 1
	}
	return compareHash(ca.Hash, cb.Hash)
}

func compareHash(a, b plumbing.Hash) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// PairIter is a lazy, single-pass sequence of commit pairs.
type PairIter struct {
	repo   *git.Repository
	opts   SelectorOptions
	log    console.Logger
	heap   *binaryheap.Heap
	queued map[plumbing.Hash]struct{}
	// pending holds the commits currently on the heap, so a child popped
	// before its parent reuses the resolved parent.
	pending map[plumbing.Hash]*object.Commit
	// missing holds hashes already reported as unresolvable.
	missing map[plumbing.Hash]struct{}

	walked  int
	dropped int
	lookups int
}

// Next returns the next admitted pair, or io.EOF when history is exhausted.
func (it *PairIter) Next() (CommitPair, error) {
	for {
		commit, parent, err := it.nextCommit()
		if err != nil {
			return CommitPair{}, err
		}

		// A filter, not an early exit: an old commit out of place does not end
		// the walk.
		if !commit.Committer.When.After(it.opts.Cutoff) {
			continue
		}

		// Root commits never produce a pair.
		if commit.NumParents() == 0 {
			continue
		}

		first := commit.ParentHashes[0]
		if _, gone := it.missing[first]; gone {
			continue
		}
		if parent == nil {
			// Only when the parent was popped before its child.
			parent, err = it.resolve(first)
			if err != nil {
				if err := it.unresolved(first, err); err != nil {
					return CommitPair{}, err
				}
				continue
			}
		}

		return CommitPair{Commit: commit, Parent: parent}, nil
	}
}

// nextCommit pops the newest commit off the frontier and queues its parents.
// It also returns the commit's first parent when that is still on the heap or
// was resolved just now.
func (it *PairIter) nextCommit() (*object.Commit, *object.Commit, error) {
	v, ok := it.heap.Pop()
	if !ok {
		return nil, nil, io.EOF
	}
	commit := v.(*object.Commit)
	delete(it.pending, commit.Hash)
	it.walked++

	var first *object.Commit
	for i, h := range commit.ParentHashes {
		if parent, ok := it.pending[h]; ok {
			if i == 0 {
				first = parent
			}
			continue
		}
		if _, seen := it.queued[h]; seen {
			continue
		}
		it.queued[h] = struct{}{}

		parent, err := it.resolve(h)
		if err != nil {
			if err := it.unresolved(h, err); err != nil {
				return nil, nil, err
			}
			continue
		}
		it.pending[h] = parent
		it.heap.Push(parent)
		if i == 0 {
			first = parent
		}
	}

	return commit, first, nil
}

func (it *PairIter) resolve(h plumbing.Hash) (*object.Commit, error) {
	it.lookups++
	return it.repo.CommitObject(h)
}

func (it *PairIter) unresolved(h plumbing.Hash, err error) error {
	if it.opts.StrictResolution {
		return fmt.Errorf("resolve commit %s: %w", h, err)
	}
	it.dropped++
	it.missing[h] = struct{}{}
	it.log.Warnf("skipping unresolvable commit %s: %v", h, err)
	return nil
}

// Walked returns how many commits the walk has visited so far.
func (it *PairIter) Walked() int {
	return it.walked
}

// Dropped returns how many commits were skipped because they could not be
// resolved.
func (it *PairIter) Dropped() int {
	return it.dropped
}

// Close releases the walk frontier.
func (it *PairIter) Close() {
	it.heap.Clear()
	it.queued = nil
	it.pending = nil
	it.missing = nil
}
