package mining

import (
	"errors"
	"fmt"
	"io"

	"github.com/masmgr/declmine/internal/classify"
	"github.com/masmgr/declmine/internal/console"
	"github.com/masmgr/declmine/internal/git"
	"github.com/masmgr/declmine/internal/output"
)

// Stats counts what a unit did.
type Stats struct {
	Commits    int // commits visited by the walk
	Dropped    int // unresolvable commits skipped
	Pairs      int // commit pairs handed to the diff generator
	DiffErrors int // pairs skipped because their diff failed
	Records    int // rows written
}

func (s Stats) String() string {
	return fmt.Sprintf("%d records from %d commits (%d pairs, %d diff errors, %d unresolvable)",
		s.Records, s.Commits, s.Pairs, s.DiffErrors, s.Dropped)
}

// Result is what a unit that ran to completion reports.
type Result struct {
	Path  string
	Stats Stats
}

// Unit mines a single repository. It owns the repository handle for its whole
// lifetime and writes to its own output stream.
type Unit struct {
	repo       *git.Repository
	selector   *git.RevisionSelector
	diff       *git.DiffGenerator
	classifier *classify.Classifier
	output     output.OutputOptions
	log        console.Logger

	// create opens the output stream. Tests replace it.
	create func(project string, options output.OutputOptions) (output.RecordWriter, string, error)
}

// NewUnit creates the unit for repo.
func NewUnit(repo *git.Repository, cfg RunConfig, log console.Logger) *Unit {
	if log == nil {
		log = console.Discard
	}
	classifier := classify.New(cfg.Extension, cfg.Filter)
	return &Unit{
		repo: repo,
		selector: git.NewRevisionSelector(repo.Repo, git.SelectorOptions{
			Cutoff:           cfg.Cutoff,
			StrictResolution: cfg.StrictResolution,
		}, log),
		diff:       git.NewDiffGenerator(classifier.Tracks),
		classifier: classifier,
		output:     cfg.Output,
		log:        log,
		create:     output.Create,
	}
}

// Run starts the walk, then truncates the unit's output file and fills it.
// A walk that cannot start leaves the previous file untouched. Walk and
// emission errors end the run; rows written before the failure stay in the
// file, and the file is closed even if the unit panics.
func (u *Unit) Run() (result Result, err error) {
	name := u.repo.Source.Name

	it, err := u.selector.Walk()
	if err != nil {
		return result, fmt.Errorf("walk %s: %w", name, err)
	}
	defer it.Close()

	w, path, err := u.create(name, u.output)
	result.Path = path
	if err != nil {
		return result, fmt.Errorf("open output for %s: %w", name, err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", path, closeErr))
		}
	}()

	result.Stats, err = u.drain(it, w)
	return result, err
}

// drain diffs every pair of it and writes the classified lines in order.
func (u *Unit) drain(it git.PairIterator, w output.RecordWriter) (stats Stats, err error) {
	name := u.repo.Source.Name
	defer func() {
		stats.Commits = it.Walked()
		stats.Dropped = it.Dropped()
	}()

	for {
		pair, err := it.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("walk %s: %w", name, err)
		}
		stats.Pairs++

		patch, err := u.diff.Diff(pair)
		if err != nil {
			stats.DiffErrors++
			u.log.Warnf("%s: skipping commit %s: %v", name, pair.Commit.Hash, err)
			continue
		}

		info := pair.Info()
		err = patch.ForEachLine(func(line git.DiffLine) error {
			rec, ok := u.classifier.Classify(name, info, line)
			if !ok {
				return nil
			}
			if err := w.Write(rec); err != nil {
				return err
			}
			stats.Records++
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("emit records of %s: %w", info.SHA, err)
		}
	}
}
