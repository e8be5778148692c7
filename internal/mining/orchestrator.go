package mining

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/masmgr/declmine/internal/console"
	"github.com/masmgr/declmine/internal/git"
	"golang.org/x/sync/errgroup"
)

// ErrUnitPanicked marks a unit that terminated abnormally.
var ErrUnitPanicked = errors.New("mining unit panicked")

// OutcomeKind distinguishes a unit that finished from one that did not.
type OutcomeKind int

const (
	// OutcomeWritten means the unit ran to completion and its file is complete.
	OutcomeWritten OutcomeKind = iota
	// OutcomePipelineFailed means the unit returned a walk or emission error.
	OutcomePipelineFailed
	// OutcomeJoinFailed means the unit itself never returned.
	OutcomeJoinFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWritten:
		return "written"
	case OutcomePipelineFailed:
		return "pipeline failed"
	case OutcomeJoinFailed:
		return "join failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-repository report of the mining phase.
type Outcome struct {
	Source git.RepositorySource
	Kind   OutcomeKind
	Path   string
	Stats  Stats
	Err    error
}

// Orchestrator acquires every repository of a run and mines each one in its
// own goroutine.
type Orchestrator struct {
	cfg      RunConfig
	provider *git.Provider
	log      console.Logger

	// runUnit mines one repository. Tests replace it.
	runUnit func(repo *git.Repository) (Result, error)
}

// NewOrchestrator creates an orchestrator for cfg.
func NewOrchestrator(cfg RunConfig, log console.Logger) *Orchestrator {
	if log == nil {
		log = console.Discard
	}
	o := &Orchestrator{
		cfg:      cfg,
		provider: git.NewProvider(cfg.CacheDir, log),
		log:      log,
	}
	o.runUnit = func(repo *git.Repository) (Result, error) {
		return NewUnit(repo, o.cfg, o.log).Run()
	}
	return o
}

// Provider exposes the repository provider so callers can swap its clone
// function.
func (o *Orchestrator) Provider() *git.Provider {
	return o.provider
}

// Run acquires all repositories and mines them. The error is non-nil only
// when acquisition fails; per-repository failures are in the outcomes.
func (o *Orchestrator) Run(ctx context.Context) ([]Outcome, error) {
	repos, err := o.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := o.Mine(repos)
	for _, out := range outcomes {
		o.report(out)
	}
	return outcomes, nil
}

// Acquire opens or clones every source concurrently. The result is in input
// order. Any failure fails the whole phase.
func (o *Orchestrator) Acquire(ctx context.Context) ([]*git.Repository, error) {
	repos := make([]*git.Repository, len(o.cfg.Sources))

	// A plain group: a failed source must not cancel clones already in flight,
	// or their half-written working copies would be reused by the next run.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, url := range o.cfg.Sources {
		g.Go(func() error {
			repo, err := o.provider.Acquire(ctx, url)
			if err != nil {
				return err
			}
			repos[i] = repo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return repos, nil
}

// Mine runs one unit per repository and waits for all of them. One unit's
// failure does not affect the others. Outcomes are in input order.
func (o *Orchestrator) Mine(repos []*git.Repository) []Outcome {
	outcomes := make([]Outcome, len(repos))

	var wg sync.WaitGroup
	wg.Add(len(repos))

	for idx, r := range repos {
		go func(i int, repo *git.Repository) {
			defer wg.Done()
			outcomes[i] = o.mineOne(repo)
		}(idx, r)
	}

	wg.Wait()
	return outcomes
}

func (o *Orchestrator) mineOne(repo *git.Repository) (out Outcome) {
	out.Source = repo.Source

	defer func() {
		if r := recover(); r != nil {
			out.Kind = OutcomeJoinFailed
			out.Err = fmt.Errorf("%w: %v", ErrUnitPanicked, r)
		}
	}()

	result, err := o.runUnit(repo)
	out.Path = result.Path
	out.Stats = result.Stats
	if err != nil {
		out.Kind = OutcomePipelineFailed
		out.Err = err
		return out
	}
	out.Kind = OutcomeWritten
	return out
}

func (o *Orchestrator) report(out Outcome) {
	switch out.Kind {
	case OutcomeWritten:
		o.log.Infof("wrote %s (%s)", out.Path, out.Stats)
	case OutcomePipelineFailed:
		o.log.Errorf("pipeline error for %s: %v", out.Source.Name, out.Err)
	case OutcomeJoinFailed:
		o.log.Errorf("unit for %s did not complete: %v", out.Source.Name, out.Err)
	}
}
