// Package gittest builds throwaway repositories with controlled history for
// tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a non-bare repository in a temporary directory.
type Repo struct {
	t    testing.TB
	Dir  string
	Repo *gogit.Repository
	wt   *gogit.Worktree
}

// New initializes an empty repository under t.TempDir().
func New(t testing.TB) *Repo {
	t.Helper()
	return NewAt(t, t.TempDir())
}

// NewAt initializes an empty repository in dir.
func NewAt(t testing.TB, dir string) *Repo {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &Repo{t: t, Dir: dir, Repo: repo, wt: wt}
}

// Write creates or overwrites a file and stages it.
func (r *Repo) Write(rel, content string) {
	r.t.Helper()

	full := filepath.Join(r.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.t.Fatalf("Add: %v", err)
	}
}

// Remove deletes a file and stages the deletion.
func (r *Repo) Remove(rel string) {
	r.t.Helper()

	if _, err := r.wt.Remove(rel); err != nil {
		r.t.Fatalf("Remove: %v", err)
	}
}

// Commit records the staged changes with the given committer name and time.
func (r *Repo) Commit(msg, committer string, when time.Time) plumbing.Hash {
	r.t.Helper()
	return r.commit(msg, committer, when, nil)
}

// CommitWithParents records the staged changes with explicit parents, which
// allows merge commits without running a merge.
func (r *Repo) CommitWithParents(msg, committer string, when time.Time, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	return r.commit(msg, committer, when, parents)
}

func (r *Repo) commit(msg, committer string, when time.Time, parents []plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	sig := &object.Signature{Name: committer, Email: "dev@example.com", When: when}
	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return hash
}

// Reopen opens the repository again from disk, bypassing any object cache of
// the handle used to build it.
func (r *Repo) Reopen() *gogit.Repository {
	r.t.Helper()

	repo, err := gogit.PlainOpen(r.Dir)
	if err != nil {
		r.t.Fatalf("PlainOpen: %v", err)
	}
	return repo
}

// RemoveLooseObject deletes the loose object file for h, simulating a broken
// object store.
func (r *Repo) RemoveLooseObject(h plumbing.Hash) {
	r.t.Helper()

	s := h.String()
	path := filepath.Join(r.Dir, ".git", "objects", s[:2], s[2:])
	if err := os.Remove(path); err != nil {
		r.t.Fatalf("remove object %s: %v", s, err)
	}
}

// BlobHash returns the object id git assigns to content.
func BlobHash(content string) plumbing.Hash {
	return plumbing.ComputeHash(plumbing.BlobObject, []byte(content))
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
