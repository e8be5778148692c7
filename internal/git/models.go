package git

import (
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RepositorySource is a remote repository identifier plus the short name
// derived from it. The name locates the working copy and names the output file.
type RepositorySource struct {
	URL  string
	Name string
}

// Repository is an opened working copy. It is owned by exactly one mining unit.
type Repository struct {
	Source RepositorySource
	Path   string
	Repo   *git.Repository
}

// CommitInfo represents the commit fields copied onto every emitted record.
type CommitInfo struct {
	SHA  string
	When time.Time
	// Committer is empty when the commit carries no parseable identity.
	Committer string
}

// CommitPair is an admitted commit together with its first parent.
type CommitPair struct {
	Commit *object.Commit
	Parent *object.Commit
}

// Info returns the denormalized commit fields of the pair's commit.
func (p CommitPair) Info() CommitInfo {
	return CommitInfo{
		SHA:       p.Commit.Hash.String(),
		When:      p.Commit.Committer.When,
		Committer: p.Commit.Committer.Name,
	}
}

// LineOrigin tags a patch line.
type LineOrigin byte

const (
	OriginAddition   LineOrigin = '+'
	OriginDeletion   LineOrigin = '-'
	OriginContext    LineOrigin = ' '
	OriginNoNewline  LineOrigin = '\\'
	OriginFileHeader LineOrigin = 'F'
	OriginHunkHeader LineOrigin = 'H'
)

// DiffLine is one line of a tree-to-tree patch. Content excludes the origin
// marker and the line terminator.
type DiffLine struct {
	Origin  LineOrigin
	Content []byte
	OldPath string // empty for added files
	NewPath string // empty for deleted files
}

// Path returns the post-change path, falling back to the pre-change path for
// deleted files.
func (l DiffLine) Path() string {
	if l.NewPath != "" {
		return l.NewPath
	}
	return l.OldPath
}
