package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/masmgr/declmine/internal/console"
)

// ErrInvalidRemoteURL is returned when no short name can be derived from a
// remote identifier.
var ErrInvalidRemoteURL = errors.New("invalid remote url")

// AcquireError reports why a repository source could not be turned into an
// opened working copy. Unwrap yields ErrInvalidRemoteURL for unparseable
// identifiers and the underlying go-git error for fetch/open failures.
type AcquireError struct {
	URL string
	Err error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.URL, e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// ParseSource derives the short name of a remote: its last non-empty
// '/'-delimited segment.
func ParseSource(url string) (RepositorySource, error) {
	segments := strings.Split(url, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if name := strings.TrimSpace(segments[i]); name != "" {
			return RepositorySource{URL: url, Name: name}, nil
		}
	}
	return RepositorySource{}, ErrInvalidRemoteURL
}

// CloneFunc fetches url into path.
type CloneFunc func(ctx context.Context, path, url string) (*git.Repository, error)

// Provider clones repositories that are absent from CacheDir and reuses the
// working copies that are already there.
type Provider struct {
	CacheDir string
	Clone    CloneFunc
	Log      console.Logger
}

// NewProvider creates a provider rooted at cacheDir.
func NewProvider(cacheDir string, log console.Logger) *Provider {
	if log == nil {
		log = console.Discard
	}
	return &Provider{CacheDir: cacheDir, Clone: plainClone, Log: log}
}

// Acquire returns an opened repository for url.
func (p *Provider) Acquire(ctx context.Context, url string) (*Repository, error) {
	source, err := ParseSource(url)
	if err != nil {
		return nil, &AcquireError{URL: url, Err: err}
	}

	path := filepath.Join(p.CacheDir, source.Name)
	if _, statErr := os.Stat(path); statErr == nil {
		p.Log.Infof("%s already exists, reusing for %s", source.Name, url)
		repo, err := git.PlainOpen(path)
		if err != nil {
			return nil, &AcquireError{URL: url, Err: err}
		}
		return &Repository{Source: source, Path: path, Repo: repo}, nil
	}

	p.Log.Infof("%s does not exist, cloning %s", source.Name, url)
	clone := p.Clone
	if clone == nil {
		clone = plainClone
	}
	repo, err := clone(ctx, path, url)
	if err != nil {
		return nil, &AcquireError{URL: url, Err: err}
	}
	p.Log.Infof("cloned %s into %s", url, path)

	return &Repository{Source: source, Path: path, Repo: repo}, nil
}

func plainClone(ctx context.Context, path, url string) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, path, false, &git.CloneOptions{URL: url})
}
