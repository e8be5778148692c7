// Package mining runs the walk, diff, classify and emit pipeline for a set of
// repositories.
package mining

import (
	"errors"
	"fmt"
	"time"

	"github.com/masmgr/declmine/internal/git"
	"github.com/masmgr/declmine/internal/output"
)

// RunConfig is the immutable configuration of one run.
type RunConfig struct {
	Sources          []string
	Cutoff           time.Time
	Extension        string
	Filter           git.PathFilter
	CacheDir         string
	Output           output.OutputOptions
	StrictResolution bool
}

// Validate checks that every source parses and that no two sources share a
// short name, since the name picks both the working copy and the output file.
func (c RunConfig) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no repositories to mine")
	}
	if err := c.Filter.Validate(); err != nil {
		return err
	}

	seen := make(map[string]string, len(c.Sources))
	for _, url := range c.Sources {
		source, err := git.ParseSource(url)
		if err != nil {
			return &git.AcquireError{URL: url, Err: err}
		}
		if prev, dup := seen[source.Name]; dup {
			return fmt.Errorf("repositories %s and %s share the name %q", prev, url, source.Name)
		}
		seen[source.Name] = url
	}
	return nil
}
