// Package console writes colored diagnostic lines for long-running batch runs.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Logger receives progress and diagnostic messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Reporter writes one colored line per message. It is safe for concurrent use,
// so every mining unit can share the same diagnostic stream.
type Reporter struct {
	mu   sync.Mutex
	out  io.Writer
	info *color.Color
	warn *color.Color
	err  *color.Color
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:  out,
		info: color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		err:  color.New(color.FgRed),
	}
}

// Infof reports progress.
func (r *Reporter) Infof(format string, args ...interface{}) {
	r.print(r.info, format, args...)
}

// Warnf reports a recovered problem.
func (r *Reporter) Warnf(format string, args ...interface{}) {
	r.print(r.warn, format, args...)
}

// Errorf reports a failure.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.print(r.err, format, args...)
}

func (r *Reporter) print(c *color.Color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c.Fprint(r.out, msg)
}

// Discard drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Compile-time interface conformance check.
var _ Logger = (*Reporter)(nil)
