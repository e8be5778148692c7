// Package classify turns patch lines into declaration records.
//
// The two patterns are a syntactic heuristic, not a parser. The variable
// pattern must stay at least as strict as the declaration pattern: a line is
// only ever tested for Var after it matched the declaration pattern.
package classify

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/masmgr/declmine/internal/git"
)

var (
	declarationPattern    = regexp.MustCompile(`[^"<#{]*[_a-zA-Z][_$a-zA-Z0-9<>]*\s+[_a-zA-Z][_$a-zA-Z0-9]*\s*=\s*.*`)
	varDeclarationPattern = regexp.MustCompile(`.*var\s+[_a-zA-Z][_$a-zA-Z0-9]*\s*=.*`)
)

// DefaultExtension is the tracked source extension.
const DefaultExtension = "java"

// Classifier decides which patch lines become records.
type Classifier struct {
	extension string
	filter    git.PathFilter
}

// New creates a classifier tracking files with the given extension (with or
// without the leading dot). The filter further restricts tracked paths.
func New(extension string, filter git.PathFilter) *Classifier {
	extension = strings.TrimPrefix(extension, ".")
	if extension == "" {
		extension = DefaultExtension
	}
	return &Classifier{extension: extension, filter: filter}
}

// Tracks reports whether lines of the file at p are classified at all.
func (c *Classifier) Tracks(p string) bool {
	if p == "" {
		return false
	}
	ext, ok := extension(p)
	return ok && ext == c.extension && c.filter.Match(p)
}

// extension returns the text after the last dot of the base name. Dot files
// such as ".java" have no extension.
func extension(p string) (string, bool) {
	name := path.Base(p)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return "", false
	}
	return name[i+1:], true
}

// Classify returns the record for line, or false when the line is skipped:
// untracked file, content that is not valid UTF-8, or no declaration match.
func (c *Classifier) Classify(project string, commit git.CommitInfo, line git.DiffLine) (Record, bool) {
	file := line.Path()
	if !c.Tracks(file) {
		return Record{}, false
	}

	if !utf8.Valid(line.Content) {
		return Record{}, false
	}
	content := string(line.Content)

	kind, ok := Declaration(content)
	if !ok {
		return Record{}, false
	}

	return Record{
		DiffType:          DiffTypeFromOrigin(line.Origin),
		LineContent:       content,
		DeclarationType:   kind,
		Indentation:       Indentation(content),
		SecondsSinceEpoch: commit.When.Unix(),
		CommitHash:        commit.SHA,
		FileName:          path.Base(file),
		ProjectName:       project,
		Committer:         commit.Committer,
	}, true
}

// Declaration classifies a line. It returns false when the line does not look
// like a declaration at all.
func Declaration(line string) (DeclarationType, bool) {
	if !declarationPattern.MatchString(line) {
		return 0, false
	}
	if varDeclarationPattern.MatchString(line) {
		return Var, true
	}
	return Type, true
}

// Indentation scores every whitespace character of the line, not only the
// leading run: a space counts 1, a tab 4, anything else 0.
func Indentation(line string) int {
	score := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			continue
		}
		switch r {
		case ' ':
			score++
		case '\t':
			score += 4
		}
	}
	return score
}

// DiffTypeFromOrigin maps a patch origin marker to a diff type.
func DiffTypeFromOrigin(origin git.LineOrigin) DiffType {
	switch origin {
	case git.OriginAddition:
		return Addition
	case git.OriginDeletion:
		return Deletion
	default:
		return Unknown
	}
}
