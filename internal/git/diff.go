package git

import (
	"bytes"
	"fmt"

	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DiffGenerator computes line-level patches between a commit and its first
// parent.
type DiffGenerator struct {
	contextLines int
	keep         func(path string) bool
}

// NewDiffGenerator creates a generator emitting unified patches with the
// standard three lines of context. When keep is non-nil, files whose path
// (post-change, else pre-change) it rejects are not diffed at all.
func NewDiffGenerator(keep func(path string) bool) *DiffGenerator {
	return &DiffGenerator{contextLines: fdiff.DefaultContextLines, keep: keep}
}

// Patch is the encoded patch of one commit pair. It is only valid for the
// iteration step that produced it.
type Patch struct {
	files []filePatchText
}

type filePatchText struct {
	oldPath string
	newPath string
	text    []byte
}

// Diff computes the patch from the parent's tree to the commit's tree. A tree
// that cannot be resolved is treated as empty.
func (g *DiffGenerator) Diff(pair CommitPair) (*Patch, error) {
	from := treeOrEmpty(pair.Parent)
	to := treeOrEmpty(pair.Commit)

	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, fmt.Errorf("diff trees of %s: %w", pair.Commit.Hash, err)
	}
	changes = g.filter(changes)

	patch, err := changes.Patch()
	if err != nil {
		return nil, fmt.Errorf("compute patch of %s: %w", pair.Commit.Hash, err)
	}

	out := &Patch{files: make([]filePatchText, 0, len(patch.FilePatches()))}
	for _, fp := range patch.FilePatches() {
		var buf bytes.Buffer
		if err := fdiff.NewUnifiedEncoder(&buf, g.contextLines).Encode(singleFilePatch{fp}); err != nil {
			return nil, fmt.Errorf("encode patch of %s: %w", pair.Commit.Hash, err)
		}

		var oldPath, newPath string
		from, to := fp.Files()
		if from != nil {
			oldPath = from.Path()
		}
		if to != nil {
			newPath = to.Path()
		}
		out.files = append(out.files, filePatchText{oldPath: oldPath, newPath: newPath, text: buf.Bytes()})
	}

	return out, nil
}

func (g *DiffGenerator) filter(changes object.Changes) object.Changes {
	if g.keep == nil {
		return changes
	}
	kept := changes[:0:0]
	for _, c := range changes {
		path := c.To.Name
		if path == "" {
			path = c.From.Name
		}
		if g.keep(path) {
			kept = append(kept, c)
		}
	}
	return kept
}

func treeOrEmpty(c *object.Commit) *object.Tree {
	tree, err := c.Tree()
	if err != nil {
		return &object.Tree{}
	}
	return tree
}

// ForEachLine calls fn for every line of the patch in patch order, stopping at
// the first error fn returns.
func (p *Patch) ForEachLine(fn func(DiffLine) error) error {
	for _, f := range p.files {
		if err := eachPatchLine(f.text, f.oldPath, f.newPath, fn); err != nil {
			return err
		}
	}
	return nil
}

// Files returns the number of file patches.
func (p *Patch) Files() int {
	return len(p.files)
}

// eachPatchLine splits the unified text of a single file patch into lines.
// Everything before the first hunk header is file header.
func eachPatchLine(text []byte, oldPath, newPath string, fn func(DiffLine) error) error {
	inHunk := false
	for len(text) > 0 {
		var line []byte
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			line, text = text, nil
		}

		dl := DiffLine{OldPath: oldPath, NewPath: newPath}
		switch {
		case bytes.HasPrefix(line, []byte("@@")):
			inHunk = true
			dl.Origin, dl.Content = OriginHunkHeader, hunkRange(line)
		case !inHunk:
			dl.Origin, dl.Content = OriginFileHeader, line
		case len(line) == 0:
			dl.Origin, dl.Content = OriginContext, line
		default:
			dl.Origin, dl.Content = LineOrigin(line[0]), line[1:]
		}

		if err := fn(dl); err != nil {
			return err
		}
	}
	return nil
}

// hunkRange cuts a hunk header after its closing "@@". The unified encoder
// appends the source line above the hunk there, which is neither changed nor
// context.
func hunkRange(line []byte) []byte {
	if i := bytes.Index(line[2:], []byte("@@")); i >= 0 {
		return line[:i+4]
	}
	return line
}

// singleFilePatch presents one file patch to the unified encoder so that every
// encoded line can be attributed to its file without parsing headers.
type singleFilePatch struct {
	fp fdiff.FilePatch
}

func (p singleFilePatch) FilePatches() []fdiff.FilePatch {
	return []fdiff.FilePatch{p.fp}
}

func (p singleFilePatch) Message() string {
	return ""
}
