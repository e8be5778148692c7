package git

import (
	"errors"
	"strings"
	"testing"

	"github.com/masmgr/declmine/internal/gittest"
)

type seenLine struct {
	origin  LineOrigin
	content string
	path    string
}

func firstPair(t *testing.T, r *gittest.Repo) CommitPair {
	t.Helper()

	it, err := NewRevisionSelector(r.Repo, SelectorOptions{Cutoff: cutoff}, nil).Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	defer it.Close()

	pair, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return pair
}

func patchLines(t *testing.T, p *Patch) []seenLine {
	t.Helper()

	var lines []seenLine
	err := p.ForEachLine(func(l DiffLine) error {
		lines = append(lines, seenLine{origin: l.Origin, content: string(l.Content), path: l.Path()})
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachLine: %v", err)
	}
	return lines
}

func bodyLines(lines []seenLine) []seenLine {
	var body []seenLine
	for _, l := range lines {
		if l.origin != OriginFileHeader && l.origin != OriginHunkHeader {
			body = append(body, l)
		}
	}
	return body
}

func TestDiffGenerator_ParentToCommit(t *testing.T) {
	r := gittest.New(t)
	r.Write("src/Foo.java", "class Foo {\n  var x = 1;\n}\n")
	r.Commit("root", "dev", gittest.Date(2019, 1, 1))
	r.Write("src/Foo.java", "class Foo {\n  String y = bar();\n}\n")
	r.Commit("change", "dev", gittest.Date(2019, 2, 1))

	patch, err := NewDiffGenerator(nil).Diff(firstPair(t, r))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	lines := patchLines(t, patch)

	expected := []seenLine{
		{origin: OriginContext, content: "class Foo {", path: "src/Foo.java"},
		{origin: OriginDeletion, content: "  var x = 1;", path: "src/Foo.java"},
		{origin: OriginAddition, content: "  String y = bar();", path: "src/Foo.java"},
		{origin: OriginContext, content: "}", path: "src/Foo.java"},
	}
	body := bodyLines(lines)
	if len(body) != len(expected) {
		t.Fatalf("got %d body lines (%v), expected %d", len(body), body, len(expected))
	}
	for i := range expected {
		if body[i] != expected[i] {
			t.Errorf("line %d = %+v, expected %+v", i, body[i], expected[i])
		}
	}

	var sawHunk bool
	for _, l := range lines {
		if l.origin == OriginHunkHeader {
			sawHunk = true
			if !strings.HasPrefix(l.content, "@@ ") {
				t.Errorf("hunk header content = %q", l.content)
			}
		}
	}
	if !sawHunk {
		t.Error("expected a hunk header line")
	}
	if lines[0].origin != OriginFileHeader {
		t.Errorf("first line origin = %q, expected file header", lines[0].origin)
	}
}

func TestDiffGenerator_DeletedFileUsesOldPath(t *testing.T) {
	r := gittest.New(t)
	r.Write("Gone.java", "int gone = 1;\n")
	r.Write("Keep.java", "class Keep {}\n")
	r.Commit("root", "dev", gittest.Date(2019, 1, 1))
	r.Remove("Gone.java")
	r.Commit("delete", "dev", gittest.Date(2019, 2, 1))

	patch, err := NewDiffGenerator(nil).Diff(firstPair(t, r))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	body := bodyLines(patchLines(t, patch))
	if len(body) != 1 {
		t.Fatalf("got %d body lines, expected 1: %v", len(body), body)
	}
	if body[0] != (seenLine{origin: OriginDeletion, content: "int gone = 1;", path: "Gone.java"}) {
		t.Errorf("line = %+v", body[0])
	}
}

func TestDiffGenerator_KeepSkipsFiles(t *testing.T) {
	r := gittest.New(t)
	r.Write("a.py", "x = 1\n")
	r.Write("A.java", "int a = 1;\n")
	r.Commit("root", "dev", gittest.Date(2019, 1, 1))
	r.Write("a.py", "x = 2\n")
	r.Write("A.java", "int a = 2;\n")
	r.Commit("change", "dev", gittest.Date(2019, 2, 1))

	keep := func(path string) bool { return strings.HasSuffix(path, ".java") }
	patch, err := NewDiffGenerator(keep).Diff(firstPair(t, r))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	if patch.Files() != 1 {
		t.Fatalf("Files() = %d, expected 1", patch.Files())
	}
	for _, l := range patchLines(t, patch) {
		if l.path != "A.java" {
			t.Errorf("unexpected line from %s", l.path)
		}
	}
}

func TestDiffGenerator_MissingBlobIsADiffError(t *testing.T) {
	r := gittest.New(t)
	r.Write("A.java", "class A {}\n")
	r.Commit("root", "dev", gittest.Date(2019, 1, 1))
	r.Write("A.java", "class A { int broken = 1; }\n")
	r.Commit("change", "dev", gittest.Date(2019, 2, 1))
	r.RemoveLooseObject(gittest.BlobHash("class A { int broken = 1; }\n"))

	repo := r.Reopen()
	it, err := NewRevisionSelector(repo, SelectorOptions{Cutoff: cutoff}, nil).Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	defer it.Close()
	pair, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if _, err := NewDiffGenerator(nil).Diff(pair); err == nil {
		t.Fatal("expected diff error for missing blob")
	}
}

func TestPatch_ForEachLineStopsOnError(t *testing.T) {
	p := &Patch{files: []filePatchText{
		{newPath: "A.java", text: []byte("@@ -1 +1 @@\n-a\n+b\n")},
		{newPath: "B.java", text: []byte("@@ -1 +1 @@\n-c\n+d\n")},
	}}
	stop := errors.New("stop")

	calls := 0
	err := p.ForEachLine(func(DiffLine) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})

	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, expected %v", err, stop)
	}
	if calls != 2 {
		t.Errorf("calls = %d, expected 2", calls)
	}
}

func TestEachPatchLine_Origins(t *testing.T) {
	text := "diff --git a/A.java b/A.java\n" +
		"--- a/A.java\n" +
		"+++ b/A.java\n" +
		"@@ -1,2 +1,2 @@ int count = 0;\n" +
		" keep\n" +
		"-old\n" +
		"+new\n" +
		"\n" +
		"--- not a header\n" +
		"\\ No newline at end of file\n"

	var got []seenLine
	err := eachPatchLine([]byte(text), "A.java", "A.java", func(l DiffLine) error {
		got = append(got, seenLine{origin: l.Origin, content: string(l.Content), path: l.Path()})
		return nil
	})
	if err != nil {
		t.Fatalf("eachPatchLine: %v", err)
	}

	expected := []seenLine{
		{OriginFileHeader, "diff --git a/A.java b/A.java", "A.java"},
		{OriginFileHeader, "--- a/A.java", "A.java"},
		{OriginFileHeader, "+++ b/A.java", "A.java"},
		{OriginHunkHeader, "@@ -1,2 +1,2 @@", "A.java"},
		{OriginContext, "keep", "A.java"},
		{OriginDeletion, "old", "A.java"},
		{OriginAddition, "new", "A.java"},
		{OriginContext, "", "A.java"},
		{OriginDeletion, "-- not a header", "A.java"},
		{OriginNoNewline, " No newline at end of file", "A.java"},
	}
	if len(got) != len(expected) {
		t.Fatalf("got %d lines, expected %d: %v", len(got), len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("line %d = %+v, expected %+v", i, got[i], expected[i])
		}
	}
}

func TestDiffLine_Path(t *testing.T) {
	tests := []struct {
		name     string
		line     DiffLine
		expected string
	}{
		{name: "Modified", line: DiffLine{OldPath: "a.java", NewPath: "a.java"}, expected: "a.java"},
		{name: "Renamed prefers new", line: DiffLine{OldPath: "old.java", NewPath: "new.java"}, expected: "new.java"},
		{name: "Deleted falls back", line: DiffLine{OldPath: "gone.java"}, expected: "gone.java"},
		{name: "Added", line: DiffLine{NewPath: "added.java"}, expected: "added.java"},
		{name: "Neither", line: DiffLine{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.Path(); got != tt.expected {
				t.Errorf("Path() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
