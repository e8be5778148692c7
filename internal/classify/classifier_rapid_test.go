package classify

import (
	"strings"
	"testing"

	"github.com/masmgr/declmine/internal/git"
	"pgregory.net/rapid"
)

// --- Generators ---

// genSourceLine draws lines from a Java-like alphabet so that both patterns
// match often enough to be exercised.
func genSourceLine() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		tokens := rapid.SliceOfN(rapid.SampledFrom([]string{
			"var", "int", "String", "List<T>", "x", "_y", "$z", "a1",
			" ", "  ", "\t", "=", "==", ";", "(", ")", "\"", "<", "#", "{", "1",
		}), 0, 12).Draw(t, "tokens")
		return strings.Join(tokens, "")
	})
}

// --- Declaration ---

func TestRapidDeclaration_VarImpliesDeclaration(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := genSourceLine().Draw(t, "line")

		if varDeclarationPattern.MatchString(line) && !declarationPattern.MatchString(line) {
			t.Fatalf("variable pattern matched %q but declaration pattern did not", line)
		}
	})
}

func TestRapidDeclaration_VarDecidedByStricterPattern(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := genSourceLine().Draw(t, "line")

		kind, ok := Declaration(line)
		if ok != declarationPattern.MatchString(line) {
			t.Fatalf("Declaration(%q) matched = %v, declaration pattern = %v", line, ok, !ok)
		}
		if ok && (kind == Var) != varDeclarationPattern.MatchString(line) {
			t.Fatalf("Declaration(%q) = %v, inconsistent with variable pattern", line, kind)
		}
	})
}

// --- Indentation ---

func TestRapidIndentation_WeightedWhitespaceCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.String().Draw(t, "line")

		expected := strings.Count(line, " ") + 4*strings.Count(line, "\t")
		if got := Indentation(line); got != expected {
			t.Fatalf("Indentation(%q) = %d, expected %d", line, got, expected)
		}
	})
}

func TestRapidIndentation_OrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		if Indentation(a+b) != Indentation(b+a) {
			t.Fatalf("Indentation depends on order for %q and %q", a, b)
		}
	})
}

// --- Origin mapping ---

func TestRapidDiffTypeFromOrigin_Total(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		origin := git.LineOrigin(rapid.Byte().Draw(t, "origin"))

		got := DiffTypeFromOrigin(origin)
		switch origin {
		case '+':
			if got != Addition {
				t.Fatalf("'+' mapped to %v", got)
			}
		case '-':
			if got != Deletion {
				t.Fatalf("'-' mapped to %v", got)
			}
		default:
			if got != Unknown {
				t.Fatalf("%q mapped to %v, expected Unknown", origin, got)
			}
		}
	})
}

// --- Classify ---

func TestRapidClassify_EmitsIffTrackedValidAndDeclaration(t *testing.T) {
	c := New("java", git.PathFilter{})

	rapid.Check(t, func(t *rapid.T) {
		line := genSourceLine().Draw(t, "line")
		path := rapid.SampledFrom([]string{"A.java", "src/B.java", "C.py", "D.java.bak", ""}).Draw(t, "path")
		corrupt := rapid.Bool().Draw(t, "corrupt")
		content := []byte(line)
		if corrupt {
			content = append(content, 0xff)
		}

		rec, ok := c.Classify("p", testCommit, git.DiffLine{Origin: git.OriginAddition, Content: content, NewPath: path})

		tracked := strings.HasSuffix(path, ".java")
		expected := tracked && !corrupt && declarationPattern.MatchString(line)
		if ok != expected {
			t.Fatalf("Classify(%q, %q) emitted = %v, expected %v", path, content, ok, expected)
		}
		if ok && rec.LineContent != line {
			t.Fatalf("LineContent = %q, expected %q", rec.LineContent, line)
		}
	})
}
