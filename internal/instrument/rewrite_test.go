package instrument

import (
	"strings"
	"testing"

	"retrace/internal/source"
)

func rewrite(t *testing.T, text string) *Result {
	t.Helper()
	return Rewrite(source.New("test.js", text))
}

func TestRewritePreservesLineCount(t *testing.T) {
	texts := []string{
		"let x = 1;",
		"let x = 1;\nlet y = 2;\nconsole.log(x + y);",
		"if (x) {\n  y = 1;\n} else {\n  y = 2;\n}",
		"\n\nlet x = 1;\n\n",
		"// only a comment",
		"",
	}
	for _, text := range texts {
		res := rewrite(t, text)
		got := strings.Count(res.Text, "\n")
		want := strings.Count(text, "\n")
		if got != want {
			t.Fatalf("newline count changed for %q: got %d, want %d", text, got, want)
		}
	}
}

func TestRewritePrefixesExecutableLines(t *testing.T) {
	res := rewrite(t, "let x = 1;\nlet y = 2;\nconsole.log(x + y);")

	lines := strings.Split(res.Text, "\n")
	if !strings.HasPrefix(lines[0], "__step(1); let x = 1;") {
		t.Fatalf("line 1 not instrumented: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "__step(2); let y = 2;") {
		t.Fatalf("line 2 not instrumented: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "__step(3); console.log(x + y);") {
		t.Fatalf("line 3 not instrumented: %q", lines[2])
	}
	if len(res.Tracked) != 3 || res.Tracked[0] != 1 || res.Tracked[2] != 3 {
		t.Fatalf("unexpected tracked lines: %v", res.Tracked)
	}
}

func TestRewriteSkipsBlankCommentStructural(t *testing.T) {
	text := "let x = 1;\n\n// comment\n} // close\nelse {\n  .map(f);"
	res := rewrite(t, text)
	lines := strings.Split(res.Text, "\n")

	if lines[1] != "" {
		t.Fatalf("blank line changed: %q", lines[1])
	}
	if lines[2] != "// comment" {
		t.Fatalf("comment line changed: %q", lines[2])
	}
	if lines[3] != "} // close" {
		t.Fatalf("closing brace line changed: %q", lines[3])
	}
	if lines[4] != "else {" {
		t.Fatalf("else line changed: %q", lines[4])
	}
	if lines[5] != "  .map(f);" {
		t.Fatalf("method chain line changed: %q", lines[5])
	}
	if len(res.Tracked) != 1 || res.Tracked[0] != 1 {
		t.Fatalf("unexpected tracked lines: %v", res.Tracked)
	}
}

func TestRewriteAppendsCaptureForDeclarations(t *testing.T) {
	res := rewrite(t, "let x = 1;")
	want := `__step(1); let x = 1; __capture(1, "x", x);`
	if res.Text != want {
		t.Fatalf("got %q, want %q", res.Text, want)
	}
	if names := res.Captures[1]; len(names) != 1 || names[0] != "x" {
		t.Fatalf("unexpected captures: %v", res.Captures)
	}
}

func TestRewriteCapturesPlainAssignment(t *testing.T) {
	res := rewrite(t, "let x = 1;\nx = x + 1;")
	lines := strings.Split(res.Text, "\n")
	if !strings.Contains(lines[1], `__capture(2, "x", x);`) {
		t.Fatalf("reassignment not captured: %q", lines[1])
	}
}

func TestRewriteNoCaptureWithoutSemicolon(t *testing.T) {
	res := rewrite(t, "let total = 0")
	if strings.Contains(res.Text, "__capture") {
		t.Fatalf("capture appended to unterminated line: %q", res.Text)
	}
}

func TestRewriteNoCaptureOnForHeader(t *testing.T) {
	res := rewrite(t, "for (let i = 0; i < 3; i++) sum += i;")
	if strings.Contains(res.Text, "__capture") {
		t.Fatalf("capture appended to loop header: %q", res.Text)
	}
	if !strings.HasPrefix(res.Text, "__step(1); ") {
		t.Fatalf("loop header lost its step call: %q", res.Text)
	}
}

func TestRewriteNoCaptureForComparisonOrArrow(t *testing.T) {
	for _, text := range []string{"x == y;", "x => x * 2;"} {
		res := rewrite(t, text)
		if strings.Contains(res.Text, "__capture") {
			t.Fatalf("capture appended to %q: %q", text, res.Text)
		}
	}
}

func TestRewriteSkipsReservedNames(t *testing.T) {
	res := rewrite(t, "let undefined = 1;")
	if strings.Contains(res.Text, "__capture") {
		t.Fatalf("capture appended for reserved name: %q", res.Text)
	}
}

func TestRewriteEmptySnippet(t *testing.T) {
	res := rewrite(t, "")
	if res.Text != "" || len(res.Tracked) != 0 {
		t.Fatalf("unexpected result for empty snippet: %+v", res)
	}
}

func TestRewriteMultipleDeclarationsOneLine(t *testing.T) {
	res := rewrite(t, "let a = 1; let b = 2;")
	if !strings.Contains(res.Text, `__capture(1, "a", a);`) || !strings.Contains(res.Text, `__capture(1, "b", b);`) {
		t.Fatalf("expected both declarations captured: %q", res.Text)
	}
	if names := res.Captures[1]; len(names) != 2 {
		t.Fatalf("unexpected capture names: %v", names)
	}
}
