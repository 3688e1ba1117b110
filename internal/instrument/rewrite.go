// Package instrument rewrites a source snippet so that executing it reports
// every line visit and variable assignment back to the host.
//
// The rewrite is purely textual and preserves the physical line count: every
// recorded line number stays directly meaningful against the original text.
package instrument

import (
	"fmt"
	"regexp"
	"strings"

	"retrace/internal/classify"
	"retrace/internal/source"
)

// Names of the hook functions the rewritten program calls. The sandbox must
// bind all of them before evaluating the rewritten text.
const (
	StepFunc    = "__step"
	CaptureFunc = "__capture"
)

var (
	declPattern   = regexp.MustCompile(`\b(?:let|const|var)\s+(\w+)\s*=`)
	assignPattern = regexp.MustCompile(`^(\w+)\s*=[^=>]`)
)

// reservedWords are names that must never be treated as captured variables:
// language keywords, literal constants, and the hook bindings themselves.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "finally": true, "for": true, "function": true,
	"if": true, "in": true, "instanceof": true, "new": true,
	"return": true, "switch": true, "this": true, "throw": true,
	"try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "let": true, "const": true,
	"class": true, "export": true, "extends": true, "import": true,
	"super": true, "yield": true, "true": true, "false": true,
	"null": true, "undefined": true,
	"console": true, StepFunc: true, CaptureFunc: true,
}

// Result is a rewritten program plus the bookkeeping needed to interpret its
// trace: which lines report visits and which names each line captures.
type Result struct {
	Text     string
	Tracked  []uint32            // 1-based lines prefixed with a step call
	Captures map[uint32][]string // 1-based line -> names captured after it
}

// Rewrite instruments every executable line of the snippet. Blank, comment,
// and structural lines pass through untouched; everything else is prefixed
// with a step call carrying its 1-based line number. Declaration and plain
// assignment lines that end a statement additionally get a capture call per
// assigned name, appended after the original text.
func Rewrite(snip *source.Snippet) *Result {
	res := &Result{Captures: make(map[uint32][]string)}
	if snip.IsEmpty() {
		return res
	}

	lines := snip.Lines()
	var b strings.Builder
	b.Grow(len(snip.Content) + len(lines)*16)

	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		lineNum := uint32(i) + 1

		if !classify.Classify(line).Instrumentable() {
			b.WriteString(line)
			continue
		}

		fmt.Fprintf(&b, "%s(%d); %s", StepFunc, lineNum, line)
		res.Tracked = append(res.Tracked, lineNum)

		names := captureNames(strings.TrimSpace(line))
		for _, name := range names {
			fmt.Fprintf(&b, " %s(%d, %q, %s);", CaptureFunc, lineNum, name, name)
		}
		if len(names) > 0 {
			res.Captures[lineNum] = names
		}
	}

	res.Text = b.String()
	return res
}

// captureNames lists the variables assigned by one trimmed line, in source
// order. Loop headers are skipped entirely: a loop-scoped binding is gone by
// the time an appended capture would run.
func captureNames(trimmed string) []string {
	if !classify.EndsStatement(trimmed) {
		return nil
	}
	if strings.HasPrefix(trimmed, "for ") || strings.HasPrefix(trimmed, "for(") {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range declPattern.FindAllStringSubmatch(trimmed, -1) {
		if name := m[1]; !reservedWords[name] && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if m := assignPattern.FindStringSubmatch(trimmed); m != nil {
		if name := m[1]; !reservedWords[name] && !seen[name] {
			names = append(names, name)
		}
	}
	return names
}
