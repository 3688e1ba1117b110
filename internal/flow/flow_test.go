package flow_test

import (
	"bytes"
	"strings"
	"testing"

	"retrace/internal/classify"
	"retrace/internal/flow"
	"retrace/internal/source"
)

const branchy = "let x = 1;\nif (x) {\nx = 2;\n} else {\nx = 3;\n}"

func build(t *testing.T, text string, executed map[int]bool) *flow.Graph {
	t.Helper()
	return flow.Build(source.New("test.js", text), executed)
}

func edgePairs(g *flow.Graph) [][2]int {
	out := make([][2]int, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, [2]int{e.From, e.To})
	}
	return out
}

func TestBuildOneNodePerNonBlankLine(t *testing.T) {
	g := build(t, "let a = 1;\n\nlet b = 2;\n   \nlet c = 3;", nil)

	if len(g.Nodes) != 3 {
		t.Fatalf("expected three nodes, got %d", len(g.Nodes))
	}
	wantLines := []int{1, 3, 5}
	wantIDs := []string{"n1", "n3", "n5"}
	for i, n := range g.Nodes {
		if n.Line != wantLines[i] {
			t.Errorf("node %d: expected line %d, got %d", i, wantLines[i], n.Line)
		}
		if n.ID != wantIDs[i] {
			t.Errorf("node %d: expected id %q, got %q", i, wantIDs[i], n.ID)
		}
	}
	if g.NodeAt(2) != nil {
		t.Error("expected no node for a blank line")
	}
}

func TestBuildLinesStrictlyIncreasingInRange(t *testing.T) {
	snip := source.New("test.js", branchy)
	g := flow.Build(snip, nil)

	prev := 0
	for _, n := range g.Nodes {
		if n.Line <= prev {
			t.Fatalf("node lines not strictly increasing: %d after %d", n.Line, prev)
		}
		if n.Line < 1 || n.Line > int(snip.LineCount()) {
			t.Fatalf("node line %d out of range", n.Line)
		}
		prev = n.Line
	}
}

func TestBuildSuppressesEdgesIntoStructuralLines(t *testing.T) {
	g := build(t, branchy, nil)

	want := [][2]int{{1, 2}, {2, 3}, {4, 5}}
	got := edgePairs(g)
	if len(got) != len(want) {
		t.Fatalf("expected edges %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected edges %v, got %v", want, got)
		}
	}

	if n := g.NodeAt(4); n == nil || n.Category != classify.CatStructural {
		t.Error("expected line 4 to classify as structural")
	}
}

func TestBuildEdgeSkipsBlankLines(t *testing.T) {
	g := build(t, "let a = 1;\n\nlet b = 2;", nil)

	got := edgePairs(g)
	if len(got) != 1 || got[0] != [2]int{1, 3} {
		t.Fatalf("expected a single 1->3 edge, got %v", got)
	}
}

func TestBuildCommentLineReceivesEdge(t *testing.T) {
	g := build(t, "let a = 1;\n// note\nlet b = 2;", nil)

	got := edgePairs(g)
	if len(got) != 2 || got[0] != [2]int{1, 2} || got[1] != [2]int{2, 3} {
		t.Fatalf("expected edges through the comment line, got %v", got)
	}
}

func TestBuildExecutedOverlay(t *testing.T) {
	g := build(t, branchy, map[int]bool{1: true, 2: true, 3: true})

	if got := g.ExecutedCount(); got != 3 {
		t.Fatalf("expected three executed nodes, got %d", got)
	}
	if n := g.NodeAt(5); n == nil || n.Executed {
		t.Error("expected the else branch unexecuted")
	}
}

func TestBuildNilAndEmpty(t *testing.T) {
	g := flow.Build(nil, nil)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatalf("expected empty graph for nil snippet, got %+v", g)
	}

	g = build(t, "", nil)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatalf("expected empty graph for empty snippet, got %+v", g)
	}
}

func TestWriteDOT(t *testing.T) {
	g := build(t, "let x = 1;\nconsole.log(\"hi\");", map[int]bool{1: true})

	var buf bytes.Buffer
	if err := g.WriteDOT(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dot := buf.String()

	if !strings.HasPrefix(dot, "digraph flow {") {
		t.Errorf("expected digraph header, got %q", dot)
	}
	if !strings.Contains(dot, `n1 [shape=box,label="1: let x = 1;"`) {
		t.Errorf("expected node n1 in %q", dot)
	}
	if !strings.Contains(dot, "style=filled") {
		t.Errorf("expected executed fill in %q", dot)
	}
	if !strings.Contains(dot, `\"hi\"`) {
		t.Errorf("expected escaped quotes in %q", dot)
	}
	if !strings.Contains(dot, "n1 -> n2") {
		t.Errorf("expected edge n1 -> n2 in %q", dot)
	}
}

func TestDOTTruncatesLongLabels(t *testing.T) {
	long := "let verbose = " + strings.Repeat("1 + ", 30) + "1;"
	g := build(t, long, nil)

	dot := g.DOT()
	if !strings.Contains(dot, "...") {
		t.Errorf("expected truncated label in %q", dot)
	}
}
