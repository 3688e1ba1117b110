// Package flow derives a node/edge graph from snippet text: one node per
// non-blank line, edges approximating sequential fall-through between
// consecutive non-blank lines. The graph is static; a run contributes only
// the executed overlay.
package flow

import (
	"fmt"
	"strings"

	"retrace/internal/classify"
	"retrace/internal/source"
)

// Node is one non-blank source line.
type Node struct {
	ID       string            `json:"id"`
	Line     int               `json:"line"`
	Code     string            `json:"code"`
	Category classify.Category `json:"category"`
	Executed bool              `json:"executed"`
}

// Edge connects a line to its immediately preceding non-blank line. It is
// a coarse fall-through approximation, not a semantic control-flow edge:
// a loop body line gets no back edge, a branch no split.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Graph holds the nodes and edges of one snippet.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build derives the graph from the snippet alone. executed marks lines
// visited by the latest run; nil means no run has happened, leaving every
// node unexecuted. Edges into structural lines (closing tokens, else-like
// continuations) are suppressed because those lines do not receive
// fall-through from the line above in any meaningful sense.
func Build(snip *source.Snippet, executed map[int]bool) *Graph {
	g := &Graph{Nodes: make([]Node, 0), Edges: make([]Edge, 0)}
	if snip == nil || snip.IsEmpty() {
		return g
	}
	prev := 0 // last non-blank line seen
	for i, raw := range snip.Lines() {
		line := i + 1
		if source.IsBlank(raw) {
			continue
		}
		cat := classify.Classify(raw)
		g.Nodes = append(g.Nodes, Node{
			ID:       fmt.Sprintf("n%d", line),
			Line:     line,
			Code:     strings.TrimSpace(raw),
			Category: cat,
			Executed: executed[line],
		})
		if prev > 0 && cat.ReceivesFallThrough() {
			g.Edges = append(g.Edges, Edge{From: prev, To: line})
		}
		prev = line
	}
	return g
}

// NodeAt returns the node for a 1-based line, nil if the line is blank or
// out of range.
func (g *Graph) NodeAt(line int) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Line == line {
			return &g.Nodes[i]
		}
	}
	return nil
}

// ExecutedCount returns how many nodes carry the executed flag.
func (g *Graph) ExecutedCount() int {
	n := 0
	for i := range g.Nodes {
		if g.Nodes[i].Executed {
			n++
		}
	}
	return n
}
