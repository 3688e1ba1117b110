package flow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	"retrace/internal/classify"
)

const labelRuneLimit = 32

var categoryColor = map[classify.Category]string{
	classify.CatComment:     "#AC6E00",
	classify.CatStructural:  "#585858",
	classify.CatFunction:    "#7B2D8B",
	classify.CatConditional: "#C25400",
	classify.CatLoop:        "#1A7F37",
	classify.CatReturn:      "#A40E26",
	classify.CatAssignment:  "#0B7285",
	classify.CatStatement:   "#0058AD",
}

const executedFill = "#D7E8FA"

type dotNode struct {
	name     string
	label    string
	color    string
	executed bool
}

func (n dotNode) String() string {
	if n.executed {
		return fmt.Sprintf(`%s [shape=box,label="%s",color="%s",style=filled,fillcolor="%s"]`, n.name, n.label, n.color, executedFill)
	}
	return fmt.Sprintf(`%s [shape=box,label="%s",color="%s"]`, n.name, n.label, n.color)
}

type dotEdge struct {
	from string
	to   string
}

func (e dotEdge) String() string {
	return fmt.Sprintf(`%s -> %s`, e.from, e.to)
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func nodeLabel(n Node) string {
	code := n.Code
	if runes := []rune(code); len(runes) > labelRuneLimit {
		code = string(runes[:labelRuneLimit]) + "..."
	}
	return labelEscaper.Replace(fmt.Sprintf("%d: %s", n.Line, code))
}

// DOT renders the graph as Graphviz DOT text.
func (g *Graph) DOT() string {
	tpl := []string{"digraph flow {", "    rankdir=TB"}

	for _, n := range g.Nodes {
		dn := dotNode{
			name:     n.ID,
			label:    nodeLabel(n),
			color:    categoryColor[n.Category],
			executed: n.Executed,
		}
		tpl = append(tpl, fmt.Sprintf("    %s", dn.String()))
	}

	tpl = append(tpl, "")

	for _, e := range g.Edges {
		de := dotEdge{from: fmt.Sprintf("n%d", e.From), to: fmt.Sprintf("n%d", e.To)}
		tpl = append(tpl, fmt.Sprintf("    %s", de.String()))
	}

	tpl = append(tpl, "}")
	return strings.Join(tpl, "\n")
}

// WriteDOT writes the DOT text to w.
func (g *Graph) WriteDOT(w io.Writer) error {
	_, err := io.WriteString(w, g.DOT()+"\n")
	return err
}

// RenderSVG lays the graph out with graphviz and writes an SVG file.
func (g *Graph) RenderSVG(path string) error {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	graph, err := graphviz.ParseBytes([]byte(g.DOT()))
	if err != nil {
		return fmt.Errorf("parse flow graph: %w", err)
	}
	if err := gv.RenderFilename(ctx, graph, graphviz.SVG, path); err != nil {
		return fmt.Errorf("render flow graph: %w", err)
	}
	return nil
}
