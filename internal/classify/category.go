// Package classify assigns a syntactic category to physical source lines.
//
// The engine never parses the guest program into an AST; every decision about
// a line (instrument it, give it a flow node, follow it with a fall-through
// edge, label it in a graph) is made from the line's text alone. This package
// is the single place that encodes those textual rules.
package classify

import "strings"

// Category is the coarse syntactic class of one physical line. Blank,
// comment and structural lines drive instrumentation and edge placement;
// the remaining categories label executable lines for display only.
type Category uint8

const (
	// CatBlank is a line containing only whitespace.
	CatBlank Category = iota
	// CatComment is a line that is entirely comment text.
	CatComment
	// CatStructural is a continuation or closing line that cannot start a
	// statement: closing braces, else/case/catch arms, chained calls.
	CatStructural
	// CatFunction starts a function declaration or defines an arrow function.
	CatFunction
	// CatConditional starts an if or switch.
	CatConditional
	// CatLoop starts a for, while or do loop.
	CatLoop
	// CatReturn is a return statement.
	CatReturn
	// CatAssignment declares or assigns a variable.
	CatAssignment
	// CatStatement is any other executable line.
	CatStatement
)

// String returns the string representation of Category.
func (c Category) String() string {
	switch c {
	case CatBlank:
		return "blank"
	case CatComment:
		return "comment"
	case CatStructural:
		return "structural"
	case CatFunction:
		return "function"
	case CatConditional:
		return "conditional"
	case CatLoop:
		return "loop"
	case CatReturn:
		return "return"
	case CatAssignment:
		return "assignment"
	case CatStatement:
		return "statement"
	default:
		return "unknown"
	}
}

// commentPrefixes mark lines that live entirely inside comment syntax. A bare
// "*" start also covers block comment interiors and operator continuations;
// both must stay untouched by instrumentation.
var commentPrefixes = []string{"//", "/*", "*"}

// structuralPrefixes mark lines where a prefixed statement would break the
// surrounding syntax: closing delimiters, clause keywords that must follow
// their block, and method-chain continuations.
var structuralPrefixes = []string{"}", ")", "]", ".", "else", "case ", "case:", "default:", "catch", "finally"}

var (
	functionPrefixes    = []string{"function ", "function(", "async function"}
	conditionalPrefixes = []string{"if ", "if(", "switch ", "switch("}
	loopPrefixes        = []string{"for ", "for(", "while ", "while(", "do ", "do{"}
	returnPrefixes      = []string{"return ", "return;"}
)

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// looksLikeAssignment reports whether the line contains a bare '=' outside
// comparison and arrow tokens. Compound assignments (+=, -=, ...) count.
func looksLikeAssignment(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
			for i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
				i++
			}
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>", rune(s[i-1])) {
			continue
		}
		return true
	}
	return false
}

// Classify assigns a category to one physical line. Executable lines are
// told apart by prefix and substring checks only; the labels are a cosmetic
// layer, never a correctness dependency.
func Classify(line string) Category {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return CatBlank
	case hasAnyPrefix(trimmed, commentPrefixes):
		return CatComment
	case hasAnyPrefix(trimmed, structuralPrefixes):
		return CatStructural
	case hasAnyPrefix(trimmed, functionPrefixes) || strings.Contains(trimmed, "=>"):
		return CatFunction
	case hasAnyPrefix(trimmed, conditionalPrefixes):
		return CatConditional
	case hasAnyPrefix(trimmed, loopPrefixes):
		return CatLoop
	case trimmed == "return" || hasAnyPrefix(trimmed, returnPrefixes):
		return CatReturn
	case looksLikeAssignment(trimmed):
		return CatAssignment
	default:
		return CatStatement
	}
}

// Instrumentable reports whether a line of this category may be prefixed
// with a tracking call.
func (c Category) Instrumentable() bool {
	switch c {
	case CatBlank, CatComment, CatStructural:
		return false
	default:
		return true
	}
}

// EndsStatement reports whether the line ends a complete statement, which is
// where a capture call can be appended without splitting an expression.
func EndsStatement(line string) bool {
	return strings.HasSuffix(strings.TrimSpace(line), ";")
}

// ReceivesFallThrough reports whether a flow node for this category is
// entered by sequential fall-through from the previous non-blank line.
// Structural lines are reached by closing a block or by branch dispatch, so
// they get no fall-through edge.
func (c Category) ReceivesFallThrough() bool {
	switch c {
	case CatBlank, CatStructural:
		return false
	default:
		return true
	}
}
