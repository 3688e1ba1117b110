// Package rules is a regex-based static scanner, independent of execution
// tracing: it matches suspect patterns line by line and produces an issue
// list a caller may fold into a run's trace as warning entries.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"retrace/internal/classify"
	"retrace/internal/engine"
	"retrace/internal/source"
)

// Severity defines the importance of an issue.
type Severity uint8

const (
	// SevInfo is for informational findings.
	SevInfo Severity = iota
	// SevWarning is for findings that usually indicate a bug.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Rule is one line-matching pattern.
type Rule struct {
	ID         string
	Pattern    *regexp.Regexp
	Severity   Severity
	Message    string
	Suggestion string
}

// Issue is one finding of a rule on a source line.
type Issue struct {
	RuleID     string   `json:"ruleId"`
	Line       int      `json:"line"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Code       string   `json:"code"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Builtin returns the built-in rule set. Patterns are line-local: a finding
// names one line, never a span.
func Builtin() []Rule {
	return []Rule{
		{
			ID:         "eval",
			Pattern:    regexp.MustCompile(`\beval\s*\(`),
			Severity:   SevError,
			Message:    "eval() executes arbitrary code",
			Suggestion: "replace eval with JSON.parse or explicit logic",
		},
		{
			ID:         "loose-equality",
			Pattern:    regexp.MustCompile(`([^=!<>]|^)==([^=]|$)|!=([^=]|$)`),
			Severity:   SevWarning,
			Message:    "loose equality coerces types before comparing",
			Suggestion: "use === or !==",
		},
		{
			ID:         "assign-in-condition",
			Pattern:    regexp.MustCompile(`if\s*\([^)]*[^=!<>]=[^=]`),
			Severity:   SevWarning,
			Message:    "assignment inside a condition",
			Suggestion: "compare with === or move the assignment out",
		},
		{
			ID:         "var-keyword",
			Pattern:    regexp.MustCompile(`\bvar\s+`),
			Severity:   SevInfo,
			Message:    "var is function-scoped and hoisted",
			Suggestion: "prefer let or const",
		},
		{
			ID:         "empty-catch",
			Pattern:    regexp.MustCompile(`catch\s*(\([^)]*\))?\s*\{\s*\}`),
			Severity:   SevWarning,
			Message:    "empty catch block swallows errors",
			Suggestion: "handle or rethrow the error",
		},
		{
			ID:         "console-left",
			Pattern:    regexp.MustCompile(`\bconsole\.(log|info|warn|error)\s*\(`),
			Severity:   SevInfo,
			Message:    "console call left in code",
			Suggestion: "remove debug output before shipping",
		},
	}
}

// Scanner applies a rule set to snippets.
type Scanner struct {
	rules []Rule
}

// NewScanner builds a scanner over the given rules; with none given it uses
// the built-in set.
func NewScanner(rules ...Rule) *Scanner {
	if len(rules) == 0 {
		rules = Builtin()
	}
	return &Scanner{rules: rules}
}

// Scan matches every rule against every non-blank, non-comment line and
// returns the findings in line order.
func (s *Scanner) Scan(snip *source.Snippet) []Issue {
	if snip == nil || snip.IsEmpty() {
		return nil
	}

	issues := make([]Issue, 0)
	for i, raw := range snip.Lines() {
		if source.IsBlank(raw) || classify.Classify(raw) == classify.CatComment {
			continue
		}
		for _, rule := range s.rules {
			if rule.Pattern.MatchString(raw) {
				issues = append(issues, Issue{
					RuleID:     rule.ID,
					Line:       i + 1,
					Severity:   rule.Severity,
					Message:    rule.Message,
					Code:       strings.TrimSpace(raw),
					Suggestion: rule.Suggestion,
				})
			}
		}
	}
	return issues
}

// InjectInto scans the engine's loaded source and appends each finding to
// the engine's history as a warning entry, so static findings surface on
// the same timeline as runtime errors.
func (s *Scanner) InjectInto(e *engine.Engine) []Issue {
	if e == nil || e.Source() == nil {
		return nil
	}
	issues := s.Scan(e.Source())
	for _, is := range issues {
		e.InjectWarning(is.Line, fmt.Sprintf("%s: %s", is.RuleID, is.Message))
	}
	return issues
}
