package rules_test

import (
	"testing"

	"retrace/internal/engine"
	"retrace/internal/rules"
	"retrace/internal/source"
)

func scanText(t *testing.T, text string) []rules.Issue {
	t.Helper()
	return rules.NewScanner().Scan(source.New("test.js", text))
}

func ruleIDs(issues []rules.Issue) []string {
	ids := make([]string, len(issues))
	for i, is := range issues {
		ids[i] = is.RuleID
	}
	return ids
}

func TestScanFlagsSuspectPatterns(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"eval call", `eval("2 + 2");`, "eval"},
		{"loose equality", `if (x == null) {`, "loose-equality"},
		{"loose inequality", `if (x != 0) {`, "loose-equality"},
		{"assignment in condition", `if (x = 5) {`, "assign-in-condition"},
		{"var keyword", `var total = 0;`, "var-keyword"},
		{"empty catch", `try { f(); } catch (e) {}`, "empty-catch"},
		{"console left", `console.log(result);`, "console-left"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues := scanText(t, tc.line)
			for _, is := range issues {
				if is.RuleID == tc.want {
					if is.Line != 1 {
						t.Errorf("expected finding on line 1, got %d", is.Line)
					}
					return
				}
			}
			t.Fatalf("expected rule %q to fire on %q, got %v", tc.want, tc.line, ruleIDs(issues))
		})
	}
}

func TestScanLeavesStrictComparisonsAlone(t *testing.T) {
	clean := []string{
		`if (x === y) {`,
		`if (x !== y) {`,
		`if (x >= 5) {`,
		`if (x <= 5) {`,
		`const f = (a) => a + 1;`,
	}
	for _, line := range clean {
		for _, is := range scanText(t, line) {
			if is.RuleID == "loose-equality" || is.RuleID == "assign-in-condition" {
				t.Errorf("rule %q should not fire on %q", is.RuleID, line)
			}
		}
	}
}

func TestScanSkipsCommentLines(t *testing.T) {
	issues := scanText(t, "// eval(danger) is documented here\nlet x = 1;")
	if len(issues) != 0 {
		t.Fatalf("expected no findings in comments, got %v", ruleIDs(issues))
	}
}

func TestScanReportsLineOrder(t *testing.T) {
	text := "var a = 1;\nlet b = 2;\neval(code);"
	issues := scanText(t, text)

	if len(issues) != 2 {
		t.Fatalf("expected two findings, got %v", ruleIDs(issues))
	}
	if issues[0].RuleID != "var-keyword" || issues[0].Line != 1 {
		t.Errorf("expected var-keyword on line 1 first, got %s on %d", issues[0].RuleID, issues[0].Line)
	}
	if issues[1].RuleID != "eval" || issues[1].Line != 3 {
		t.Errorf("expected eval on line 3 second, got %s on %d", issues[1].RuleID, issues[1].Line)
	}
	if issues[1].Code != "eval(code);" {
		t.Errorf("expected trimmed code, got %q", issues[1].Code)
	}
}

func TestScanEmptySnippet(t *testing.T) {
	if issues := scanText(t, ""); issues != nil {
		t.Fatalf("expected nil issues, got %v", issues)
	}
	if issues := rules.NewScanner().Scan(nil); issues != nil {
		t.Fatalf("expected nil issues for nil snippet, got %v", issues)
	}
}

func TestInjectIntoAppendsWarnings(t *testing.T) {
	e := engine.New()
	e.SetCode("var a = 1;", "javascript")

	issues := rules.NewScanner().InjectInto(e)
	if len(issues) != 1 {
		t.Fatalf("expected one finding, got %v", ruleIDs(issues))
	}

	timeline := e.ErrorTimeline()
	if len(timeline) != 1 {
		t.Fatalf("expected one timeline entry, got %d", len(timeline))
	}
	if timeline[0].Kind != engine.EntryWarning || timeline[0].Line != 1 {
		t.Errorf("expected warning on line 1, got %s on %d", timeline[0].Kind, timeline[0].Line)
	}
}

func TestSeverityStrings(t *testing.T) {
	if rules.SevInfo.String() != "INFO" || rules.SevWarning.String() != "WARNING" || rules.SevError.String() != "ERROR" {
		t.Error("unexpected severity strings")
	}
}
