package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Category
	}{
		{"empty", "", CatBlank},
		{"whitespace", "   \t", CatBlank},
		{"line comment", "// add the totals", CatComment},
		{"indented comment", "    // note", CatComment},
		{"block comment open", "/* disabled", CatComment},
		{"block comment interior", " * still disabled", CatComment},
		{"block comment close", " */", CatComment},
		{"closing brace", "}", CatStructural},
		{"closing brace with else", "} else {", CatStructural},
		{"closing paren", ");", CatStructural},
		{"closing bracket", "];", CatStructural},
		{"bare else", "else {", CatStructural},
		{"case label", "case 1:", CatStructural},
		{"default label", "default:", CatStructural},
		{"catch clause", "catch (err) {", CatStructural},
		{"finally clause", "finally {", CatStructural},
		{"method chain", "  .map(x => x * 2)", CatStructural},
		{"function declaration", "function add(a, b) {", CatFunction},
		{"async function", "async function load() {", CatFunction},
		{"arrow assignment", "const double = (x) => x * 2;", CatFunction},
		{"if header", "if (x > 0) {", CatConditional},
		{"switch header", "switch (mode) {", CatConditional},
		{"for header", "for (let i = 0; i < 3; i++) {", CatLoop},
		{"while header", "while (n > 0) {", CatLoop},
		{"return value", "return x + y;", CatReturn},
		{"bare return", "return;", CatReturn},
		{"return alone", "return", CatReturn},
		{"declaration", "let x = 1;", CatAssignment},
		{"const declaration", "const total = 0;", CatAssignment},
		{"reassignment", "x = x + 1;", CatAssignment},
		{"compound assignment", "total += n;", CatAssignment},
		{"call", "console.log(x);", CatStatement},
		{"comparison is not assignment", "x === y;", CatStatement},
		{"returnValue is not return", "returnValue(x);", CatStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Fatalf("Classify(%q) = %s, want %s", tt.line, got, tt.want)
			}
		})
	}
}

func TestInstrumentable(t *testing.T) {
	for _, c := range []Category{CatFunction, CatConditional, CatLoop, CatReturn, CatAssignment, CatStatement} {
		if !c.Instrumentable() {
			t.Fatalf("expected %s to be instrumentable", c)
		}
	}
	for _, c := range []Category{CatBlank, CatComment, CatStructural} {
		if c.Instrumentable() {
			t.Fatalf("expected %s to not be instrumentable", c)
		}
	}
}

func TestEndsStatement(t *testing.T) {
	if !EndsStatement("let x = 1;") || !EndsStatement("  y += 2;  ") {
		t.Fatalf("expected semicolon-terminated lines to end a statement")
	}
	if EndsStatement("if (x > 0) {") || EndsStatement("let x = 1; // note") {
		t.Fatalf("expected open or comment-trailed lines to not end a statement")
	}
}

func TestReceivesFallThrough(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"let x = 1;", true},
		{"if (x) {", true},
		{"// note", true},
		{"}", false},
		{"} else {", false},
		{"else {", false},
		{"case 1:", false},
	}
	for _, tt := range tests {
		if got := Classify(tt.line).ReceivesFallThrough(); got != tt.want {
			t.Fatalf("Classify(%q).ReceivesFallThrough() = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CatBlank, "blank"},
		{CatComment, "comment"},
		{CatStructural, "structural"},
		{CatFunction, "function"},
		{CatConditional, "conditional"},
		{CatLoop, "loop"},
		{CatReturn, "return"},
		{CatAssignment, "assignment"},
		{CatStatement, "statement"},
		{Category(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cat.String(); got != tt.want {
			t.Fatalf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}
