package rules_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"retrace/internal/rules"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestListScriptFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "b.js", "let x = 1;")
	writeScript(t, dir, "a.js", "let y = 2;")
	writeScript(t, dir, filepath.Join("sub", "c.mjs"), "let z = 3;")
	writeScript(t, dir, "notes.txt", "not a script")

	files, err := rules.ListScriptFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3: %v", len(files), files)
	}
	want := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "sub", "c.mjs"),
	}
	for i, path := range want {
		if files[i] != path {
			t.Fatalf("files[%d] = %q, want %q", i, files[i], path)
		}
	}
}

func TestScanFilesKeepsPathOrder(t *testing.T) {
	dir := t.TempDir()
	clean := writeScript(t, dir, "clean.js", "let x = 1;\nconst y = x + 1;")
	dirty := writeScript(t, dir, "dirty.js", "eval(\"x\");\nif (x == 1) {}")

	sc := rules.NewScanner()
	reports, err := sc.ScanFiles(context.Background(), []string{clean, dirty}, 2)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}
	if reports[0].Path != clean || reports[1].Path != dirty {
		t.Fatalf("report order lost: %q, %q", reports[0].Path, reports[1].Path)
	}
	if len(reports[0].Issues) != 0 {
		t.Fatalf("clean file flagged: %+v", reports[0].Issues)
	}
	if len(reports[1].Issues) < 2 {
		t.Fatalf("dirty file should trip eval and loose-equality, got %+v", reports[1].Issues)
	}
}

func TestScanFilesRecordsReadErrors(t *testing.T) {
	dir := t.TempDir()
	ok := writeScript(t, dir, "ok.js", "let x = 1;")
	missing := filepath.Join(dir, "missing.js")

	sc := rules.NewScanner()
	reports, err := sc.ScanFiles(context.Background(), []string{ok, missing}, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if reports[0].Err != nil {
		t.Fatalf("readable file reported error: %v", reports[0].Err)
	}
	if reports[1].Err == nil {
		t.Fatal("missing file should carry a read error")
	}
}

func TestScanFilesEmptyInput(t *testing.T) {
	sc := rules.NewScanner()
	reports, err := sc.ScanFiles(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if reports != nil {
		t.Fatalf("reports = %v, want nil", reports)
	}
}

func TestScanFilesHonorsCancel(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.js", "b.js", "c.js"} {
		paths = append(paths, writeScript(t, dir, name, "let x = 1;"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := rules.NewScanner()
	if _, err := sc.ScanFiles(ctx, paths, 1); err == nil {
		t.Fatal("cancelled context should surface an error")
	}
}
