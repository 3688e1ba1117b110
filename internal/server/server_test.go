package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retrace/internal/engine"
	"retrace/internal/server"
)

func newTestServer(t *testing.T, opts server.Options) http.Handler {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return server.New(opts).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type executeResponse struct {
	Outcome string `json:"outcome"`
	Value   any    `json:"value"`
	Error   string `json:"error"`
	State   struct {
		CurrentLine int            `json:"currentLine"`
		Variables   map[string]any `json:"variables"`
		Paused      bool           `json:"paused"`
	} `json:"state"`
}

func TestExecuteEndpoint(t *testing.T) {
	h := newTestServer(t, server.Options{})

	body := `{"source":"let x = 1;\nlet y = 2;\nconsole.log(x + y);","language":"javascript"}`
	rec := doJSON(t, h, http.MethodPost, "/api/execute", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res executeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != "completed" {
		t.Errorf("expected completed outcome, got %q (%s)", res.Outcome, res.Error)
	}
	if got := res.State.Variables["x"]; got != float64(1) {
		t.Errorf("expected x = 1, got %v", got)
	}
	if got := res.State.Variables["y"]; got != float64(2) {
		t.Errorf("expected y = 2, got %v", got)
	}
}

func TestExecuteEndpointBreakpoints(t *testing.T) {
	h := newTestServer(t, server.Options{})

	body := `{"source":"let x = 1;\nlet y = 2;","breakpoints":[2]}`
	rec := doJSON(t, h, http.MethodPost, "/api/execute", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res executeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != "paused" {
		t.Fatalf("expected paused outcome, got %q", res.Outcome)
	}
	if res.Error != "BREAKPOINT at line 2" {
		t.Errorf("unexpected message %q", res.Error)
	}
	if !res.State.Paused || res.State.CurrentLine != 2 {
		t.Errorf("unexpected state %+v", res.State)
	}
}

func TestExecuteEndpointReplacesBreakpoints(t *testing.T) {
	h := newTestServer(t, server.Options{})

	rec := doJSON(t, h, http.MethodPost, "/api/execute", `{"source":"let x = 1;","breakpoints":[1]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/execute", `{"source":"let x = 1;"}`)
	var res executeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != "completed" {
		t.Fatalf("expected the empty list to disarm old breakpoints, got %q (%s)", res.Outcome, res.Error)
	}
}

func TestExecuteEndpointBadRequests(t *testing.T) {
	h := newTestServer(t, server.Options{})

	if rec := doJSON(t, h, http.MethodPost, "/api/execute", `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/execute", `{"source":"print(1)","language":"python"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported language, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "python") {
		t.Errorf("expected offending tag in %q", rec.Body.String())
	}
}

func TestInspectionEndpoints(t *testing.T) {
	h := newTestServer(t, server.Options{})

	body := `{"source":"let x = 1;\nthrow new Error(\"boom\");"}`
	if rec := doJSON(t, h, http.MethodPost, "/api/execute", body); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/flow", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("flow: expected 200, got %d", rec.Code)
	}
	var g struct {
		Nodes []struct {
			Line     int  `json:"line"`
			Executed bool `json:"executed"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 2 || !g.Nodes[0].Executed {
		t.Errorf("unexpected flow payload %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/variables", "")
	var vars []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &vars); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vars) != 1 || vars[0].Name != "x" {
		t.Errorf("unexpected variables payload %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/errors", "")
	var timeline []struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &timeline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(timeline) != 1 || timeline[0].Message != "boom" {
		t.Errorf("unexpected errors payload %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/performance", "")
	var rep struct {
		TotalSteps int `json:"totalSteps"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.TotalSteps == 0 {
		t.Errorf("expected recorded steps, got %s", rec.Body.String())
	}
}

func TestFlowConflictWithoutSource(t *testing.T) {
	h := newTestServer(t, server.Options{})
	if rec := doJSON(t, h, http.MethodGet, "/api/flow", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before any source is loaded, got %d", rec.Code)
	}
}

func TestCrossOriginIsolationHeaders(t *testing.T) {
	h := newTestServer(t, server.Options{})
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Cross-Origin-Opener-Policy"); got != "same-origin" {
		t.Errorf("expected COOP same-origin, got %q", got)
	}
	if got := rec.Header().Get("Cross-Origin-Embedder-Policy"); got != "require-corp" {
		t.Errorf("expected COEP require-corp, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, server.Options{})

	if rec := doJSON(t, h, http.MethodPost, "/api/execute", `{"source":"1 + 1;"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "retrace_runs_total") {
		t.Errorf("expected run counter in metrics output")
	}
}

func TestStaticHosting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>retrace</h1>"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := newTestServer(t, server.Options{StaticDir: dir, Engine: engine.New()})
	rec := doJSON(t, h, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "retrace") {
		t.Errorf("expected index content, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Cross-Origin-Embedder-Policy"); got != "require-corp" {
		t.Errorf("expected COEP on static responses, got %q", got)
	}
}
