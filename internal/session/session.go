// Package session persists recorded runs so traces can be replayed and
// inspected later without re-executing the snippet.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"retrace/internal/engine"
	"retrace/internal/source"
)

// Current schema version - increment when the Session format changes.
const schemaVersion uint16 = 1

// ErrSchemaMismatch marks a session file written by an incompatible version.
var ErrSchemaMismatch = errors.New("session schema mismatch")

// Session is one recorded run: enough to replay the trace and re-derive
// every inspection view without an engine.
type Session struct {
	Schema   uint16    `msgpack:"schema" json:"schema"`
	SavedAt  time.Time `msgpack:"savedAt" json:"savedAt"`
	Source   string    `msgpack:"source" json:"source"`
	Language string    `msgpack:"language" json:"language"`

	Outcome    engine.RunOutcome `msgpack:"outcome" json:"outcome"`
	Value      any               `msgpack:"value" json:"value,omitempty"`
	ErrMessage string            `msgpack:"error" json:"error,omitempty"`
	ErrStack   string            `msgpack:"stack" json:"stack,omitempty"`

	Entries     []engine.Entry `msgpack:"entries" json:"entries"`
	Variables   map[string]any `msgpack:"variables" json:"variables"`
	Breakpoints []int          `msgpack:"breakpoints" json:"breakpoints"`
}

// Capture builds a session from a finished run.
func Capture(e *engine.Engine, res *engine.Result) *Session {
	s := &Session{
		Schema:   schemaVersion,
		SavedAt:  time.Now(),
		Language: e.Language(),

		Outcome:    res.Outcome,
		Value:      res.Value,
		ErrMessage: res.ErrMessage,
		ErrStack:   res.ErrStack,

		Entries:     res.State.History,
		Variables:   res.State.Variables,
		Breakpoints: res.State.Breakpoints,
	}
	if snip := e.Source(); snip != nil {
		s.Source = snip.Text()
	}
	return s
}

// Save writes the session to path, replacing any previous file atomically.
func Save(path string, s *Session) error {
	s.Schema = schemaVersion
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck // gone after a successful rename

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	return os.Rename(f.Name(), path)
}

// Load reads a session file and validates its schema.
func Load(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var s Session
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: file has version %d, this build reads %d",
			ErrSchemaMismatch, s.Schema, schemaVersion)
	}
	return &s, nil
}

// Snippet rebuilds the recorded source as a snippet.
func (s *Session) Snippet() *source.Snippet {
	return source.New(engine.SnippetName, s.Source)
}

// ExecutedLines derives the executed overlay for flow graphs.
func (s *Session) ExecutedLines() map[int]bool {
	executed := make(map[int]bool)
	for _, en := range s.Entries {
		if en.Kind == engine.EntryLineVisit {
			executed[en.Line] = true
		}
	}
	return executed
}

// VisitCounts derives per-line visit counts for performance analysis.
func (s *Session) VisitCounts() map[int]int {
	visits := make(map[int]int)
	for _, en := range s.Entries {
		if en.Kind == engine.EntryLineVisit {
			visits[en.Line]++
		}
	}
	return visits
}

// TotalSteps returns the number of recorded entries.
func (s *Session) TotalSteps() int {
	return len(s.Entries)
}
