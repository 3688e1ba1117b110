package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
)

// SnippetFlags encodes normalization metadata for a snippet.
type SnippetFlags uint8

const (
	// SnippetVirtual indicates the snippet was provided from memory (API, test, stdin).
	SnippetVirtual SnippetFlags = 1 << iota
	// SnippetHadBOM indicates a UTF-8 BOM was stripped during normalization.
	SnippetHadBOM
	// SnippetNormalizedCRLF indicates CRLF line endings were rewritten to LF.
	SnippetNormalizedCRLF
	// SnippetNormalizedNFC indicates the text was re-composed to Unicode NFC.
	SnippetNormalizedNFC
)

// Snippet holds one normalized source text together with its line index.
// Line numbers are 1-based everywhere in this package; that matches the
// numbering recorded in traces and shown to users.
type Snippet struct {
	Name    string
	Content []byte
	Hash    [32]byte
	Flags   SnippetFlags

	lineIdx []uint32 // byte offsets of '\n' in Content
}

// New normalizes text (BOM, CRLF, NFC) and builds the line index.
func New(name, text string) *Snippet {
	content := []byte(text)
	flags := SnippetVirtual

	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= SnippetHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= SnippetNormalizedCRLF
	}
	content, recomposed := normalizeNFC(content)
	if recomposed {
		flags |= SnippetNormalizedNFC
	}

	return &Snippet{
		Name:    name,
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
		lineIdx: buildLineIndex(content),
	}
}

// Load reads a snippet from disk and normalizes it like New.
func Load(path string) (*Snippet, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := New(path, string(content))
	s.Flags &^= SnippetVirtual
	return s, nil
}

// Text returns the normalized source as a string.
func (s *Snippet) Text() string {
	return string(s.Content)
}

// IsEmpty reports whether the snippet holds no text at all.
func (s *Snippet) IsEmpty() bool {
	return len(s.Content) == 0
}

// LineCount returns the number of physical lines. An empty snippet has zero
// lines; a trailing newline produces a final empty line, matching a plain
// split on '\n'.
func (s *Snippet) LineCount() uint32 {
	if len(s.Content) == 0 {
		return 0
	}
	n, err := safecast.Conv[uint32](len(s.lineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	return n + 1
}

// Lines splits the snippet into physical lines. Returns nil for an empty
// snippet.
func (s *Snippet) Lines() []string {
	if len(s.Content) == 0 {
		return nil
	}
	return strings.Split(string(s.Content), "\n")
}

// Line returns the 1-based line lineNum, without its newline. Line zero and
// out-of-range lines return an empty string.
func (s *Snippet) Line(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	lenLineIdx, err := safecast.Conv[uint32](len(s.lineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(s.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenLineIdx:
		start = s.lineIdx[lineNum-2] + 1
	default:
		return ""
	}

	end := lenContent
	if lineNum-1 < lenLineIdx {
		end = s.lineIdx[lineNum-1]
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}
	return string(s.Content[start:end])
}

// ToLineCol converts a byte offset into a 1-based line/column pair.
func (s *Snippet) ToLineCol(off uint32) LineCol {
	return toLineCol(s.lineIdx, off)
}

// LineCol is a human-readable position within a snippet.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// IsBlank reports whether a line contains only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
