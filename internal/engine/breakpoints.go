package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Breakpoints manages the set of armed lines.
//
// Arming and disarming are idempotent, and lines are never validated against
// the loaded source: a breakpoint past the end of the program is legal and
// simply never triggers. The collection outlives resets and code reloads;
// only Remove and Clear drop armed lines.
type Breakpoints struct {
	lines map[int]struct{}
}

// NewBreakpoints creates an empty collection.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{lines: make(map[int]struct{})}
}

// Add arms a line. Arming an armed line is a no-op.
func (bps *Breakpoints) Add(line int) {
	if bps == nil {
		return
	}
	bps.lines[line] = struct{}{}
}

// Remove disarms a line. Disarming an unarmed line is a no-op.
func (bps *Breakpoints) Remove(line int) {
	if bps == nil {
		return
	}
	delete(bps.lines, line)
}

// Has reports whether a line is armed.
func (bps *Breakpoints) Has(line int) bool {
	if bps == nil {
		return false
	}
	_, ok := bps.lines[line]
	return ok
}

// Lines returns the armed lines sorted ascending.
func (bps *Breakpoints) Lines() []int {
	if bps == nil || len(bps.lines) == 0 {
		return nil
	}
	out := make([]int, 0, len(bps.lines))
	for line := range bps.lines {
		out = append(out, line)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of armed lines.
func (bps *Breakpoints) Len() int {
	if bps == nil {
		return 0
	}
	return len(bps.lines)
}

// Clear disarms every line.
func (bps *Breakpoints) Clear() {
	if bps == nil {
		return
	}
	clear(bps.lines)
}

// ParseLineList parses a comma-separated list of 1-based line numbers, the
// form the --break flag takes.
func ParseLineList(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var out []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid line %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
