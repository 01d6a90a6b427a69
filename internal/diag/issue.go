// Package diag collects warning and error issues raised by the passes in
// this module. Modeled on the Report/ErrorInfo style of the teacher's
// internal/errors package, trimmed to a flat (severity, message, range,
// anchor) shape.
package diag

import (
	"fmt"
	"sort"

	"github.com/anzenlang/anzenc/internal/source"
)

// Severity classifies an Issue.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue is a single diagnostic: a severity, a message, the source range it
// applies to, and an optional anchor — the AST node that produced it. The
// anchor is stored as an opaque identity (any concrete *ast.Node pointer)
// so this package never needs to import the AST.
type Issue struct {
	Severity Severity
	Message  string
	Range    source.Range
	Anchor   any
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Severity, i.Message, i.Range)
}

func key(i Issue) [4]any {
	return [4]any{i.Severity, i.Message, i.Range, i.Anchor}
}

// Set is an unordered collection of issues deduplicated by
// (severity, message, range, anchor).
type Set struct {
	seen   map[[4]any]bool
	issues []Issue
}

func NewSet() *Set {
	return &Set{seen: make(map[[4]any]bool)}
}

// Add inserts an issue, ignoring exact duplicates.
func (s *Set) Add(i Issue) {
	k := key(i)
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.issues = append(s.issues, i)
}

func (s *Set) Errorf(r source.Range, anchor any, format string, args ...any) {
	s.Add(Issue{Severity: Error, Message: fmt.Sprintf(format, args...), Range: r, Anchor: anchor})
}

func (s *Set) Warnf(r source.Range, anchor any, format string, args ...any) {
	s.Add(Issue{Severity: Warning, Message: fmt.Sprintf(format, args...), Range: r, Anchor: anchor})
}

// HasErrors reports whether any issue has Error severity.
func (s *Set) HasErrors() bool {
	for _, i := range s.issues {
		if i.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of distinct issues collected.
func (s *Set) Len() int { return len(s.issues) }

// Sorted returns issues ordered by (severity desc, buffer name, range
// start), the order a command-line report should print them in.
func (s *Set) Sorted() []Issue {
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Severity != out[b].Severity {
			return out[a].Severity > out[b].Severity // Error (1) before Warning (0)
		}
		if out[a].Range.Buffer() != out[b].Range.Buffer() {
			return out[a].Range.Buffer() < out[b].Range.Buffer()
		}
		return out[a].Range.Less(out[b].Range)
	})
	return out
}
