// Package source defines opaque source positions and ranges into a named
// text buffer. The core never inspects buffer contents through a Pos or
// Range; it only orders and compares them.
package source

import "fmt"

// Pos is a single location inside a named buffer.
type Pos struct {
	Buffer string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Buffer, p.Line, p.Column)
}

// Less orders positions within the same buffer by byte offset. Positions
// from different buffers are ordered by buffer name so a total order still
// exists across every buffer in a compilation.
func (p Pos) Less(o Pos) bool {
	if p.Buffer != o.Buffer {
		return p.Buffer < o.Buffer
	}
	return p.Offset < o.Offset
}

// Range is a half-open span [Start, End) in one buffer.
type Range struct {
	Start Pos
	End   Pos
}

// Buffer identifies the underlying text the range was carved from.
func (r Range) Buffer() string { return r.Start.Buffer }

func (r Range) String() string {
	if r.Start.Buffer == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", r.Start.Buffer, r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

// Less orders ranges within one buffer by start offset; it is used to sort
// diagnostics for display.
func (r Range) Less(o Range) bool {
	return r.Start.Less(o.Start)
}

// Zero reports whether the range carries no real position (e.g. synthetic
// nodes introduced by lowering).
func (r Range) Zero() bool {
	return r.Start.Buffer == "" && r.End.Buffer == ""
}
