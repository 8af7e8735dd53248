// Package masterfile provides masterfile parsing and the annotation data model.
package masterfile

import "strings"

// Kind identifies what an annotation record describes.
// A record's kind can change after parsing (gene names are renormalized
// and the cleaner turns annotations into comments), so it is a plain field.
type Kind string

const (
	KindGene    Kind = "G"
	KindExon    Kind = "E"
	KindIntron  Kind = "I"
	KindSignal  Kind = "S"
	KindComment Kind = "C"

	// KindExcluded is reserved for externally produced records that mark
	// a masked region. The parser never produces it.
	KindExcluded Kind = "AC"
)

// Direction is the strand an annotation is read on.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionForward           // ==>
	DirectionReverse           // <==
)

// String returns the arrow used in masterfile boundary lines.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "==>"
	case DirectionReverse:
		return "<=="
	}
	return ""
}

// ParseDirection maps an arrow token (optionally starred) to a Direction.
func ParseDirection(arrow string) Direction {
	switch {
	case strings.Contains(arrow, "==>"):
		return DirectionForward
	case strings.Contains(arrow, "<=="):
		return DirectionReverse
	}
	return DirectionUnknown
}

// InternalMarker prefixes lines generated by the cleaner itself.
const InternalMarker = ";; mfannot:"

// Boundary is one side (start or end) of an annotation record.
type Boundary struct {
	Pos          int      // 1-based biological coordinate, valid if HasPos
	HasPos       bool     // false when the coordinate is absent
	Line         string   // verbatim boundary line; empty when the side is absent
	MultiComment []string // continuation lines following Line
	LineNumber   int      // content line number within the contig, 0 if unknown
}

// Present reports whether the side carries a boundary line.
func (b Boundary) Present() bool {
	return b.Line != ""
}

// Internal reports whether the boundary line was generated by the cleaner.
func (b Boundary) Internal() bool {
	return strings.HasPrefix(b.Line, InternalMarker)
}

// SetPos sets the biological coordinate.
func (b *Boundary) SetPos(pos int) {
	b.Pos = pos
	b.HasPos = true
}

// ClearPos removes the biological coordinate.
func (b *Boundary) ClearPos() {
	b.Pos = 0
	b.HasPos = false
}

// Record is one start/end annotation pair plus its metadata.
type Record struct {
	ID              int    // handle assigned by the owning contig
	Kind            Kind   // reassigned during normalization
	GeneName        string // e.g. "cox1"
	IntronGroupType string // from /group=...
	GlobalType      string
	Direction       Direction
	Point           bool // single-coordinate feature; Start and End share one line

	Start Boundary
	End   Boundary
}

// Complete reports whether both coordinates are known.
func (r *Record) Complete() bool {
	return r.Start.HasPos && r.End.HasPos
}

// Side returns the boundary for side 'S' (start) or 'E' (end).
func (r *Record) Side(side byte) *Boundary {
	if side == SideEnd {
		return &r.End
	}
	return &r.Start
}

// Side tags used in ordering and error reporting.
const (
	SideStart byte = 'S'
	SideEnd   byte = 'E'
)

// Span returns the lowest and highest known coordinate of the record.
// ok is false when the record has no coordinate at all.
func (r *Record) Span() (lo, hi int, ok bool) {
	switch {
	case r.Start.HasPos && r.End.HasPos:
		lo, hi = r.Start.Pos, r.End.Pos
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, true
	case r.Start.HasPos:
		return r.Start.Pos, r.Start.Pos, true
	case r.End.HasPos:
		return r.End.Pos, r.End.Pos, true
	}
	return 0, 0, false
}
