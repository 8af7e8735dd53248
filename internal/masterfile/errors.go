package masterfile

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test for them.
var (
	ErrMalformedHeader          = errors.New("malformed contig header")
	ErrInvalidSequenceCharacter = errors.New("invalid sequence character")
	ErrUnparsableAnnotationLine = errors.New("unparsable annotation line")
	ErrDuplicateContigHeader    = errors.New("duplicate contig header")
	ErrInconsistentRecord       = errors.New("inconsistent record")
	ErrMissingBoundaryText      = errors.New("missing boundary text")
)

// ParseError represents an error during masterfile parsing with line context.
type ParseError struct {
	Line int    // 1-based input line number
	Text string // offending line, verbatim
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("masterfile parse error at line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RecordError reports a record that cannot be cleaned or written.
type RecordError struct {
	Contig string
	Record int  // record handle
	Side   byte // SideStart or SideEnd, 0 if not side specific
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Side != 0 {
		return fmt.Sprintf("contig %s record %d (%c): %v: %s", e.Contig, e.Record, e.Side, e.Err, e.Reason)
	}
	return fmt.Sprintf("contig %s record %d: %v: %s", e.Contig, e.Record, e.Err, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
