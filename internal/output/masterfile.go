// Package output provides masterfile and FASTA writers.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// basesPerLine is the number of real bases in each sequence line.
const basesPerLine = 60

// MasterfileWriter writes Documents in masterfile format.
type MasterfileWriter struct {
	w *bufio.Writer
}

// NewMasterfileWriter creates a new masterfile writer.
func NewMasterfileWriter(w io.Writer) *MasterfileWriter {
	return &MasterfileWriter{w: bufio.NewWriter(w)}
}

// Serialize renders doc as masterfile text.
func Serialize(doc *masterfile.Document) (string, error) {
	var sb strings.Builder
	mw := NewMasterfileWriter(&sb)
	if err := mw.Write(doc); err != nil {
		return "", err
	}
	if err := mw.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteFile writes doc to path, replacing any existing file.
func WriteFile(path string, doc *masterfile.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create masterfile: %w", err)
	}
	defer f.Close()

	mw := NewMasterfileWriter(f)
	if err := mw.Write(doc); err != nil {
		return err
	}
	if err := mw.Flush(); err != nil {
		return fmt.Errorf("write masterfile: %w", err)
	}
	return f.Close()
}

// Write writes the header block and every contig of doc. doc is not modified.
func (mw *MasterfileWriter) Write(doc *masterfile.Document) error {
	if err := mw.writeHeader(doc.HeaderLines); err != nil {
		return err
	}
	for _, c := range doc.Contigs {
		if err := mw.WriteContig(c); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (mw *MasterfileWriter) Flush() error {
	return mw.w.Flush()
}

func (mw *MasterfileWriter) writeHeader(lines []string) error {
	// Trailing blank lines are dropped.
	n := len(lines)
	for n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		n--
	}
	if n == 0 {
		return nil
	}
	_, err := mw.w.WriteString(strings.Join(lines[:n], "\n") + "\n")
	return err
}

// WriteContig writes one contig: separator, header line and body.
func (mw *MasterfileWriter) WriteContig(c *masterfile.Contig) error {
	seq := MaskExcluded(c)

	positions, err := ContigPositions(c, masterfile.CountBases(seq))
	if err != nil {
		return err
	}
	SortPositions(positions)

	if _, err := fmt.Fprintf(mw.w, "\n\n>%s\n", c.Header()); err != nil {
		return err
	}

	seqPos, charPos := 0, 0
	for _, p := range positions {
		blockPos := seqPos
		from := charPos
		for seqPos < p.Slot {
			if seq[charPos] != masterfile.ExclusionMarker {
				seqPos++
			}
			charPos++
		}

		// Keep a marker that closes a masked run on the same line as the run.
		block := seq[from:charPos]
		if charPos < len(seq) && seq[charPos] == masterfile.ExclusionMarker &&
			len(block) >= 4 && strings.IndexByte(block[len(block)-4:], masterfile.ExclusionMarker) >= 0 {
			charPos++
			block = seq[from:charPos]
		}
		if err := mw.writeBlock(block, blockPos+1); err != nil {
			return err
		}

		b := p.Record.Side(p.Side)
		if _, err := mw.w.WriteString(b.Line + "\n"); err != nil {
			return err
		}
		for _, mc := range b.MultiComment {
			if _, err := mw.w.WriteString(mc + "\n"); err != nil {
				return err
			}
		}
	}

	return mw.writeBlock(seq[charPos:], seqPos+1)
}

// writeBlock writes seq as numbered lines of basesPerLine real bases,
// starting at biological coordinate pos.
func (mw *MasterfileWriter) writeBlock(seq string, pos int) error {
	for len(seq) > 0 {
		cut, bases := 0, 0
		for cut < len(seq) && bases < basesPerLine {
			if seq[cut] != masterfile.ExclusionMarker {
				bases++
			}
			cut++
		}
		for cut < len(seq) && seq[cut] == masterfile.ExclusionMarker {
			cut++
		}

		if _, err := fmt.Fprintf(mw.w, "%6d  %s\n", pos, seq[:cut]); err != nil {
			return err
		}
		pos += bases
		seq = seq[cut:]
	}
	return nil
}

// MaskExcluded returns the contig sequence with an exclusion marker placed
// before the first and after the last base of every excluded (AC) record,
// unless one is already there.
func MaskExcluded(c *masterfile.Contig) string {
	starts := make(map[int]bool)
	ends := make(map[int]bool)
	for _, r := range c.Annotations {
		if r.Kind != masterfile.KindExcluded {
			continue
		}
		if r.Start.HasPos {
			starts[r.Start.Pos] = true
		}
		if r.End.HasPos {
			ends[r.End.Pos] = true
		}
	}
	if len(starts) == 0 && len(ends) == 0 {
		return c.Sequence
	}

	seq := c.Sequence
	var sb strings.Builder
	sb.Grow(len(seq) + len(starts) + len(ends))

	var prev byte
	num := 0
	for i := 0; i < len(seq); i++ {
		ch := seq[i]
		if ch == masterfile.ExclusionMarker {
			sb.WriteByte(ch)
			prev = ch
			continue
		}

		num++
		if starts[num] && prev != masterfile.ExclusionMarker {
			sb.WriteByte(masterfile.ExclusionMarker)
		}
		sb.WriteByte(ch)
		prev = ch
		if ends[num] && (i+1 >= len(seq) || seq[i+1] != masterfile.ExclusionMarker) {
			sb.WriteByte(masterfile.ExclusionMarker)
			prev = masterfile.ExclusionMarker
		}
	}
	return sb.String()
}

// ContigPositions lists the boundary lines of c with their insertion slots.
// bases is the number of real bases in the sequence being written.
// Excluded (AC) records only mask the sequence and are not listed.
func ContigPositions(c *masterfile.Contig, bases int) ([]Position, error) {
	var positions []Position
	for _, r := range c.Annotations {
		if r.Kind == masterfile.KindExcluded {
			continue
		}

		sides := []byte{masterfile.SideStart, masterfile.SideEnd}
		if r.Point {
			sides = sides[:1]
		}
		for _, side := range sides {
			b := r.Side(side)
			if !b.HasPos {
				continue
			}
			p, err := position(c, r, side, bases)
			if err != nil {
				return nil, err
			}
			positions = append(positions, p)
		}
	}
	return positions, nil
}

func position(c *masterfile.Contig, r *masterfile.Record, side byte, bases int) (Position, error) {
	b := r.Side(side)
	if !b.Present() {
		err := masterfile.ErrMissingBoundaryText
		if r.Direction != masterfile.DirectionUnknown {
			err = masterfile.ErrInconsistentRecord
		}
		return Position{}, &masterfile.RecordError{
			Contig: c.Name, Record: r.ID, Side: side,
			Reason: fmt.Sprintf("coordinate %d has no boundary line", b.Pos),
			Err:    err,
		}
	}

	slot := InsertionSlot(r.Direction, side, b.Pos)
	if slot < 0 || slot > bases {
		return Position{}, &masterfile.RecordError{
			Contig: c.Name, Record: r.ID, Side: side,
			Reason: fmt.Sprintf("coordinate %d outside sequence of %d bases", b.Pos, bases),
			Err:    masterfile.ErrInconsistentRecord,
		}
	}

	return Position{Slot: slot, LineNumber: b.LineNumber, Side: side, Record: r}, nil
}

// InsertionSlot converts a 1-based coordinate into the number of real bases
// that precede the boundary line. Records without a direction are treated
// as forward.
func InsertionSlot(dir masterfile.Direction, side byte, pos int) int {
	if dir == masterfile.DirectionReverse {
		if side == masterfile.SideStart {
			return pos
		}
		return pos - 1
	}
	if side == masterfile.SideStart {
		return pos - 1
	}
	return pos
}
