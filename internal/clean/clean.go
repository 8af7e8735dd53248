// Package clean normalizes parsed masterfiles before external annotation.
//
// Normalization renames every contig to contig<N>, strips exclusion markers
// from the sequences and turns every annotation into a comment that keeps
// only its editorial text. Annotations with nothing left to say are dropped,
// and boundaries whose partner never appeared are kept as placeholder
// comments so the curator can find them again.
package clean

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/hmmannot/internal/masterfile"
	"github.com/inodb/hmmannot/internal/output"
)

// CopyFileName is the name of the round-trip copy written by Clean.
const CopyFileName = "Masterfile_copy"

const (
	noEndFound   = "no end found"
	noStartFound = "no start found"
)

// Cleaner normalizes Documents in place.
type Cleaner struct {
	logger *zap.Logger
}

// NewCleaner creates a cleaner. A nil logger disables logging.
func NewCleaner(logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{logger: logger}
}

// SetLogger sets the logger for warnings.
func (cl *Cleaner) SetLogger(logger *zap.Logger) {
	cl.logger = logger
}

// Normalize normalizes doc with a silent cleaner.
func Normalize(doc *masterfile.Document) error {
	return NewCleaner(nil).Normalize(doc)
}

// Clean normalizes doc and writes its serialized copy to outDir/Masterfile_copy.
func (cl *Cleaner) Clean(doc *masterfile.Document, outDir string) error {
	if err := cl.Normalize(doc); err != nil {
		return err
	}
	path := filepath.Join(outDir, CopyFileName)
	if err := output.WriteFile(path, doc); err != nil {
		return fmt.Errorf("write round-trip copy: %w", err)
	}
	cl.logger.Debug("wrote round-trip copy", zap.String("path", path))
	return nil
}

// Normalize mutates doc in place. Contig headers must be unique; doc is left
// untouched when they are not.
func (cl *Cleaner) Normalize(doc *masterfile.Document) error {
	if err := checkHeaders(doc); err != nil {
		return err
	}

	for i, c := range doc.Contigs {
		c.UniqueName = c.Name
		c.Name = "contig" + strconv.Itoa(i+1)
		c.NameComments = ""
		c.Sequence = c.PlainSequence()
		c.SequenceLength = len(c.Sequence)
		c.AssignHandles()

		drop := make(map[int]bool)
		for _, r := range c.Annotations {
			if !cl.normalizeRecord(c, r) {
				drop[r.ID] = true
			}
		}
		if n := c.Remove(drop); n > 0 {
			cl.logger.Info("pruned annotations",
				zap.String("contig", c.Name),
				zap.String("original", c.UniqueName),
				zap.Int("removed", n))
		}
	}
	return nil
}

func checkHeaders(doc *masterfile.Document) error {
	seen := make(map[string]bool, len(doc.Contigs))
	for _, c := range doc.Contigs {
		h := c.Header()
		if seen[h] {
			return fmt.Errorf("%w: %q", masterfile.ErrDuplicateContigHeader, h)
		}
		seen[h] = true
	}
	return nil
}

// normalizeRecord rewrites r and reports whether it should be kept.
func (cl *Cleaner) normalizeRecord(c *masterfile.Contig, r *masterfile.Record) bool {
	start, end := &r.Start, &r.End

	// Plain comments written by a curator stay as they are.
	if r.Kind == masterfile.KindComment {
		if (start.Present() && !start.Internal()) || (end.Present() && !end.Internal()) {
			return true
		}
	}
	r.Kind = masterfile.KindComment

	switch {
	case r.Point:
		return keepEditorial(start)

	case start.Present() && end.Present():
		changedStart := keepEditorial(start)
		changedEnd := keepEditorial(end)
		return changedStart || changedEnd

	case start.Present():
		if start.Internal() {
			return false
		}
		start.Line = placeholder(start.Line, noEndFound)
		cl.warnOrphan(c, r, noEndFound)
		return true

	case end.Present():
		if end.Internal() {
			return false
		}
		end.Line = placeholder(end.Line, noStartFound)
		cl.warnOrphan(c, r, noStartFound)
		return true
	}
	return false
}

// keepEditorial replaces b's line with its trailing ";;" comment and reports
// whether the line changed. Lines the cleaner wrote itself are left alone.
func keepEditorial(b *masterfile.Boundary) bool {
	if b.Internal() {
		return false
	}
	head, tail, found := strings.Cut(b.Line, ";;")
	if !found || head == "" {
		return false
	}
	trailing := ";;" + tail
	if strings.Contains(trailing, "mfannot:") {
		return false
	}

	if strings.TrimSpace(tail) == "" {
		b.Line = ""
		b.ClearPos()
		return true
	}
	b.Line = trailing
	return true
}

func placeholder(line, reason string) string {
	return ";" + line + " " + masterfile.InternalMarker + " " + reason
}

func (cl *Cleaner) warnOrphan(c *masterfile.Contig, r *masterfile.Record, reason string) {
	cl.logger.Warn("unpaired annotation boundary",
		zap.String("contig", c.Name),
		zap.String("original", c.UniqueName),
		zap.String("gene", r.GeneName),
		zap.String("reason", reason))
}
