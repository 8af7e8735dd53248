package masterfile

import (
	"sort"
	"strings"
)

// ExclusionMarker masks a region of the sequence without removing bases.
const ExclusionMarker = '!'

// Contig is a named sequence plus its annotation records.
type Contig struct {
	Name         string
	UniqueName   string
	NameComments string // trailing text of the header line, verbatim
	GeneticCode  int    // 0 when the header carries no /trans= override

	Sequence       string // A,C,G,T,N and exclusion markers
	SequenceLength int    // real bases only

	// Annotations are kept in insertion order, not biological order.
	Annotations []*Record

	nextID int
	handled int // leading records of Annotations known to carry a unique handle
}

// Header returns the text that follows '>' on the contig header line.
func (c *Contig) Header() string {
	return c.Name + c.NameComments
}

// Add appends r to the contig and assigns it a handle unique within the contig.
func (c *Contig) Add(r *Record) int {
	if c.handled != len(c.Annotations) {
		c.AssignHandles()
	}
	c.nextID++
	r.ID = c.nextID
	c.Annotations = append(c.Annotations, r)
	c.handled++
	return r.ID
}

// AssignHandles gives a fresh handle to every record that has none (ID 0) or
// shares its handle with an earlier record. Records appended to Annotations
// directly, without Add, need this before any handle-based operation.
func (c *Contig) AssignHandles() {
	for _, r := range c.Annotations {
		c.nextID = max(c.nextID, r.ID)
	}
	seen := make(map[int]bool, len(c.Annotations))
	for _, r := range c.Annotations {
		if r.ID == 0 || seen[r.ID] {
			c.nextID++
			r.ID = c.nextID
		}
		seen[r.ID] = true
	}
	c.handled = len(c.Annotations)
}

// Record returns the record with the given handle, or nil.
func (c *Contig) Record(id int) *Record {
	for _, r := range c.Annotations {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Remove drops every record whose handle is in ids and returns how many were
// removed. Records without a handle (ID 0) are never matched.
func (c *Contig) Remove(ids map[int]bool) int {
	if len(ids) == 0 {
		return 0
	}
	synced := c.handled == len(c.Annotations)
	kept := c.Annotations[:0]
	removed := 0
	for _, r := range c.Annotations {
		if r.ID != 0 && ids[r.ID] {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(c.Annotations); i++ {
		c.Annotations[i] = nil
	}
	c.Annotations = kept
	if synced {
		c.handled = len(kept)
	}
	return removed
}

// PlainSequence returns the sequence upper-cased with exclusion markers removed.
func (c *Contig) PlainSequence() string {
	return strings.ToUpper(strings.ReplaceAll(c.Sequence, string(ExclusionMarker), ""))
}

// Document is a parsed masterfile: preamble text plus contigs.
type Document struct {
	HeaderLines  []string
	CommentLines []string
	Contigs      []*Contig
}

// Contig returns the contig with the given name, or nil.
func (d *Document) Contig(name string) *Contig {
	for _, c := range d.Contigs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SortByLength orders contigs by sequence length, longest first when descending.
func (d *Document) SortByLength(descending bool) {
	sort.SliceStable(d.Contigs, func(i, j int) bool {
		if descending {
			return len(d.Contigs[i].Sequence) > len(d.Contigs[j].Sequence)
		}
		return len(d.Contigs[i].Sequence) < len(d.Contigs[j].Sequence)
	})
}

// RecordCount returns the total number of records across all contigs.
func (d *Document) RecordCount() int {
	n := 0
	for _, c := range d.Contigs {
		n += len(c.Annotations)
	}
	return n
}
