package masterfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanRecord(name string, kind Kind, start, end int) *Record {
	return &Record{
		Kind:      kind,
		GeneName:  name,
		Direction: DirectionForward,
		Start:     Boundary{Pos: start, HasPos: true, Line: ";G-" + name + " ==> start"},
		End:       Boundary{Pos: end, HasPos: true, Line: ";G-" + name + " ==> end"},
	}
}

func TestFeatureIndex_Empty(t *testing.T) {
	ix := BuildFeatureIndex(&Contig{})
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Covering(10))
}

func TestFeatureIndex_Overlapping(t *testing.T) {
	c := &Contig{}
	c.Add(spanRecord("A", KindGene, 100, 300))
	c.Add(spanRecord("B", KindGene, 150, 250))
	c.Add(spanRecord("C", KindGene, 200, 400))
	ix := BuildFeatureIndex(c)

	names := func(rs []*Record) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.GeneName)
		}
		return out
	}

	assert.Equal(t, []string{"A", "B"}, names(ix.Covering(175)))
	assert.Equal(t, []string{"A", "B", "C"}, names(ix.Covering(250)))
	assert.Equal(t, []string{"C"}, names(ix.Covering(350)))
	assert.Equal(t, []string{"A"}, names(ix.Covering(100)), "start inclusive")
	assert.Empty(t, ix.Covering(99))
	assert.Empty(t, ix.Covering(401))
}

func TestFeatureIndex_LongSpanBeforeShortOnes(t *testing.T) {
	c := &Contig{}
	c.Add(spanRecord("long", KindGene, 1, 1000))
	c.Add(spanRecord("short", KindExon, 2, 3))
	ix := BuildFeatureIndex(c)

	got := ix.Covering(500)
	require.Len(t, got, 1)
	assert.Equal(t, "long", got[0].GeneName)
}

func TestFeatureIndex_ReverseAndKindFilter(t *testing.T) {
	c := &Contig{}
	rev := spanRecord("nad1", KindGene, 500, 200)
	rev.Direction = DirectionReverse
	c.Add(rev)
	c.Add(spanRecord("nad1", KindExon, 300, 350))
	c.Add(&Record{Kind: KindComment, Start: Boundary{Pos: 320, HasPos: true, Line: ";note"}})

	all := BuildFeatureIndex(c)
	assert.Len(t, all.Covering(320), 3)

	genes := BuildFeatureIndex(c, KindGene)
	got := genes.Covering(320)
	require.Len(t, got, 1)
	assert.Same(t, rev, got[0])
}

func TestContig_AddRemove(t *testing.T) {
	c := &Contig{}
	a := spanRecord("a", KindGene, 1, 2)
	b := spanRecord("a", KindGene, 1, 2) // same values, distinct record
	c.Add(a)
	c.Add(b)
	require.NotEqual(t, a.ID, b.ID)

	removed := c.Remove(map[int]bool{b.ID: true})
	assert.Equal(t, 1, removed)
	require.Len(t, c.Annotations, 1)
	assert.Same(t, a, c.Annotations[0])
	assert.Same(t, a, c.Record(a.ID))
	assert.Nil(t, c.Record(b.ID))

	assert.Equal(t, 0, c.Remove(nil))
}

func TestContig_AssignHandles(t *testing.T) {
	a := spanRecord("a", KindGene, 1, 2)
	b := spanRecord("a", KindGene, 1, 2)
	tagged := spanRecord("b", KindGene, 3, 4)
	tagged.ID = 7
	dup := spanRecord("c", KindGene, 5, 6)
	dup.ID = 7
	c := &Contig{Annotations: []*Record{a, b, tagged, dup}}

	assert.Equal(t, 0, c.Remove(map[int]bool{0: true}), "records without a handle are never matched")
	require.Len(t, c.Annotations, 4)

	c.AssignHandles()
	ids := map[int]bool{}
	for _, r := range c.Annotations {
		require.NotZero(t, r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, ids, 4)
	assert.Equal(t, 7, tagged.ID)

	// Add continues past every handle already in use.
	d := spanRecord("d", KindGene, 7, 8)
	assert.Greater(t, c.Add(d), 7)
	assert.Equal(t, 1, c.Remove(map[int]bool{a.ID: true}))
	assert.Len(t, c.Annotations, 4)
	assert.Nil(t, c.Record(a.ID))
	assert.Same(t, b, c.Record(b.ID))
}

func TestContig_AddAfterDirectAppend(t *testing.T) {
	c := &Contig{}
	first := spanRecord("a", KindGene, 1, 2)
	c.Add(first)
	loose := spanRecord("b", KindGene, 3, 4)
	c.Annotations = append(c.Annotations, loose)

	next := spanRecord("c", KindGene, 5, 6)
	c.Add(next)
	assert.NotZero(t, loose.ID)
	assert.NotEqual(t, first.ID, loose.ID)
	assert.NotEqual(t, loose.ID, next.ID)
}

func TestDocument_SortByLength(t *testing.T) {
	doc := &Document{Contigs: []*Contig{
		{Name: "short", Sequence: "AC"},
		{Name: "long", Sequence: "ACGTACGT"},
		{Name: "mid", Sequence: "ACGT"},
	}}
	doc.SortByLength(true)
	assert.Equal(t, "long", doc.Contigs[0].Name)
	assert.Equal(t, "short", doc.Contigs[2].Name)

	doc.SortByLength(false)
	assert.Equal(t, "short", doc.Contigs[0].Name)
}
