package masterfile

import "sort"

// FeatureIndex answers "which records cover this coordinate" for one contig
// using a sorted-slice approach. Records without any coordinate are skipped.
// The index is built once; later changes to the contig are not reflected.
type FeatureIndex struct {
	spans  []span
	maxEnd []int // maxEnd[i] = max(hi) for spans[:i+1]
}

type span struct {
	lo, hi int
	record *Record
}

// BuildFeatureIndex indexes the records of c, optionally restricted to the given kinds.
func BuildFeatureIndex(c *Contig, kinds ...Kind) *FeatureIndex {
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	var spans []span
	for _, r := range c.Annotations {
		if len(want) > 0 && !want[r.Kind] {
			continue
		}
		lo, hi, ok := r.Span()
		if !ok {
			continue
		}
		spans = append(spans, span{lo: lo, hi: hi, record: r})
	}
	if len(spans) == 0 {
		return &FeatureIndex{}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].lo < spans[j].lo
	})

	maxEnd := make([]int, len(spans))
	maxEnd[0] = spans[0].hi
	for i := 1; i < len(spans); i++ {
		maxEnd[i] = max(spans[i].hi, maxEnd[i-1])
	}

	return &FeatureIndex{spans: spans, maxEnd: maxEnd}
}

// Len returns the number of indexed records.
func (ix *FeatureIndex) Len() int {
	return len(ix.spans)
}

// Covering returns all records whose [lo, hi] span contains pos, in
// ascending order of their lowest coordinate.
func (ix *FeatureIndex) Covering(pos int) []*Record {
	if len(ix.spans) == 0 {
		return nil
	}

	// Candidates are [0, hi): every span starting at or before pos.
	hi := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].lo > pos
	})

	var result []*Record
	for i := hi - 1; i >= 0; i-- {
		// Nothing at or left of i reaches pos.
		if ix.maxEnd[i] < pos {
			break
		}
		if ix.spans[i].hi >= pos {
			result = append(result, ix.spans[i].record)
		}
	}

	// Scanned right to left; flip to ascending start order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
