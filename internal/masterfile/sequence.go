package masterfile

import (
	"fmt"
	"strings"
)

// FoldSequence validates a sequence line body and folds it to the stored alphabet.
// Whitespace is dropped, real bases are upper-cased, U becomes T and, when
// allowAmbiguity is set, IUPAC ambiguity codes become N. It returns the folded
// text and the number of real (non-marker) bases in it.
func FoldSequence(dna string, allowAmbiguity bool) (string, int, error) {
	var sb strings.Builder
	sb.Grow(len(dna))
	bases := 0

	for i := 0; i < len(dna); i++ {
		c := dna[i]
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case ExclusionMarker:
			sb.WriteByte(c)
			continue
		}

		folded, ok := foldBase(c, allowAmbiguity)
		if !ok {
			return "", 0, fmt.Errorf("%w %q", ErrInvalidSequenceCharacter, c)
		}
		sb.WriteByte(folded)
		bases++
	}

	return sb.String(), bases, nil
}

func foldBase(c byte, allowAmbiguity bool) (byte, bool) {
	switch c {
	case 'A', 'C', 'G', 'T', 'N':
		return c, true
	case 'a', 'c', 'g', 't', 'n':
		return c - 'a' + 'A', true
	}
	if !allowAmbiguity {
		return 0, false
	}
	switch c {
	case 'U', 'u':
		return 'T', true
	case 'R', 'Y', 'W', 'S', 'K', 'M', 'B', 'D', 'H', 'V', 'X',
		'r', 'y', 'w', 's', 'k', 'm', 'b', 'd', 'h', 'v', 'x':
		return 'N', true
	}
	return 0, false
}

// CountBases returns the number of real bases in seq, ignoring exclusion markers.
func CountBases(seq string) int {
	return len(seq) - strings.Count(seq, string(ExclusionMarker))
}
