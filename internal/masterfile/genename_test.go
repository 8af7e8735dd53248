package masterfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGeneName(t *testing.T) {
	tests := []struct {
		in       string
		wantKind Kind
		wantName string
	}{
		{"cox1", KindGene, "cox1"},
		{"cox1_2", KindGene, "cox1"},
		{"rnl_1_3", KindGene, "rnl"},
		{"Sig-cox1", KindSignal, "cox1"},
		{"cox1-E2", KindExon, "cox1"},
		{"cox1_2-E2-orf100", KindExon, "cox1"},
		{"cox1-I3", KindIntron, "cox1"},
		{"cox1_2-I3-orf232", KindIntron, "cox1"},
		{"trnM(cau)", KindGene, "M"},
		{"trnX(?)", KindGene, "X"},
		{"orf-E", KindGene, "orf-E"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, name := NormalizeGeneName(KindGene, tt.in)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestNormalizeGeneName_NonGeneUntouched(t *testing.T) {
	kind, name := NormalizeGeneName(KindComment, "cox1_2-E1")
	assert.Equal(t, KindComment, kind)
	assert.Equal(t, "cox1_2-E1", name)
}

func TestFoldSequence(t *testing.T) {
	seq, n, err := FoldSequence("uRYK", true)
	assert.NoError(t, err)
	assert.Equal(t, "TNNN", seq)
	assert.Equal(t, 4, n)

	seq, n, err = FoldSequence("ac gt\t!!nN", true)
	assert.NoError(t, err)
	assert.Equal(t, "ACGT!!NN", seq)
	assert.Equal(t, 6, n)

	_, _, err = FoldSequence("ACGU", false)
	assert.ErrorIs(t, err, ErrInvalidSequenceCharacter)

	_, _, err = FoldSequence("AC;G", true)
	assert.ErrorIs(t, err, ErrInvalidSequenceCharacter)
}

func TestCountBases(t *testing.T) {
	assert.Equal(t, 0, CountBases(""))
	assert.Equal(t, 4, CountBases("AC!!GT"))
}
