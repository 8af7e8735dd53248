package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hmmannot/internal/clean"
	"github.com/inodb/hmmannot/internal/masterfile"
)

// makeItems writes n small masterfiles and returns work items for them.
// Every bad-th file (if bad > 0) contains an invalid sequence character.
func makeItems(t *testing.T, n, bad int) <-chan WorkItem {
	t.Helper()
	dir := t.TempDir()
	ch := make(chan WorkItem, n)
	for i := range n {
		text := fmt.Sprintf(">c%d\nACGT\n;G-g%d ==> start ;; note %d\nACGT\n;G-g%d ==> end\n", i, i, i, i)
		if bad > 0 && i%bad == bad-1 {
			text = ">c1\nAC*T\n"
		}
		path := filepath.Join(dir, fmt.Sprintf("in%03d.mf", i))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
		ch <- WorkItem{Seq: i, Path: path, OutDir: filepath.Join(dir, fmt.Sprintf("out%03d", i))}
	}
	close(ch)
	return ch
}

func TestParallelClean_OrderPreservation(t *testing.T) {
	p := NewProcessor(nil)
	results := p.ParallelClean(makeItems(t, 40, 0), 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		require.Len(t, r.Doc.Contigs, 1)
		assert.Equal(t, "contig1", r.Doc.Contigs[0].Name)
		assert.Equal(t, fmt.Sprintf("c%d", r.Seq), r.Doc.Contigs[0].UniqueName)
		assert.FileExists(t, filepath.Join(r.OutDir, clean.CopyFileName))
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 40)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelClean_SingleWorker(t *testing.T) {
	p := NewProcessor(nil, masterfile.WithAmbiguity(false))
	results := p.ParallelClean(makeItems(t, 10, 0), 1)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		assert.Equal(t, count, r.Seq)
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestParallelClean_ErrorsStayWithTheirItem(t *testing.T) {
	p := NewProcessor(nil)
	results := p.ParallelClean(makeItems(t, 9, 3), 4)

	var failed []int
	err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			assert.True(t, errors.Is(r.Err, masterfile.ErrInvalidSequenceCharacter))
			assert.Nil(t, r.Doc)
			failed = append(failed, r.Seq)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 8}, failed)
}

func TestParallelClean_EmptyInput(t *testing.T) {
	ch := make(chan WorkItem)
	close(ch)

	count := 0
	err := OrderedCollect(NewProcessor(nil).ParallelClean(ch, 0), func(WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	results := NewProcessor(nil).ParallelClean(makeItems(t, 20, 0), 4)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
	assert.Contains(t, err.Error(), "in004.mf: stop at 5")
}

func TestOrderedCollect_MissingResult(t *testing.T) {
	results := make(chan WorkResult, 3)
	results <- WorkResult{Seq: 0, Path: "a.mf"}
	results <- WorkResult{Seq: 2, Path: "c.mf"}
	results <- WorkResult{Seq: 3, Path: "d.mf"}
	close(results)

	var got []string
	err := OrderedCollect(results, func(r WorkResult) error {
		got = append(got, r.Path)
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a.mf"}, got)
	assert.Contains(t, err.Error(), "no result for input 1")
	assert.Contains(t, err.Error(), "c.mf, d.mf")
}
