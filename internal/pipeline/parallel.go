// Package pipeline cleans several masterfiles concurrently.
package pipeline

import (
	"fmt"
	"maps"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/hmmannot/internal/clean"
	"github.com/inodb/hmmannot/internal/masterfile"
)

// WorkItem is one masterfile to load and clean.
type WorkItem struct {
	Seq    int
	Path   string
	OutDir string // receives the round-trip copy
}

// WorkResult holds the cleaned document for a single masterfile.
type WorkResult struct {
	Seq    int
	Path   string
	OutDir string
	Doc    *masterfile.Document
	Err    error
}

// Processor loads and cleans masterfiles. It is safe for concurrent use.
type Processor struct {
	parseOpts []masterfile.Option
	cleaner   *clean.Cleaner
	logger    *zap.Logger
}

// NewProcessor creates a processor. parseOpts are passed to every parse.
func NewProcessor(logger *zap.Logger, parseOpts ...masterfile.Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		parseOpts: append([]masterfile.Option{masterfile.WithLogger(logger)}, parseOpts...),
		cleaner:   clean.NewCleaner(logger),
		logger:    logger,
	}
}

// Process loads and cleans one masterfile.
func (p *Processor) Process(item WorkItem) (*masterfile.Document, error) {
	doc, err := masterfile.ParseFile(item.Path, p.parseOpts...)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(item.OutDir, 0o700); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	if err := p.cleaner.Clean(doc, item.OutDir); err != nil {
		return nil, fmt.Errorf("%s: %w", item.Path, err)
	}
	p.logger.Debug("cleaned masterfile",
		zap.String("path", item.Path),
		zap.Int("contigs", len(doc.Contigs)),
		zap.Int("records", doc.RecordCount()))
	return doc, nil
}

// ParallelClean processes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (p *Processor) ParallelClean(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				doc, err := p.Process(item)
				results <- WorkResult{
					Seq:    item.Seq,
					Path:   item.Path,
					OutDir: item.OutDir,
					Doc:    doc,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect hands each cleaned masterfile to fn in input order, holding
// back files that finish early. It stops at the first error from fn, draining
// the remaining results so workers can exit. Files still held back when
// results closes (their predecessor never arrived) are reported by path.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	next := 0

	for r := range results {
		held[r.Seq] = r
		for {
			ready, ok := held[next]
			if !ok {
				break
			}
			delete(held, next)
			next++
			if err := fn(ready); err != nil {
				for range results {
				}
				return fmt.Errorf("%s: %w", ready.Path, err)
			}
		}
	}

	if len(held) > 0 {
		paths := make([]string, 0, len(held))
		for _, seq := range slices.Sorted(maps.Keys(held)) {
			paths = append(paths, held[seq].Path)
		}
		return fmt.Errorf("no result for input %d; %d later file(s) not collected: %s",
			next, len(paths), strings.Join(paths, ", "))
	}
	return nil
}
