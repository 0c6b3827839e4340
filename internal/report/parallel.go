package report

import (
	"runtime"
	"sync"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

// compareResult holds the per-category profiles and similarity metrics
// for one comparison gene.
type compareResult struct {
	Seq      int
	Gene     dataset.Gene
	Profiles map[Category][]float64
	Corr     map[Category]float64
	Ruzicka  map[Category]float64
}

// compareAll computes metrics for all comparison genes using a pool of
// workers and returns the results in input (deterministic sort) order.
// Each worker reads shared read-only tables only, so the loop
// parallelizes without coordination beyond the sequence numbers.
func (b *Builder) compareAll(genes []dataset.Gene, baseline []float64) ([]compareResult, error) {
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(genes) && len(genes) > 0 {
		workers = len(genes)
	}

	items := make(chan compareResult, 2*workers)
	results := make(chan compareResult, 2*workers)

	go func() {
		for i, g := range genes {
			items <- compareResult{Seq: i, Gene: g}
		}
		close(items)
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res := b.compareGene(item.Gene, baseline)
				res.Seq = item.Seq
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]compareResult, len(genes))
	if err := orderedCollect(results, func(r compareResult) error {
		ordered[r.Seq] = r
		return nil
	}); err != nil {
		return nil, err
	}
	return ordered, nil
}

// orderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order arrivals in a pending map. Blocks until the
// results channel is closed.
func orderedCollect(results <-chan compareResult, fn func(compareResult) error) error {
	pending := make(map[int]compareResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			if err := fn(rr); err != nil {
				return err
			}
			nextSeq++
		}
	}
	return nil
}
