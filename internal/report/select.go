// Package report builds the comparison report for a query gene: one
// chart per sex category plus per-gene similarity metrics.
package report

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

var numericSuffixRe = regexp.MustCompile(`^(.*?)([0-9]+)$`)

// splitSymbol splits a gene symbol into its prefix and trailing numeric
// suffix. ok is false when the symbol has no numeric suffix.
func splitSymbol(symbol string) (prefix string, n int, ok bool) {
	m := numericSuffixRe.FindStringSubmatch(symbol)
	if m == nil {
		return symbol, 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		// Suffix too large for int; fall back to lexical ordering.
		return symbol, 0, false
	}
	return m[1], n, true
}

// symbolLess is the total order used for comparison genes: by symbol
// prefix, then by numeric suffix (so ADCY2 sorts before ADCY10), with
// suffix-less symbols ordered lexically. Ties fall back to the full
// symbol so the order is stable and total.
func symbolLess(a, b string) bool {
	pa, na, oka := splitSymbol(a)
	pb, nb, okb := splitSymbol(b)
	if pa != pb {
		return pa < pb
	}
	if oka && okb {
		if na != nb {
			return na < nb
		}
		return a < b
	}
	if oka != okb {
		// Bare prefix sorts before any numbered sibling.
		return !oka
	}
	return a < b
}

// MatchGenes returns the genes whose symbol matches the pattern, in
// numeric-suffix order.
func MatchGenes(genes []dataset.Gene, pattern *regexp.Regexp) []dataset.Gene {
	var out []dataset.Gene
	for _, g := range genes {
		if pattern.MatchString(g.Symbol) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return symbolLess(out[i].Symbol, out[j].Symbol)
	})
	return out
}
