// Package similarity implements the expression-profile comparison metrics:
// weighted Pearson correlation and Ruzicka (weighted Jaccard) similarity.
//
// Both metrics treat NaN as a missing observation and exclude the pair
// (pairwise-complete). An undefined result is reported as NaN, meaning
// "no signal"; it is never an error.
package similarity

import "math"

// WeightedPearson computes the Pearson correlation of a and b with each
// pair weighted by (a[i]+b[i])/2. Tissues where both genes are weakly
// expressed carry noisy correlation signal, so they are down-weighted
// rather than excluded.
//
// Pairs where either value is NaN are excluded. Returns NaN when fewer
// than 2 valid pairs remain, the total weight is zero, or either input
// has zero weighted variance.
func WeightedPearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var sumW float64
	var valid int
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		sumW += (a[i] + b[i]) / 2
		valid++
	}
	if valid < 2 || sumW == 0 {
		return math.NaN()
	}

	var meanA, meanB float64
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		w := (a[i] + b[i]) / 2
		meanA += w * a[i]
		meanB += w * b[i]
	}
	meanA /= sumW
	meanB /= sumW

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		w := (a[i] + b[i]) / 2
		da := a[i] - meanA
		db := b[i] - meanB
		cov += w * da * db
		varA += w * da * da
		varB += w * db * db
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}

// Ruzicka computes sum(min(a[i],b[i])) / sum(max(a[i],b[i])), a continuous
// analogue of Jaccard similarity for non-negative vectors. Pairs where
// either value is NaN are excluded, matching the correlation policy.
//
// Returns a value in [0,1] for non-negative inputs: 1 when a == b, 0 when
// the profiles never co-occur above zero. Returns NaN when no valid pair
// remains or the max-sum is zero.
func Ruzicka(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var sumMin, sumMax float64
	var valid int
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		sumMin += math.Min(a[i], b[i])
		sumMax += math.Max(a[i], b[i])
		valid++
	}
	if valid == 0 || sumMax == 0 {
		return math.NaN()
	}
	return sumMin / sumMax
}
