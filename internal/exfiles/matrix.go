// Package exfiles assembles the filtered expression-profile tables used
// for gene comparison: tissue ordering, the gene universe, and the
// per-(gene,sex) expression matrix.
package exfiles

import (
	"math"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

type profileKey struct {
	ensg string
	sex  string
}

// Matrix holds expression profiles pivoted to one vector per (gene, sex),
// aligned to a fixed tissue ordering. It is built once and read-only
// afterwards.
type Matrix struct {
	tissues []string
	index   map[string]int
	rows    map[profileKey][]float64
}

// NewMatrix pivots long-form expression cells into tissue-aligned vectors.
// Cells for tissues outside the given ordering are dropped. Missing
// (gene, sex, tissue) entries are NaN. If the same cell appears more than
// once the first occurrence wins.
func NewMatrix(tissues []string, cells []dataset.ExpressionCell) *Matrix {
	m := &Matrix{
		tissues: tissues,
		index:   make(map[string]int, len(tissues)),
		rows:    make(map[profileKey][]float64),
	}
	for i, t := range tissues {
		m.index[t] = i
	}

	seen := make(map[dataset.ExpressionCell]bool)
	for _, c := range cells {
		col, ok := m.index[c.Tissue]
		if !ok {
			continue
		}
		key := profileKey{c.ENSG, c.Sex}
		row, ok := m.rows[key]
		if !ok {
			row = emptyProfile(len(tissues))
			m.rows[key] = row
		}
		slot := dataset.ExpressionCell{ENSG: c.ENSG, Sex: c.Sex, Tissue: c.Tissue}
		if seen[slot] {
			continue
		}
		seen[slot] = true
		row[col] = c.TPM
	}
	return m
}

// Tissues returns the tissue ordering the matrix is aligned to.
func (m *Matrix) Tissues() []string {
	return m.tissues
}

// Has reports whether any profile exists for the gene.
func (m *Matrix) Has(ensg string) bool {
	_, f := m.rows[profileKey{ensg, dataset.SexFemale}]
	_, ml := m.rows[profileKey{ensg, dataset.SexMale}]
	return f || ml
}

// ENSGs returns the distinct gene identifiers present in the matrix, in
// no particular order.
func (m *Matrix) ENSGs() []string {
	set := make(map[string]bool, len(m.rows))
	var out []string
	for k := range m.rows {
		if !set[k.ensg] {
			set[k.ensg] = true
			out = append(out, k.ensg)
		}
	}
	return out
}

// Profile returns the tissue-aligned expression vector for a gene and sex.
// A gene/sex with no data yields an all-NaN vector, never an error;
// similarity against it degrades to NaN downstream.
func (m *Matrix) Profile(ensg, sex string) []float64 {
	row, ok := m.rows[profileKey{ensg, sex}]
	if !ok {
		return emptyProfile(len(m.tissues))
	}
	out := make([]float64, len(row))
	copy(out, row)
	return out
}

// Averaged returns the elementwise mean of the female and male profiles.
// A tissue missing in either sex propagates NaN to that entry.
func (m *Matrix) Averaged(ensg string) []float64 {
	f := m.Profile(ensg, dataset.SexFemale)
	ml := m.Profile(ensg, dataset.SexMale)
	out := make([]float64, len(f))
	for i := range out {
		out[i] = (f[i] + ml[i]) / 2
	}
	return out
}

func emptyProfile(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}
