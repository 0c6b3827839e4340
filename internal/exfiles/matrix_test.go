package exfiles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

var testTissues = []string{"Brain - Cortex", "Heart - Left Ventricle", "Liver"}

func testCells() []dataset.ExpressionCell {
	return []dataset.ExpressionCell{
		{ENSG: "ENSG01", Sex: "F", Tissue: "Brain - Cortex", TPM: 1},
		{ENSG: "ENSG01", Sex: "F", Tissue: "Heart - Left Ventricle", TPM: 2},
		{ENSG: "ENSG01", Sex: "F", Tissue: "Liver", TPM: 3},
		{ENSG: "ENSG01", Sex: "M", Tissue: "Brain - Cortex", TPM: 5},
		{ENSG: "ENSG01", Sex: "M", Tissue: "Liver", TPM: 7},
	}
}

func TestMatrix_Profile(t *testing.T) {
	m := NewMatrix(testTissues, testCells())

	f := m.Profile("ENSG01", dataset.SexFemale)
	require.Len(t, f, 3)
	assert.Equal(t, []float64{1, 2, 3}, f)

	ml := m.Profile("ENSG01", dataset.SexMale)
	assert.Equal(t, 5.0, ml[0])
	assert.True(t, math.IsNaN(ml[1]), "tissue absent in males must be NaN")
	assert.Equal(t, 7.0, ml[2])
}

func TestMatrix_ProfileAbsentGene(t *testing.T) {
	m := NewMatrix(testTissues, testCells())

	p := m.Profile("ENSG99", dataset.SexFemale)
	require.Len(t, p, len(testTissues))
	for i, v := range p {
		assert.True(t, math.IsNaN(v), "index %d", i)
	}
}

func TestMatrix_Averaged(t *testing.T) {
	m := NewMatrix(testTissues, testCells())

	avg := m.Averaged("ENSG01")
	require.Len(t, avg, 3)
	assert.Equal(t, 3.0, avg[0])
	// Heart is missing in males: the mean is NaN, not the female value.
	assert.True(t, math.IsNaN(avg[1]))
	assert.Equal(t, 5.0, avg[2])
}

func TestMatrix_FirstCellWins(t *testing.T) {
	cells := append(testCells(),
		dataset.ExpressionCell{ENSG: "ENSG01", Sex: "F", Tissue: "Liver", TPM: 99})
	m := NewMatrix(testTissues, cells)

	f := m.Profile("ENSG01", dataset.SexFemale)
	assert.Equal(t, 3.0, f[2], "duplicate cell must not overwrite the first value")
}

func TestMatrix_DropsUnknownTissues(t *testing.T) {
	cells := append(testCells(),
		dataset.ExpressionCell{ENSG: "ENSG01", Sex: "F", Tissue: "Spleen", TPM: 42})
	m := NewMatrix(testTissues, cells)

	f := m.Profile("ENSG01", dataset.SexFemale)
	assert.Len(t, f, 3)
}

func TestMatrix_ProfileIsACopy(t *testing.T) {
	m := NewMatrix(testTissues, testCells())
	p := m.Profile("ENSG01", dataset.SexFemale)
	p[0] = 1000
	assert.Equal(t, 1.0, m.Profile("ENSG01", dataset.SexFemale)[0])
}

func TestMatrix_Has(t *testing.T) {
	m := NewMatrix(testTissues, testCells())
	assert.True(t, m.Has("ENSG01"))
	assert.False(t, m.Has("ENSG99"))
}
