package exfiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

func rawTables() *dataset.Tables {
	return &dataset.Tables{
		Tissues: []string{"Brain - Cortex", "Heart - Left Ventricle", "Whole Blood", "Liver"},
		Expression: []dataset.ExpressionCell{
			{ENSG: "ENSG01", Sex: "F", Tissue: "Brain - Cortex", TPM: 1},
			{ENSG: "ENSG01", Sex: "M", Tissue: "Brain - Cortex", TPM: 2},
			{ENSG: "ENSG02", Sex: "F", Tissue: "Liver", TPM: 3},
			{ENSG: "ENSG02", Sex: "M", Tissue: "Liver", TPM: 4},
			{ENSG: "ENSG03", Sex: "F", Tissue: "Liver", TPM: 5},
			// ENSG04 has expression but no correlation pair.
			{ENSG: "ENSG04", Sex: "F", Tissue: "Liver", TPM: 6},
		},
		Genes: []dataset.Gene{
			{ENSG: "ENSG01", Symbol: "OPRK1", Name: "opioid receptor kappa 1", Uniprot: "P41145"},
			{ENSG: "ENSG02", Symbol: "ADCY1", Name: "adenylate cyclase 1", Uniprot: "Q08828"},
			{ENSG: "ENSG03", Symbol: "ADCY1", Name: "adenylate cyclase 1 duplicate"},
			{ENSG: "ENSG04", Symbol: "GNAS"},
			{ENSG: "ENSG05", Symbol: "NOEXPR"},
		},
		Correlations: []dataset.CorrelationPair{
			{ENSGA: "ENSG01", ENSGB: "ENSG02", Rho: 0.8},
			{ENSGA: "ENSG03", ENSGB: "ENSG01", Rho: 0.7},
			{ENSGA: "ENSG05", ENSGB: "ENSG01", Rho: 0.6},
		},
		Annotations: []dataset.Annotation{
			{Uniprot: "P41145", TDL: "Tclin", Family: "GPCR"},
		},
	}
}

func TestFilterTissues_PreservesReferenceOrder(t *testing.T) {
	raw := rawTables()
	got := FilterTissues(raw.Tissues, raw.Expression)
	// Whole Blood has no expression data and drops out; order is the
	// reference order, never re-sorted.
	assert.Equal(t, []string{"Brain - Cortex", "Heart - Left Ventricle", "Liver"}, got)
}

func TestBuild_CandidateIntersection(t *testing.T) {
	d := Build(rawTables(), zap.NewNop())

	var ensgs []string
	for _, g := range d.Genes {
		ensgs = append(ensgs, g.ENSG)
	}
	// ENSG03 loses the symbol collision with ENSG02; ENSG04 has no
	// correlation pair; ENSG05 has no expression.
	assert.Equal(t, []string{"ENSG01", "ENSG02"}, ensgs)
}

func TestFilterGenes_DropsMissingSymbol(t *testing.T) {
	genes := []dataset.Gene{
		{ENSG: "ENSG01", Symbol: ""},
		{ENSG: "ENSG02", Symbol: "ADCY1"},
	}
	candidates := map[string]bool{"ENSG01": true, "ENSG02": true}
	got := FilterGenes(genes, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, "ENSG02", got[0].ENSG)
}

func TestFilterGenes_FirstOccurrenceWins(t *testing.T) {
	genes := []dataset.Gene{
		{ENSG: "ENSG01", Symbol: "DUP", Name: "first"},
		{ENSG: "ENSG01", Symbol: "OTHER", Name: "same ensg"},
		{ENSG: "ENSG02", Symbol: "DUP", Name: "symbol collision"},
	}
	candidates := map[string]bool{"ENSG01": true, "ENSG02": true}
	got := FilterGenes(genes, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, "ENSG01", got[0].ENSG)
	assert.Equal(t, "first", got[0].Name)
}

func TestFilterGenes_Idempotent(t *testing.T) {
	raw := rawTables()
	m := NewMatrix(FilterTissues(raw.Tissues, raw.Expression), raw.Expression)
	candidates := CandidateENSGs(m, raw.Correlations, raw.Genes)

	once := FilterGenes(raw.Genes, candidates)
	twice := FilterGenes(once, candidates)
	assert.Equal(t, once, twice)
}

func TestFilterTissues_Idempotent(t *testing.T) {
	raw := rawTables()
	once := FilterTissues(raw.Tissues, raw.Expression)
	twice := FilterTissues(once, raw.Expression)
	assert.Equal(t, once, twice)
}

func TestJoinAnnotations_LeftJoin(t *testing.T) {
	d := Build(rawTables(), zap.NewNop())

	oprk1, ok := d.GeneBySymbol("OPRK1")
	require.True(t, ok)
	assert.Equal(t, "Tclin", oprk1.TDL)
	assert.Equal(t, "GPCR", oprk1.Family)

	adcy1, ok := d.GeneBySymbol("ADCY1")
	require.True(t, ok)
	assert.Empty(t, adcy1.TDL, "unmatched gene keeps empty enrichment")
	assert.Empty(t, adcy1.Family)
}

func TestBuild_TissueOrderReachesMatrix(t *testing.T) {
	d := Build(rawTables(), zap.NewNop())
	assert.Equal(t, d.Tissues, d.Matrix.Tissues())
}
