package report

import (
	"bytes"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
	"github.com/unmtransinfo/expression-profiles/internal/exfiles"
	"github.com/unmtransinfo/expression-profiles/internal/similarity"
)

func testData(t *testing.T) *exfiles.Data {
	t.Helper()

	tissues := []string{"Brain - Cortex", "Heart - Left Ventricle", "Liver"}
	genes := []dataset.Gene{
		{ENSG: "ENSG_OPRK1", Symbol: "OPRK1", Uniprot: "P41145"},
		{ENSG: "ENSG_ADCY1", Symbol: "ADCY1"},
		{ENSG: "ENSG_ADCY2", Symbol: "ADCY2"},
		{ENSG: "ENSG_ADCY10", Symbol: "ADCY10"},
	}
	var cells []dataset.ExpressionCell
	base := map[string][]float64{
		"ENSG_OPRK1":  {1, 2, 3},
		"ENSG_ADCY1":  {2, 4, 6},
		"ENSG_ADCY2":  {6, 4, 2},
		"ENSG_ADCY10": {0.5, 0.5, 5},
	}
	for ensg, vals := range base {
		for i, tis := range tissues {
			cells = append(cells,
				dataset.ExpressionCell{ENSG: ensg, Sex: "F", Tissue: tis, TPM: vals[i]},
				dataset.ExpressionCell{ENSG: ensg, Sex: "M", Tissue: tis, TPM: vals[i] * 1.5})
		}
	}
	var pairs []dataset.CorrelationPair
	for ensg := range base {
		pairs = append(pairs, dataset.CorrelationPair{ENSGA: "ENSG_OPRK1", ENSGB: ensg, Rho: 0.5})
	}

	return exfiles.Build(&dataset.Tables{
		Tissues:      tissues,
		Expression:   cells,
		Genes:        genes,
		Correlations: pairs,
	}, zap.NewNop())
}

func TestBuild_QueryNotFound(t *testing.T) {
	b := NewBuilder(testData(t))
	_, err := b.Build("NOSUCH", regexp.MustCompile(`^ADCY`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOSUCH")
}

func TestBuild_CategoriesAndSeriesOrder(t *testing.T) {
	b := NewBuilder(testData(t))
	r, err := b.Build("OPRK1", regexp.MustCompile(`^ADCY[0-9]`))
	require.NoError(t, err)

	require.Len(t, r.Categories, 3)
	assert.Equal(t, CategoryFemale, r.Categories[0].Category)
	assert.Equal(t, CategoryMale, r.Categories[1].Category)
	assert.Equal(t, CategoryAveraged, r.Categories[2].Category)

	for _, cr := range r.Categories {
		labels := make([]string, len(cr.Series))
		for i, s := range cr.Series {
			labels[i] = s.Label
		}
		assert.Equal(t, []string{"OPRK1", "ADCY1", "ADCY2", "ADCY10"}, labels)
		require.Len(t, cr.Metrics, 3)
	}
}

func TestBuild_NoMatchesOnlyQuerySeries(t *testing.T) {
	b := NewBuilder(testData(t))
	r, err := b.Build("OPRK1", regexp.MustCompile(`^ZZZ`))
	require.NoError(t, err)

	for _, cr := range r.Categories {
		assert.Len(t, cr.Series, 1)
		assert.Empty(t, cr.Metrics)
	}
}

func TestBuild_MetricsAgainstAveragedBaseline(t *testing.T) {
	data := testData(t)
	b := NewBuilder(data)
	b.LogTransform = false
	r, err := b.Build("OPRK1", regexp.MustCompile(`^ADCY1$`))
	require.NoError(t, err)

	baseline := data.Matrix.Averaged("ENSG_OPRK1")
	female := data.Matrix.Profile("ENSG_ADCY1", dataset.SexFemale)

	got := r.Categories[0].Metrics[0]
	assert.InDelta(t, similarity.WeightedPearson(female, baseline), got.Corr, 1e-12)
	assert.InDelta(t, similarity.Ruzicka(female, baseline), got.Ruzicka, 1e-12)

	// ADCY1 is an exact scalar multiple of OPRK1, so every category's
	// correlation against the averaged baseline is 1.
	for _, cr := range r.Categories {
		assert.InDelta(t, 1.0, cr.Metrics[0].Corr, 1e-9)
	}
}

func TestBuild_LogTransformDisplayOnly(t *testing.T) {
	data := testData(t)

	withLog := NewBuilder(data)
	rLog, err := withLog.Build("OPRK1", regexp.MustCompile(`^ADCY1$`))
	require.NoError(t, err)

	withoutLog := NewBuilder(data)
	withoutLog.LogTransform = false
	rRaw, err := withoutLog.Build("OPRK1", regexp.MustCompile(`^ADCY1$`))
	require.NoError(t, err)

	// Series values differ; metrics do not.
	assert.InDelta(t, math.Log10(1+rRaw.Categories[0].Series[0].Values[0]),
		rLog.Categories[0].Series[0].Values[0], 1e-12)
	assert.Equal(t, rRaw.Categories[0].Metrics[0].Corr, rLog.Categories[0].Metrics[0].Corr)

	assert.Equal(t, "log10(1+TPM)", rLog.YAxisLabel())
	assert.Equal(t, "TPM", rRaw.YAxisLabel())
}

func TestBuild_WorkerCountDoesNotChangeOrder(t *testing.T) {
	data := testData(t)

	serial := NewBuilder(data)
	serial.Workers = 1
	rs, err := serial.Build("OPRK1", regexp.MustCompile(`^ADCY[0-9]`))
	require.NoError(t, err)

	parallel := NewBuilder(data)
	parallel.Workers = 8
	rp, err := parallel.Build("OPRK1", regexp.MustCompile(`^ADCY[0-9]`))
	require.NoError(t, err)

	assert.Equal(t, rs.Categories, rp.Categories)
}

func TestRenderPNG(t *testing.T) {
	b := NewBuilder(testData(t))
	r, err := b.Build("OPRK1", regexp.MustCompile(`^ADCY[0-9]`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(r, &r.Categories[0], &buf))
	assert.Greater(t, buf.Len(), 0)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}

func TestRenderPNG_NotEnoughData(t *testing.T) {
	// One tissue means one point per series, so nothing can be drawn.
	r := &Report{
		Query:   dataset.Gene{ENSG: "ENSG01", Symbol: "OPRK1"},
		Tissues: []string{"Liver"},
	}
	cr := &CategoryReport{
		Category: CategoryAveraged,
		Series:   []Series{{Label: "OPRK1", Values: []float64{1.5}}},
	}

	var buf bytes.Buffer
	err := RenderPNG(r, cr, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough data")
}

func TestMetricsWriter(t *testing.T) {
	b := NewBuilder(testData(t))
	r, err := b.Build("OPRK1", regexp.MustCompile(`^ADCY[0-9]`))
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := NewMetricsWriter(&buf)
	require.NoError(t, mw.WriteHeader())
	require.NoError(t, mw.WriteReport(r))
	require.NoError(t, mw.Flush())

	out := buf.String()
	assert.Contains(t, out, "#Category\tENSG\tSymbol\twRho\tRuzicka")
	assert.Contains(t, out, "female\tENSG_ADCY1\tADCY1")
	assert.Contains(t, out, "averaged\tENSG_ADCY10\tADCY10")
	// 3 categories x 3 comparison genes + header.
	assert.Len(t, splitNonEmptyLines(out), 10)
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func TestFormatMetric_NaN(t *testing.T) {
	assert.Equal(t, "NA", formatMetric(math.NaN()))
	assert.Equal(t, "0.500", formatMetric(0.5))
}
