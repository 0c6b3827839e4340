// Package prep implements the GTEx preprocessing batch job: it reads the
// raw subject, sample, tissue, RNA-seq, and gene map files, cleans and
// aggregates them, and writes the snapshot consumed by the compare
// command.
package prep

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
	"github.com/unmtransinfo/expression-profiles/internal/exfiles"
	"github.com/unmtransinfo/expression-profiles/internal/gtex"
	"github.com/unmtransinfo/expression-profiles/internal/similarity"
)

// Options configures a prep run.
type Options struct {
	SubjectsPath    string
	SamplesPath     string
	TissuesPath     string
	RNASeqPath      string
	GeneMapPath     string
	AnnotationsPath string // optional
	SnapshotPath    string

	// CorrThreshold is the minimum |weighted correlation| for a gene
	// pair to be recorded in the correlations membership table.
	CorrThreshold float64
}

// Run executes the full preparation pipeline and writes the snapshot.
func Run(opts Options, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	tissueOrder, err := gtex.ReadTissues(opts.TissuesPath)
	if err != nil {
		return err
	}
	subjects, err := gtex.ReadSubjects(opts.SubjectsPath)
	if err != nil {
		return err
	}
	samples, err := gtex.ReadSamples(opts.SamplesPath)
	if err != nil {
		return err
	}
	genes, err := gtex.ReadGeneMap(opts.GeneMapPath)
	if err != nil {
		return err
	}

	var anns []dataset.Annotation
	if opts.AnnotationsPath != "" {
		if anns, err = gtex.ReadAnnotations(opts.AnnotationsPath); err != nil {
			return err
		}
	}

	subjects = gtex.CleanSubjects(subjects)
	samples = gtex.CleanSamples(samples, subjects)
	logger.Info("cleaned inputs",
		zap.Int("subjects", len(subjects)),
		zap.Int("samples", len(samples)),
		zap.Int("genes", len(genes)),
		zap.Int("tissues", len(tissueOrder)))

	gct, err := gtex.ReadGCT(opts.RNASeqPath)
	if err != nil {
		return err
	}
	logger.Info("read rnaseq",
		zap.Int("gct_genes", len(gct.Rows)),
		zap.Int("gct_samples", len(gct.SampleIDs)))

	cells := Aggregate(gct, samples, genes)
	logger.Info("aggregated medians", zap.Int("cells", len(cells)))

	tissues := orderedTissues(tissueOrder, cells)
	pairs := SeedCorrelations(tissues, cells, opts.CorrThreshold)
	logger.Info("seeded correlations",
		zap.Int("pairs", len(pairs)),
		zap.Float64("threshold", opts.CorrThreshold))

	store, err := dataset.Create(opts.SnapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteTissues(tissues); err != nil {
		return err
	}
	if err := store.WriteExpression(cells); err != nil {
		return err
	}
	if err := store.WriteGenes(genes); err != nil {
		return err
	}
	if err := store.WriteCorrelations(pairs); err != nil {
		return err
	}
	if err := store.WriteAnnotations(anns); err != nil {
		return err
	}
	logger.Info("wrote snapshot", zap.String("path", opts.SnapshotPath))
	return nil
}

// Aggregate computes median TPM by gene+tissue+sex from the raw GCT
// matrix and cleaned samples, applying the standing exclusions: genes in
// the chrY pseudoautosomal regions (ENSGR), genes absent from the gene
// map, tissues without both sexes (plus Breast, which is close enough to
// sex-specific to distort comparisons), per-tissue genes measured in only
// one sex, and per-tissue genes whose TPM is zero in every sample.
func Aggregate(gct *gtex.GCT, samples []gtex.Sample, genes []dataset.Gene) []dataset.ExpressionCell {
	bySample := make(map[string]gtex.Sample, len(samples))
	for _, s := range samples {
		bySample[s.SampID] = s
	}
	known := make(map[string]bool, len(genes))
	for _, g := range genes {
		known[g.ENSG] = true
	}

	type groupKey struct {
		ensg   string
		tissue string
		sex    string
	}
	groups := make(map[groupKey][]float64)
	tissueSexes := make(map[string]map[string]bool)

	for _, row := range gct.Rows {
		if strings.HasPrefix(row.ENSG, "ENSGR") || !known[row.ENSG] {
			continue
		}
		for i, sampID := range gct.SampleIDs {
			s, ok := bySample[sampID]
			if !ok || math.IsNaN(row.Values[i]) {
				continue
			}
			k := groupKey{row.ENSG, s.SMTSD, s.Sex}
			groups[k] = append(groups[k], row.Values[i])
			if tissueSexes[s.SMTSD] == nil {
				tissueSexes[s.SMTSD] = make(map[string]bool)
			}
			tissueSexes[s.SMTSD][s.Sex] = true
		}
	}

	// Tissues must have both sexes to be comparable; Breast is not
	// entirely sex-specific in the data, so it is removed by name.
	keepTissue := func(t string) bool {
		return len(tissueSexes[t]) >= 2 && !strings.HasPrefix(t, "Breast")
	}

	// Within a kept tissue a gene must be measured in both sexes, and
	// must not be all-zero across them.
	maxByGeneTissue := make(map[[2]string]float64)
	sexesByGeneTissue := make(map[[2]string]map[string]bool)
	for k, vals := range groups {
		gt := [2]string{k.ensg, k.tissue}
		if sexesByGeneTissue[gt] == nil {
			sexesByGeneTissue[gt] = make(map[string]bool)
		}
		sexesByGeneTissue[gt][k.sex] = true
		for _, v := range vals {
			if v > maxByGeneTissue[gt] {
				maxByGeneTissue[gt] = v
			}
		}
	}

	var cells []dataset.ExpressionCell
	for k, vals := range groups {
		gt := [2]string{k.ensg, k.tissue}
		if !keepTissue(k.tissue) || len(sexesByGeneTissue[gt]) < 2 || maxByGeneTissue[gt] == 0 {
			continue
		}
		cells = append(cells, dataset.ExpressionCell{
			ENSG:   k.ensg,
			Sex:    k.sex,
			Tissue: k.tissue,
			TPM:    median(vals),
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.ENSG != b.ENSG {
			return a.ENSG < b.ENSG
		}
		if a.Tissue != b.Tissue {
			return a.Tissue < b.Tissue
		}
		return a.Sex < b.Sex
	})
	return cells
}

// SeedCorrelations computes weighted correlations over sex-averaged
// profiles for all gene pairs and keeps those at or above the threshold.
// The resulting table only gates membership in the comparison universe;
// reported statistics are recomputed per run.
func SeedCorrelations(tissues []string, cells []dataset.ExpressionCell, threshold float64) []dataset.CorrelationPair {
	m := exfiles.NewMatrix(tissues, cells)
	ensgs := m.ENSGs()
	sort.Strings(ensgs)

	profiles := make(map[string][]float64, len(ensgs))
	for _, e := range ensgs {
		profiles[e] = m.Averaged(e)
	}

	var pairs []dataset.CorrelationPair
	for i := 0; i < len(ensgs); i++ {
		for j := i + 1; j < len(ensgs); j++ {
			rho := similarity.WeightedPearson(profiles[ensgs[i]], profiles[ensgs[j]])
			if math.IsNaN(rho) || math.Abs(rho) < threshold {
				continue
			}
			pairs = append(pairs, dataset.CorrelationPair{
				ENSGA: ensgs[i],
				ENSGB: ensgs[j],
				Rho:   rho,
			})
		}
	}
	return pairs
}

// orderedTissues restricts the reference ordering to tissues that
// survived aggregation, preserving reference order, and appends any
// observed tissue missing from the reference list at the end so no data
// is silently dropped from the snapshot.
func orderedTissues(ref []string, cells []dataset.ExpressionCell) []string {
	observed := make(map[string]bool)
	var observedOrder []string
	for _, c := range cells {
		if !observed[c.Tissue] {
			observed[c.Tissue] = true
			observedOrder = append(observedOrder, c.Tissue)
		}
	}
	sort.Strings(observedOrder)

	inRef := make(map[string]bool, len(ref))
	var out []string
	for _, t := range ref {
		inRef[t] = true
		if observed[t] {
			out = append(out, t)
		}
	}
	for _, t := range observedOrder {
		if !inRef[t] {
			out = append(out, t)
		}
	}
	return out
}

// median returns the median of vals. It mutates the slice order.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
