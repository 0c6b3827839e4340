package exfiles

import (
	"go.uber.org/zap"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

// Data holds the filtered, mutually consistent tables for an analysis run.
// Everything is read-only after Build.
type Data struct {
	Tissues []string
	Genes   []dataset.Gene
	Matrix  *Matrix

	bySymbol map[string]dataset.Gene
}

// Summary reports the post-filter table sizes, for diagnostic visibility
// only; nothing downstream consumes it.
type Summary struct {
	Tissues        int
	Genes          int
	UniqueENSGs    int
	UniqueSymbols  int
	UniqueUniprots int
}

// Build runs the filter/join pipeline over the raw snapshot tables. Each
// stage narrows the universe used by later stages and never adds to it,
// so re-running Build on already-filtered tables yields the same tables.
func Build(raw *dataset.Tables, logger *zap.Logger) *Data {
	if logger == nil {
		logger = zap.NewNop()
	}

	tissues := FilterTissues(raw.Tissues, raw.Expression)
	matrix := NewMatrix(tissues, raw.Expression)
	candidates := CandidateENSGs(matrix, raw.Correlations, raw.Genes)
	genes := FilterGenes(raw.Genes, candidates)
	genes = JoinAnnotations(genes, raw.Annotations)

	d := &Data{
		Tissues:  tissues,
		Genes:    genes,
		Matrix:   matrix,
		bySymbol: make(map[string]dataset.Gene, len(genes)),
	}
	for _, g := range genes {
		d.bySymbol[g.Symbol] = g
	}

	s := d.summary()
	logger.Info("filtered dataset",
		zap.Int("tissues", s.Tissues),
		zap.Int("genes", s.Genes),
		zap.Int("unique_ensg", s.UniqueENSGs),
		zap.Int("unique_symbol", s.UniqueSymbols),
		zap.Int("unique_uniprot", s.UniqueUniprots))
	return d
}

// GeneBySymbol returns the gene with the given symbol (exact match).
func (d *Data) GeneBySymbol(symbol string) (dataset.Gene, bool) {
	g, ok := d.bySymbol[symbol]
	return g, ok
}

func (d *Data) summary() Summary {
	ensgs := make(map[string]bool)
	symbols := make(map[string]bool)
	uniprots := make(map[string]bool)
	for _, g := range d.Genes {
		ensgs[g.ENSG] = true
		symbols[g.Symbol] = true
		if g.Uniprot != "" {
			uniprots[g.Uniprot] = true
		}
	}
	return Summary{
		Tissues:        len(d.Tissues),
		Genes:          len(d.Genes),
		UniqueENSGs:    len(ensgs),
		UniqueSymbols:  len(symbols),
		UniqueUniprots: len(uniprots),
	}
}

// FilterTissues restricts the reference tissue list to tissues that occur
// in the expression data, preserving the reference order. The result
// defines vector alignment and the chart x-axis for the rest of the run.
func FilterTissues(ref []string, cells []dataset.ExpressionCell) []string {
	present := make(map[string]bool)
	for _, c := range cells {
		present[c.Tissue] = true
	}
	var out []string
	for _, t := range ref {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// CandidateENSGs intersects the gene identifiers seen in the expression
// matrix, in any correlation pair, and in the gene metadata table.
func CandidateENSGs(m *Matrix, pairs []dataset.CorrelationPair, genes []dataset.Gene) map[string]bool {
	inExpr := make(map[string]bool)
	for _, ensg := range m.ENSGs() {
		inExpr[ensg] = true
	}

	inCorr := make(map[string]bool)
	for _, p := range pairs {
		inCorr[p.ENSGA] = true
		inCorr[p.ENSGB] = true
	}

	out := make(map[string]bool)
	for _, g := range genes {
		if inExpr[g.ENSG] && inCorr[g.ENSG] {
			out[g.ENSG] = true
		}
	}
	return out
}

// FilterGenes restricts the gene table to the candidate set, drops genes
// with a missing symbol, then deduplicates stably: first by ENSG keeping
// the first occurrence, then by symbol keeping the first occurrence. A
// gene that survives the ENSG pass but loses a symbol collision is
// silently dropped.
func FilterGenes(genes []dataset.Gene, candidates map[string]bool) []dataset.Gene {
	var kept []dataset.Gene
	seenENSG := make(map[string]bool)
	for _, g := range genes {
		if !candidates[g.ENSG] || g.Symbol == "" || seenENSG[g.ENSG] {
			continue
		}
		seenENSG[g.ENSG] = true
		kept = append(kept, g)
	}

	var out []dataset.Gene
	seenSymbol := make(map[string]bool)
	for _, g := range kept {
		if seenSymbol[g.Symbol] {
			continue
		}
		seenSymbol[g.Symbol] = true
		out = append(out, g)
	}
	return out
}

// JoinAnnotations left-joins external target annotations onto the gene
// table by UniProt accession. Unmatched genes survive with empty
// enrichment fields.
func JoinAnnotations(genes []dataset.Gene, anns []dataset.Annotation) []dataset.Gene {
	byUniprot := make(map[string]dataset.Annotation, len(anns))
	for _, a := range anns {
		if _, ok := byUniprot[a.Uniprot]; !ok {
			byUniprot[a.Uniprot] = a
		}
	}

	out := make([]dataset.Gene, len(genes))
	for i, g := range genes {
		if a, ok := byUniprot[g.Uniprot]; ok {
			g.TDL = a.TDL
			g.Family = a.Family
		}
		out[i] = g
	}
	return out
}
