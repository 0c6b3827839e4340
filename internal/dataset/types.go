// Package dataset provides access to the prepared GTEx expression snapshot.
// The snapshot is a DuckDB database holding the tissue list, median TPM
// expression values, gene metadata, gene-gene correlation pairs, and
// external target annotations.
package dataset

// Sex labels used throughout the snapshot.
const (
	SexFemale = "F"
	SexMale   = "M"
)

// Gene holds metadata for one gene.
type Gene struct {
	ENSG    string
	Symbol  string
	Name    string
	Uniprot string

	// Enrichment from the annotations table; empty when unmatched.
	TDL    string
	Family string
}

// ExpressionCell is one long-form median TPM observation.
type ExpressionCell struct {
	ENSG   string
	Sex    string
	Tissue string
	TPM    float64
}

// CorrelationPair is a precomputed gene-gene correlation. It is used only
// to restrict the gene universe to genes with at least one known
// relationship; reported statistics are always recomputed from profiles.
type CorrelationPair struct {
	ENSGA string
	ENSGB string
	Rho   float64
}

// Annotation is one external enrichment record keyed by UniProt accession.
type Annotation struct {
	Uniprot string
	TDL     string
	Family  string
}

// Tables bundles the raw snapshot contents. All slices preserve snapshot
// order; the filter pipeline narrows them without reordering.
type Tables struct {
	Tissues      []string
	Expression   []ExpressionCell
	Genes        []Gene
	Correlations []CorrelationPair
	Annotations  []Annotation
}
