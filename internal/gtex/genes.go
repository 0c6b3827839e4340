package gtex

import (
	"fmt"
	"strings"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

// Gene map columns (GTEx/Ensembl/HGNC TSV produced upstream).
const (
	colENSG    = "ENSG"
	colSymbol  = "SYMBOL"
	colName    = "NAME"
	colUniprot = "UNIPROT"
)

// ReadGeneMap parses the gene ID map: ENSG, HGNC symbol, display name,
// UniProt accession. Symbol, name, and UniProt may be empty; the filter
// pipeline decides what to do about that.
func ReadGeneMap(path string) ([]dataset.Gene, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sc := scanLines(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("gene map %s: empty", path)
	}
	idx := headerIndex(sc.Text())
	if err := requireColumns(idx, colENSG, colSymbol); err != nil {
		return nil, fmt.Errorf("gene map %s: %w", path, err)
	}

	var genes []dataset.Gene
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		g := dataset.Gene{
			ENSG:   stripENSGVersion(fieldAt(fields, idx[colENSG])),
			Symbol: fieldAt(fields, idx[colSymbol]),
		}
		if g.ENSG == "" {
			continue
		}
		if i, ok := idx[colName]; ok {
			g.Name = fieldAt(fields, i)
		}
		if i, ok := idx[colUniprot]; ok {
			g.Uniprot = fieldAt(fields, i)
		}
		genes = append(genes, g)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gene map %s: %w", path, err)
	}
	return genes, nil
}

// Annotation table columns (TCRD-style target annotations).
const (
	colAnnUniprot = "UNIPROT"
	colTDL        = "TDL"
	colFamily     = "FAMILY"
)

// ReadAnnotations parses the external target annotation table keyed by
// UniProt accession.
func ReadAnnotations(path string) ([]dataset.Annotation, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sc := scanLines(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("annotations file %s: empty", path)
	}
	idx := headerIndex(sc.Text())
	if err := requireColumns(idx, colAnnUniprot); err != nil {
		return nil, fmt.Errorf("annotations file %s: %w", path, err)
	}

	var anns []dataset.Annotation
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		a := dataset.Annotation{Uniprot: fieldAt(fields, idx[colAnnUniprot])}
		if a.Uniprot == "" {
			continue
		}
		if i, ok := idx[colTDL]; ok {
			a.TDL = fieldAt(fields, i)
		}
		if i, ok := idx[colFamily]; ok {
			a.Family = fieldAt(fields, i)
		}
		anns = append(anns, a)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read annotations %s: %w", path, err)
	}
	return anns, nil
}

// stripENSGVersion removes the trailing version from an Ensembl gene ID
// (ENSG00000141510.16 becomes ENSG00000141510), so IDs from different
// releases map onto each other.
func stripENSGVersion(ensg string) string {
	if i := strings.IndexByte(ensg, '.'); i >= 0 {
		return ensg[:i]
	}
	return ensg
}
