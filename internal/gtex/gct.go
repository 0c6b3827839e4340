package gtex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GCTRow is one gene's expression across all samples.
type GCTRow struct {
	ENSG   string
	Values []float64 // aligned to GCT.SampleIDs; NaN for unparsable cells
}

// GCT holds an RNA-seq expression matrix in GCT format: two header lines
// ("#1.2" and row/column counts), then a header row of
// Name, Description, sample IDs..., then one row per gene.
type GCT struct {
	SampleIDs []string
	Rows      []GCTRow
}

// ReadGCT parses a (possibly gzipped) GCT expression file. Ensembl gene
// ID versions are stripped; the Description column is discarded.
func ReadGCT(path string) (*GCT, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sc := scanLines(r)

	// Version line ("#1.2") and dimensions line.
	if !sc.Scan() {
		return nil, fmt.Errorf("gct %s: empty", path)
	}
	if !strings.HasPrefix(sc.Text(), "#") {
		return nil, fmt.Errorf("gct %s: missing version line", path)
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("gct %s: missing dimensions line", path)
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("gct %s: missing column header", path)
	}
	header := strings.Split(sc.Text(), "\t")
	if len(header) < 3 || header[0] != "Name" {
		return nil, fmt.Errorf("gct %s: unexpected column header", path)
	}
	g := &GCT{SampleIDs: header[2:]}

	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		row := GCTRow{
			ENSG:   stripENSGVersion(strings.TrimSpace(fields[0])),
			Values: make([]float64, len(g.SampleIDs)),
		}
		for i := range g.SampleIDs {
			row.Values[i] = math.NaN()
			if 2+i < len(fields) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(fields[2+i]), 64); err == nil {
					row.Values[i] = v
				}
			}
		}
		g.Rows = append(g.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gct %s: %w", path, err)
	}
	return g, nil
}
