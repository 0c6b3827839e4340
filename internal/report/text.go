package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// MetricsWriter writes per-gene similarity lines in tab-delimited format.
type MetricsWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewMetricsWriter creates a new tab-delimited metrics writer.
func NewMetricsWriter(w io.Writer) *MetricsWriter {
	return &MetricsWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Category",
			"ENSG",
			"Symbol",
			"wRho",
			"Ruzicka",
		},
	}
}

// WriteHeader writes the header line.
func (mw *MetricsWriter) WriteHeader() error {
	_, err := mw.w.WriteString(strings.Join(mw.columns, "\t") + "\n")
	return err
}

// WriteReport writes one line per comparison gene per category.
func (mw *MetricsWriter) WriteReport(r *Report) error {
	for _, cr := range r.Categories {
		for _, m := range cr.Metrics {
			fields := []string{
				string(cr.Category),
				m.Gene.ENSG,
				m.Gene.Symbol,
				formatMetric(m.Corr),
				formatMetric(m.Ruzicka),
			}
			if _, err := mw.w.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes buffered output.
func (mw *MetricsWriter) Flush() error {
	return mw.w.Flush()
}

// formatMetric formats a similarity value; NaN means "no signal" and is
// reported as NA rather than treated as an error.
func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.3f", v)
}
