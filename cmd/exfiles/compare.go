package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
	"github.com/unmtransinfo/expression-profiles/internal/exfiles"
	"github.com/unmtransinfo/expression-profiles/internal/report"
)

func runCompare(args []string) int {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)

	var (
		dbPath       string
		querySymbol  string
		pattern      string
		logTransform bool
		outDir       string
		metricsFile  string
		workers      int
		verbose      bool
	)

	fs.StringVar(&dbPath, "db", viper.GetString("snapshot.path"), "Expression snapshot (DuckDB file)")
	fs.StringVar(&querySymbol, "gene", "", "Query gene symbol (exact match)")
	fs.StringVar(&pattern, "pattern", "", "Regular expression selecting comparison gene symbols")
	fs.BoolVar(&logTransform, "log", viper.GetBool("report.log_transform"), "log10(1+x)-transform chart values")
	fs.StringVar(&outDir, "out-dir", ".", "Directory for chart PNG output")
	fs.StringVar(&metricsFile, "o", "", "Metrics output file (default: stdout)")
	fs.StringVar(&metricsFile, "output", "", "Metrics output file (default: stdout)")
	fs.IntVar(&workers, "workers", viper.GetInt("report.workers"), "Comparison workers (0 = NumCPU)")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Compare a query gene's tissue expression profile, by sex, against all
genes whose symbol matches a pattern. Writes one chart per category
(female, male, averaged) plus a tab-delimited metrics report with the
weighted correlation and Ruzicka similarity for each comparison gene.

Usage:
  exfiles compare [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  exfiles compare --gene OPRK1 --pattern '^ADCY[0-9]'
  exfiles compare --db exfiles.duckdb --gene OPRM1 --pattern '^OPR' --log=false
  exfiles compare --gene OPRK1 --pattern '^ADCY[0-9]' -o metrics.tsv --out-dir charts/
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if querySymbol == "" || pattern == "" {
		fmt.Fprintf(os.Stderr, "Error: --gene and --pattern are required\n\n")
		fs.Usage()
		return ExitUsage
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid pattern: %v\n", err)
		return ExitUsage
	}

	logger := zap.NewNop()
	if verbose {
		logger, _ = zap.NewDevelopment()
	}

	store, err := dataset.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer store.Close()

	raw, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return ExitError
	}

	data := exfiles.Build(raw, logger)

	builder := report.NewBuilder(data)
	builder.SetLogger(logger)
	builder.LogTransform = logTransform
	builder.Workers = workers

	r, err := builder.Build(querySymbol, re)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	// Metrics report
	var out *os.File
	if metricsFile == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(metricsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	mw := report.NewMetricsWriter(out)
	if err := mw.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}
	if err := mw.WriteReport(r); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
		return ExitError
	}
	if err := mw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}

	// Charts, one per category
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		return ExitError
	}
	for i := range r.Categories {
		cr := &r.Categories[i]
		name := fmt.Sprintf("exfiles_%s_%s.png", sanitize(r.Query.Symbol), cr.Category)
		path := filepath.Join(outDir, name)

		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating chart file: %v\n", err)
			return ExitError
		}
		if err := report.RenderPNG(r, cr, f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error rendering chart %s: %v\n", name, err)
			return ExitError
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing chart file: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	}

	return ExitSuccess
}

// sanitize makes a gene symbol safe for use in a filename.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, s)
}
