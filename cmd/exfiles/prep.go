package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unmtransinfo/expression-profiles/internal/prep"
)

func runPrep(args []string) int {
	fs := flag.NewFlagSet("prep", flag.ExitOnError)

	var opts prep.Options
	var verbose bool

	fs.StringVar(&opts.SubjectsPath, "i-subject", "", "Input subject phenotypes file (TSV)")
	fs.StringVar(&opts.SamplesPath, "i-sample", "", "Input sample attributes file (TSV)")
	fs.StringVar(&opts.TissuesPath, "i-tissue", "", "Input ordered tissue list (one per line)")
	fs.StringVar(&opts.RNASeqPath, "i-rnaseq", "", "Input RNA-seq TPM file (GCT, optionally gzipped)")
	fs.StringVar(&opts.GeneMapPath, "i-gene", "", "Input gene ID map (TSV: ENSG, SYMBOL, NAME, UNIPROT)")
	fs.StringVar(&opts.AnnotationsPath, "i-annotation", "", "Input target annotations (TSV: UNIPROT, TDL, FAMILY; optional)")
	fs.StringVar(&opts.SnapshotPath, "o", viper.GetString("snapshot.path"), "Output snapshot (DuckDB file)")
	fs.StringVar(&opts.SnapshotPath, "output", viper.GetString("snapshot.path"), "Output snapshot (DuckDB file)")
	fs.Float64Var(&opts.CorrThreshold, "corr-threshold", 0.7, "Minimum |weighted correlation| for the correlations table")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Build the expression snapshot from raw GTEx files.

Reads subject phenotypes, sample attributes, the ordered tissue list,
the RNA-seq TPM matrix (GCT), and the gene ID map; removes unhealthy
donors, high-autolysis samples, pseudoautosomal genes, and sex-specific
tissues; aggregates median TPM by gene+tissue+sex; and writes the
DuckDB snapshot consumed by 'exfiles compare'.

Usage:
  exfiles prep [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  exfiles prep --i-subject GTEx_SubjectPhenotypesDS.txt \
    --i-sample GTEx_SampleAttributesDS.txt --i-tissue tissues.txt \
    --i-rnaseq GTEx_gene_tpm.gct.gz --i-gene genes.tsv \
    --i-annotation tcrd_targets.tsv -o exfiles.duckdb
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	required := map[string]string{
		"--i-subject": opts.SubjectsPath,
		"--i-sample":  opts.SamplesPath,
		"--i-tissue":  opts.TissuesPath,
		"--i-rnaseq":  opts.RNASeqPath,
		"--i-gene":    opts.GeneMapPath,
	}
	for name, val := range required {
		if val == "" {
			fmt.Fprintf(os.Stderr, "Error: %s is required\n\n", name)
			fs.Usage()
			return ExitUsage
		}
	}
	if opts.SnapshotPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -o is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	logger, _ := zap.NewDevelopment()
	if !verbose {
		logger = zap.NewNop()
	}

	if err := prep.Run(opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Snapshot written to %s\n", opts.SnapshotPath)
	return ExitSuccess
}
