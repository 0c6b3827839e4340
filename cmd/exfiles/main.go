// Package main provides the exfiles command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("exfiles version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "compare":
		return runCompare(args[1:])
	case "prep":
		return runPrep(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `exfiles - GTEx expression profile comparison (SABV)

Usage:
  exfiles [options] <command> [arguments]

Commands:
  compare     Compare a query gene's expression profile against a gene family
  prep        Build the expression snapshot from raw GTEx files
  config      Manage exfiles configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Build the snapshot (one-time setup)
  exfiles prep --i-subject subjects.txt --i-sample samples.txt \
    --i-tissue tissues.txt --i-rnaseq gene_tpm.gct.gz --i-gene genes.tsv \
    -o exfiles.duckdb

  # Compare OPRK1 against the adenylate cyclase family
  exfiles compare --db exfiles.duckdb --gene OPRK1 --pattern '^ADCY[0-9]'

For more information on a command, use:
  exfiles <command> --help
`)
}

// initConfig loads ~/.exfiles.yaml if present and sets defaults.
// A missing config file is not an error.
func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetDefault("snapshot.path", filepath.Join(home, ".exfiles", "exfiles.duckdb"))
	viper.SetDefault("report.log_transform", true)
	viper.SetDefault("report.workers", 0)

	viper.SetConfigFile(filepath.Join(home, ".exfiles.yaml"))
	_ = viper.ReadInConfig()
}
