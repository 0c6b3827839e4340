// Package gtex parses the raw GTEx input files consumed by the prep
// pipeline: subject phenotypes, sample attributes, the ordered tissue
// list, the RNA-seq GCT expression matrix, and the gene ID map.
package gtex

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// openMaybeGzip opens a file, transparently decompressing gzip input.
// Detection is by magic bytes, not extension.
func openMaybeGzip(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && n < 2 {
		// Tiny or empty file; hand it back uncompressed.
		if _, serr := file.Seek(0, 0); serr != nil {
			file.Close()
			return nil, fmt.Errorf("seek %s: %w", path, serr)
		}
		return file, nil
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("gzip reader %s: %w", path, err)
		}
		return &gzipReadCloser{gz: gz, file: file}, nil
	}
	return file, nil
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	g.gz.Close()
	return g.file.Close()
}

// headerIndex maps column names to their positions in a header line.
func headerIndex(header string) map[string]int {
	idx := make(map[string]int)
	for i, col := range strings.Split(header, "\t") {
		idx[strings.TrimSpace(col)] = i
	}
	return idx
}

// requireColumns checks that all named columns are present.
func requireColumns(idx map[string]int, cols ...string) error {
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			return fmt.Errorf("missing required column %q", c)
		}
	}
	return nil
}

// scanLines returns a line scanner sized for wide expression rows.
func scanLines(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	return sc
}
