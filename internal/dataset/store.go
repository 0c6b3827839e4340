package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the expression snapshot.
type Store struct {
	db   *sql.DB
	path string
}

// Create opens or creates a snapshot database at the given path and
// ensures the schema exists. Use an empty string for an in-memory
// database (tests, prep dry runs).
func Create(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Open opens an existing snapshot for reading. A missing snapshot file is
// fatal to the caller: there is no retry and no partial load.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dataset snapshot not found at %s (run 'exfiles prep' first)", path)
		}
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the snapshot tables if they don't exist.
func (s *Store) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tissues (
			name VARCHAR,
			ord INTEGER
		);

		CREATE TABLE IF NOT EXISTS expression (
			ensg VARCHAR,
			sex VARCHAR,
			tissue VARCHAR,
			tpm DOUBLE
		);

		CREATE TABLE IF NOT EXISTS genes (
			ensg VARCHAR,
			symbol VARCHAR,
			name VARCHAR,
			uniprot VARCHAR
		);

		CREATE TABLE IF NOT EXISTS correlations (
			ensg_a VARCHAR,
			ensg_b VARCHAR,
			rho DOUBLE
		);

		CREATE TABLE IF NOT EXISTS annotations (
			uniprot VARCHAR,
			tdl VARCHAR,
			family VARCHAR
		);

		CREATE INDEX IF NOT EXISTS idx_expression_gene ON expression(ensg, sex);
		CREATE INDEX IF NOT EXISTS idx_genes_symbol ON genes(symbol);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WriteTissues replaces the tissue list, preserving input order.
func (s *Store) WriteTissues(tissues []string) error {
	if _, err := s.db.Exec("DELETE FROM tissues"); err != nil {
		return fmt.Errorf("clear tissues: %w", err)
	}
	for i, name := range tissues {
		if _, err := s.db.Exec("INSERT INTO tissues (name, ord) VALUES (?, ?)", name, i); err != nil {
			return fmt.Errorf("insert tissue: %w", err)
		}
	}
	return nil
}

// WriteExpression appends expression cells.
func (s *Store) WriteExpression(cells []ExpressionCell) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO expression (ensg, sex, tissue, tpm) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	for _, c := range cells {
		if _, err := stmt.Exec(c.ENSG, c.Sex, c.Tissue, c.TPM); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert expression: %w", err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// WriteGenes appends gene metadata rows. An empty symbol is stored as NULL
// so the filter pipeline can drop it explicitly.
func (s *Store) WriteGenes(genes []Gene) error {
	for _, g := range genes {
		_, err := s.db.Exec(
			"INSERT INTO genes (ensg, symbol, name, uniprot) VALUES (?, ?, ?, ?)",
			g.ENSG, nullString(g.Symbol), nullString(g.Name), nullString(g.Uniprot))
		if err != nil {
			return fmt.Errorf("insert gene: %w", err)
		}
	}
	return nil
}

// WriteCorrelations appends correlation pairs.
func (s *Store) WriteCorrelations(pairs []CorrelationPair) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO correlations (ensg_a, ensg_b, rho) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	for _, p := range pairs {
		if _, err := stmt.Exec(p.ENSGA, p.ENSGB, p.Rho); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert correlation: %w", err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// WriteAnnotations appends external target annotations.
func (s *Store) WriteAnnotations(anns []Annotation) error {
	for _, a := range anns {
		_, err := s.db.Exec(
			"INSERT INTO annotations (uniprot, tdl, family) VALUES (?, ?, ?)",
			a.Uniprot, nullString(a.TDL), nullString(a.Family))
		if err != nil {
			return fmt.Errorf("insert annotation: %w", err)
		}
	}
	return nil
}

// nullString returns nil if s is empty, otherwise s.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
