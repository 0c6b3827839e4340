package dataset

import (
	"database/sql"
	"fmt"
)

// Load reads all five snapshot tables. Downstream analysis assumes the
// tables are simultaneously present and mutually consistent, so any
// failure aborts the whole load.
func (s *Store) Load() (*Tables, error) {
	t := &Tables{}
	var err error

	if t.Tissues, err = s.loadTissues(); err != nil {
		return nil, err
	}
	if t.Expression, err = s.loadExpression(); err != nil {
		return nil, err
	}
	if t.Genes, err = s.loadGenes(); err != nil {
		return nil, err
	}
	if t.Correlations, err = s.loadCorrelations(); err != nil {
		return nil, err
	}
	if t.Annotations, err = s.loadAnnotations(); err != nil {
		return nil, err
	}
	return t, nil
}

// loadTissues returns the reference tissue list in preferred order.
func (s *Store) loadTissues() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM tissues ORDER BY ord")
	if err != nil {
		return nil, fmt.Errorf("query tissues: %w", err)
	}
	defer rows.Close()

	var tissues []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tissue: %w", err)
		}
		tissues = append(tissues, name)
	}
	return tissues, rows.Err()
}

func (s *Store) loadExpression() ([]ExpressionCell, error) {
	rows, err := s.db.Query("SELECT ensg, sex, tissue, tpm FROM expression")
	if err != nil {
		return nil, fmt.Errorf("query expression: %w", err)
	}
	defer rows.Close()

	var cells []ExpressionCell
	for rows.Next() {
		var c ExpressionCell
		if err := rows.Scan(&c.ENSG, &c.Sex, &c.Tissue, &c.TPM); err != nil {
			return nil, fmt.Errorf("scan expression: %w", err)
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

func (s *Store) loadGenes() ([]Gene, error) {
	rows, err := s.db.Query("SELECT ensg, symbol, name, uniprot FROM genes")
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	var genes []Gene
	for rows.Next() {
		var g Gene
		var symbol, name, uniprot sql.NullString
		if err := rows.Scan(&g.ENSG, &symbol, &name, &uniprot); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		g.Symbol = symbol.String
		g.Name = name.String
		g.Uniprot = uniprot.String
		genes = append(genes, g)
	}
	return genes, rows.Err()
}

func (s *Store) loadCorrelations() ([]CorrelationPair, error) {
	rows, err := s.db.Query("SELECT ensg_a, ensg_b, rho FROM correlations")
	if err != nil {
		return nil, fmt.Errorf("query correlations: %w", err)
	}
	defer rows.Close()

	var pairs []CorrelationPair
	for rows.Next() {
		var p CorrelationPair
		if err := rows.Scan(&p.ENSGA, &p.ENSGB, &p.Rho); err != nil {
			return nil, fmt.Errorf("scan correlation: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (s *Store) loadAnnotations() ([]Annotation, error) {
	rows, err := s.db.Query("SELECT uniprot, tdl, family FROM annotations")
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var anns []Annotation
	for rows.Next() {
		var a Annotation
		var tdl, family sql.NullString
		if err := rows.Scan(&a.Uniprot, &tdl, &family); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.TDL = tdl.String
		a.Family = family.String
		anns = append(anns, a)
	}
	return anns, rows.Err()
}
