package gtex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unmtransinfo/expression-profiles/internal/dataset"
)

// Subject phenotype columns (GTEx_Analysis_*_SubjectPhenotypesDS.txt).
const (
	colSubjID  = "SUBJID"
	colSex     = "SEX"
	colAge     = "AGE"
	colDthHrdy = "DTHHRDY"
)

// Subject is one GTEx donor.
type Subject struct {
	SubjID string
	Sex    string // dataset.SexFemale or dataset.SexMale; empty if unknown
	Age    string
	Hardy  int // 4-point Hardy Scale death classification
	// HardyKnown is false when DTHHRDY is missing; such subjects are
	// removed by CleanSubjects along with Hardy > 2.
	HardyKnown bool
}

// ReadSubjects parses a subject phenotype file (TSV with header).
func ReadSubjects(path string) ([]Subject, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sc := scanLines(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("subjects file %s: empty", path)
	}
	idx := headerIndex(sc.Text())
	if err := requireColumns(idx, colSubjID, colSex, colDthHrdy); err != nil {
		return nil, fmt.Errorf("subjects file %s: %w", path, err)
	}

	var subjects []Subject
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) <= idx[colSubjID] {
			continue
		}
		s := Subject{
			SubjID: strings.TrimSpace(fields[idx[colSubjID]]),
			Sex:    sexLabel(fieldAt(fields, idx[colSex])),
		}
		if i, ok := idx[colAge]; ok {
			s.Age = fieldAt(fields, i)
		}
		if h, err := strconv.Atoi(fieldAt(fields, idx[colDthHrdy])); err == nil {
			s.Hardy = h
			s.HardyKnown = true
		}
		subjects = append(subjects, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read subjects %s: %w", path, err)
	}
	return subjects, nil
}

// CleanSubjects keeps only healthier donors: Hardy score <= 2 and known.
func CleanSubjects(subjects []Subject) []Subject {
	var out []Subject
	for _, s := range subjects {
		if s.HardyKnown && s.Hardy <= 2 {
			out = append(out, s)
		}
	}
	return out
}

// sexLabel maps the GTEx numeric sex code to a sex label: 2 is female,
// 1 is male, anything else unknown.
func sexLabel(code string) string {
	switch strings.TrimSpace(code) {
	case "2":
		return dataset.SexFemale
	case "1":
		return dataset.SexMale
	default:
		return ""
	}
}

func fieldAt(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
