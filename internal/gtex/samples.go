package gtex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sample attribute columns (GTEx_Analysis_*_SampleAttributesDS.txt).
const (
	colSampID   = "SAMPID"
	colSmatsscr = "SMATSSCR"
	colSMTS     = "SMTS"
	colSMTSD    = "SMTSD"
)

var subjIDRe = regexp.MustCompile(`^([^-]+-[^-]+)-`)

// Sample is one GTEx tissue sample.
type Sample struct {
	SampID string
	SubjID string // first two hyphen-delimited fields of SAMPID
	SMTS   string // tissue type
	SMTSD  string // tissue sub-type (detailed), the working tissue label

	Autolysis      int // SMATSSCR autolysis score
	AutolysisKnown bool

	Sex string // joined from the subject table by CleanSamples
}

// ReadSamples parses a sample attribute file (TSV with header).
func ReadSamples(path string) ([]Sample, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sc := scanLines(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("samples file %s: empty", path)
	}
	idx := headerIndex(sc.Text())
	if err := requireColumns(idx, colSampID, colSmatsscr, colSMTS, colSMTSD); err != nil {
		return nil, fmt.Errorf("samples file %s: %w", path, err)
	}

	var samples []Sample
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		s := Sample{
			SampID: fieldAt(fields, idx[colSampID]),
			SMTS:   fieldAt(fields, idx[colSMTS]),
			SMTSD:  fieldAt(fields, idx[colSMTSD]),
		}
		if s.SampID == "" {
			continue
		}
		if m := subjIDRe.FindStringSubmatch(s.SampID); m != nil {
			s.SubjID = m[1]
		}
		if a, err := strconv.Atoi(fieldAt(fields, idx[colSmatsscr])); err == nil {
			s.Autolysis = a
			s.AutolysisKnown = true
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read samples %s: %w", path, err)
	}
	return samples, nil
}

// CleanSamples joins samples to cleaned subjects (inner join on SUBJID),
// removes samples with missing fields or a high autolysis score, and
// patches the blank SMTS label GTEx ships for some skin sub-tissues.
func CleanSamples(samples []Sample, subjects []Subject) []Sample {
	bySubj := make(map[string]Subject, len(subjects))
	for _, s := range subjects {
		bySubj[s.SubjID] = s
	}

	var out []Sample
	for _, s := range samples {
		subj, ok := bySubj[s.SubjID]
		if !ok || subj.Sex == "" {
			continue
		}
		if !s.AutolysisKnown || s.Autolysis >= 2 {
			continue
		}
		if s.SMTSD == "" {
			continue
		}
		if s.SMTS == "" && strings.HasPrefix(s.SMTSD, "Skin -") {
			s.SMTS = "Skin"
		}
		s.Sex = subj.Sex
		out = append(out, s)
	}
	return out
}
