package gtex

import (
	"fmt"
	"strings"
)

// ReadTissues parses the ordered reference tissue list: one ;-separated
// record per line, tissue label in the first field, in preferred display
// order. Blank lines and leading/trailing whitespace are ignored.
func ReadTissues(path string) ([]string, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var tissues []string
	sc := scanLines(r)
	for sc.Scan() {
		name := sc.Text()
		if i := strings.IndexByte(name, ';'); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tissues = append(tissues, name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tissues %s: %w", path, err)
	}
	if len(tissues) == 0 {
		return nil, fmt.Errorf("tissues file %s: no tissues", path)
	}
	return tissues, nil
}
