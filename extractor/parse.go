package extractor

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/featsearch/model"
)

// csvSkipColumns are the leading file and kernel name columns.
const csvSkipColumns = 2

// ParseCSV parses a header row and a value row. The first line is the header,
// the last non-empty line holds the values of the kernel. The file and kernel
// name columns are skipped. Empty output yields no features.
func ParseCSV(out []byte) (model.Features, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: missing value row", ErrMalformedOutput)
	}

	header, values := rows[0], rows[len(rows)-1]
	if len(header) != len(values) {
		return nil, fmt.Errorf("%w: %d columns, %d values", ErrMalformedOutput, len(header), len(values))
	}
	if len(header) <= csvSkipColumns {
		return nil, nil
	}

	feats := make(model.Features, len(header)-csvSkipColumns)
	for i := csvSkipColumns; i < len(header); i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(values[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedOutput, header[i], err)
		}
		feats[strings.TrimSpace(header[i])] = v
	}
	return feats, nil
}

// ParseInstCount parses "name : count" lines. Other lines are ignored.
func ParseInstCount(out []byte) (model.Features, error) {
	feats := make(model.Features)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), " : ")
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedOutput, key, err)
		}
		feats[strings.TrimSpace(key)] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return feats, nil
}
