// Package datafiles inspects the adjustment inputs on disk. It backs the
// validate command and is never used on the request path.
package datafiles

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// TableInfo summarizes a data file.
type TableInfo struct {
	Path    string
	Rows    int64
	Columns []string
}

// InspectYLT reads the CSV header and counts data rows. It returns an error
// listing any of the required columns the header lacks.
func InspectYLT(path string, required []string) (TableInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TableInfo{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return TableInfo{}, fmt.Errorf("%s: empty file", path)
		}
		return TableInfo{}, fmt.Errorf("%s: read header: %w", path, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	if missing := missingColumns(columns, required); len(missing) > 0 {
		return TableInfo{}, fmt.Errorf("%s: missing columns: %s", path, strings.Join(missing, ", "))
	}

	var rows int64
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return TableInfo{}, fmt.Errorf("%s: row %d: %w", path, rows+2, err)
		}
		rows++
	}

	return TableInfo{Path: path, Rows: rows, Columns: columns}, nil
}

// InspectParquet opens a parquet file and reports its row count and top-level columns.
func InspectParquet(path string) (TableInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TableInfo{}, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return TableInfo{}, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return TableInfo{}, fmt.Errorf("%s: open parquet: %w", path, err)
	}

	fields := pf.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}

	return TableInfo{Path: path, Rows: pf.NumRows(), Columns: columns}, nil
}

func missingColumns(have, want []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := set[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}
