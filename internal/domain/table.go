package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ResultLimit is the number of rows returned to callers.
const ResultLimit = 5

// Table is an opaque tabular result: ordered columns and rows of scalar cells.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Head returns the first n rows in producer order. The column slice is shared.
func (t Table) Head(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// MarshalJSON renders the table as an array of flat objects keyed by column
// name, keys in column order. Non-finite floats become null. Duplicate column
// names and nested arrays or objects produce a *SerializationError.
func (t Table) MarshalJSON() ([]byte, error) {
	keys := make([][]byte, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := seen[c]; dup {
			return nil, &SerializationError{Row: -1, Column: c, Reason: "columns must be unique"}
		}
		seen[c] = struct{}{}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, &SerializationError{Row: -1, Column: c, Reason: err.Error()}
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, &SerializationError{
				Row:    r,
				Reason: fmt.Sprintf("%d values for %d columns", len(row), len(t.Columns)),
			}
		}
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, cell := range row {
			if c > 0 {
				buf.WriteByte(',')
			}
			v, err := marshalCell(cell)
			if err != nil {
				return nil, &SerializationError{Row: r, Column: t.Columns[c], Reason: err.Error()}
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCell(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return []byte("null"), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return []byte("null"), nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return []byte("null"), nil
		}
	case json.Number, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
	default:
		return nil, fmt.Errorf("unsupported cell type %T", v)
	}
	return json.Marshal(v)
}

// splitTable mirrors the pandas orient="split" JSON layout. Index is ignored.
type splitTable struct {
	Columns []string          `json:"columns"`
	Data    []json.RawMessage `json:"data"`
}

// DecodeSplitTable parses a pandas orient="split" document into a Table.
// Numbers keep their original text so re-encoding does not change them.
func DecodeSplitTable(data []byte) (Table, error) {
	var st splitTable
	if err := json.Unmarshal(data, &st); err != nil {
		return Table{}, fmt.Errorf("decode result table: %w", err)
	}
	if st.Columns == nil {
		return Table{}, fmt.Errorf("decode result table: missing columns")
	}

	rows := make([][]any, 0, len(st.Data))
	for i, raw := range st.Data {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var row []any
		if err := dec.Decode(&row); err != nil {
			return Table{}, fmt.Errorf("decode result row %d: %w", i, err)
		}
		if len(row) != len(st.Columns) {
			return Table{}, fmt.Errorf("decode result row %d: %d values for %d columns", i, len(row), len(st.Columns))
		}
		rows = append(rows, row)
	}
	return Table{Columns: st.Columns, Rows: rows}, nil
}
