package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Writer emits UTF-8 CSV restricted to a configured column subset.
// Fields the caller supplies but the subset omits are dropped; missing
// fields are written empty, mirroring how the retrieve output has
// always been shaped by the Properties setting.
type Writer struct {
	w       *csv.Writer
	columns []string
}

// NewWriter writes the header row and returns a Writer for the given
// column subset.
func NewWriter(w io.Writer, columns []string) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return &Writer{w: cw, columns: columns}, nil
}

// Write emits one row, selecting values by column name.
func (w *Writer) Write(values map[string]string) error {
	row := make([]string, len(w.columns))
	for i, col := range w.columns {
		row[i] = values[col]
	}
	return w.w.Write(row)
}

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
