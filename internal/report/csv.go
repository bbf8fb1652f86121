package report

import (
	"encoding/csv"
	"io"
)

// BOM is the UTF-8 byte order mark, for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter wraps csv.Writer for exporting entries as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteEntries converts a batch of entries to CSV rows and writes them.
func (w *CSVWriter) WriteEntries(entries []Entry) error {
	for i := range entries {
		values := entryToRow(&entries[i])
		record := make([]string, len(values))
		for j, v := range values {
			record[j] = cellString(v)
		}
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}
