package contacts

import (
	"encoding/csv"
	"io"

	"phone_standardizer/platform/apperr"
)

// Output column names.
const (
	ColumnName   = "Name"
	ColumnNumber = "Handynummer"
	ColumnSigned = "Gezeichnet"
)

// Row is one standardized output line.
type Row struct {
	Name   string
	Number string
	Signed string
}

// Writer writes the standardized phone list.
type Writer struct {
	csv *csv.Writer
}

// NewWriter writes the header to w and returns a Writer for the rows.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write([]string{ColumnName, ColumnNumber, ColumnSigned}); err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "failed to write header", err)
	}
	return &Writer{csv: cw}, nil
}

// Write buffers one row.
func (w *Writer) Write(row Row) error {
	if err := w.csv.Write([]string{row.Name, row.Number, row.Signed}); err != nil {
		return apperr.Wrap(apperr.KindIO, "failed to write row", err)
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return apperr.Wrap(apperr.KindIO, "failed to flush output", err)
	}
	return nil
}
