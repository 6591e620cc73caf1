// Package contacts reads contact exports and writes standardized phone lists.
package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"phone_standardizer/platform/apperr"
	"phone_standardizer/platform/sanitize"

	"golang.org/x/text/encoding"
)

// Record is one data row addressed by header name.
type Record struct {
	Line   int
	values []string
	index  map[string]int
}

// Get returns the value of column name, or "" when the column is absent
// from the header or the row is short.
func (r Record) Get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// Reader reads header-mapped records from delimited text.
type Reader struct {
	csv   *csv.Reader
	index map[string]int
	empty bool
}

// NewReader consumes the header row of r. An input without a header yields
// a Reader with no records. A repeated column name maps to its last column.
func NewReader(r io.Reader, delimiter rune) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Reader{csv: cr, index: map[string]int{}, empty: true}, nil
	}
	if err != nil {
		return nil, classify(err, "failed to read header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[sanitize.Field(name)] = i
	}

	return &Reader{csv: cr, index: index}, nil
}

// Has reports whether the header contains column name.
func (r *Reader) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Read returns the next record or io.EOF.
func (r *Reader) Read() (Record, error) {
	if r.empty {
		return Record{}, io.EOF
	}

	values, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, classify(err, "failed to read record")
	}

	line, _ := r.csv.FieldPos(0)
	return Record{Line: line, values: values, index: r.index}, nil
}

// DisplayName returns the first non-empty value among fields.
func DisplayName(rec Record, fields []string) string {
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = rec.Get(f)
	}
	return sanitize.FirstNonEmpty(values...)
}

// SplitPhones splits a phone field on commas and trims each entry.
// Only an empty field yields no entries. Blank entries are kept so they
// reach the normalizer and come out as the sentinel.
func SplitPhones(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func classify(err error, message string) error {
	var parseErr *csv.ParseError
	switch {
	case errors.Is(err, encoding.ErrInvalidUTF8):
		return apperr.Wrap(apperr.KindEncoding, message, err)
	case errors.As(err, &parseErr):
		return apperr.Wrap(apperr.KindMalformed, fmt.Sprintf("%s at line %d", message, parseErr.Line), err)
	default:
		return apperr.Wrap(apperr.KindIO, message, err)
	}
}
