// Package models provides the data model for habitable.
//
// A Record is one decoded row of the Kepler objects-of-interest table. Values
// are kept as the raw text of the cell; numeric interpretation happens at the
// point of comparison through Float.
package models

import (
	"math"
	"strconv"
	"strings"
)

// Column names of the KOI cumulative table used by the habitability filter.
const (
	FieldDisposition = "koi_disposition"
	FieldInsolation  = "koi_insol"
	FieldRadius      = "koi_prad"
	FieldKeplerName  = "kepler_name"
)

// Record represents one row of the source table as a field-name to value mapping.
type Record struct {
	// Line is the 1-based line of the input on which the row starts
	Line int
	// Data holds the raw cell text keyed by header name
	Data map[string]string
}

// NewRecord creates a record for the given line with room for n fields.
func NewRecord(line, n int) *Record {
	return &Record{
		Line: line,
		Data: make(map[string]string, n),
	}
}

// Set stores the value of a field.
func (r *Record) Set(field, value string) {
	r.Data[field] = value
}

// Get returns the raw text of a field and whether it was present.
func (r *Record) Get(field string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Data[field]
	return v, ok
}

// String returns the raw text of a field, or "" when absent.
func (r *Record) String(field string) string {
	v, _ := r.Get(field)
	return v
}

// Float interprets a field as a finite floating-point number. Surrounding
// whitespace is ignored. Missing, empty, non-numeric, NaN and infinite values
// report ok == false.
func (r *Record) Float(field string) (float64, bool) {
	raw, ok := r.Get(field)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
