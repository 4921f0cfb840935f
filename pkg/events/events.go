// Package events converts external event annotation tables into the
// triplet matrix the resampler consumes, and converts rescaled triplets back
// into a labeled annotation table for persistence. Row order is preserved
// end to end: the matrix keeps the input table's order, the emitted table
// keeps the matrix's order, and trial-type labels are assigned by first
// appearance of each distinct value, never by value magnitude.
package events

import (
	"errors"
	"fmt"
)

// ErrEmptyResult reports an attempt to emit an annotation table from zero
// events. An empty table cannot be persisted as meaningful event data.
var ErrEmptyResult = errors.New("empty event table")

// Row is one row of an external annotation table. Sample is relative to the
// recording's own start.
type Row struct {
	Sample int64
	Value  int64
}

// Triplet is the canonical 3-column event form consumed and produced by the
// resampler. Sample is absolute (recording FirstSample + row offset). Prior
// carries the trigger-channel value preceding the event and is always zero
// for table-sourced events.
type Triplet struct {
	Sample int64
	Prior  int64
	Value  int64
}

// Matrix is an ordered sequence of triplets, one per annotation.
type Matrix []Triplet

// Ingest converts annotation rows into a matrix, offsetting each sample by
// the recording's first sample. Rows are neither deduplicated nor reordered.
func Ingest(rows []Row, firstSample int64) Matrix {
	m := make(Matrix, len(rows))
	for i, r := range rows {
		m[i] = Triplet{Sample: firstSample + r.Sample, Prior: 0, Value: r.Value}
	}
	return m
}

// TrialTypes maps synthetic labels (events_1, events_2, ...) to the distinct
// event values they represent. Labels are assigned in order of first
// appearance, so the mapping is deterministic for a given matrix.
type TrialTypes struct {
	order  []int64
	labels map[int64]string
}

// Label resolves the trial-type label for a value.
func (t *TrialTypes) Label(value int64) (string, bool) {
	label, ok := t.labels[value]
	return label, ok
}

// Value resolves the event value a label stands for.
func (t *TrialTypes) Value(label string) (int64, bool) {
	for i, v := range t.order {
		if fmt.Sprintf("events_%d", i+1) == label {
			return v, true
		}
	}
	return 0, false
}

// Labels returns every label in assignment order.
func (t *TrialTypes) Labels() []string {
	labels := make([]string, len(t.order))
	for i := range t.order {
		labels[i] = fmt.Sprintf("events_%d", i+1)
	}
	return labels
}

// Len returns the number of distinct event values.
func (t *TrialTypes) Len() int { return len(t.order) }

// TableRow is one emitted annotation row.
type TableRow struct {
	Sample    int64
	TrialType string
	Value     int64
}

// Table is the annotation table produced after resampling, one row per
// triplet in the source matrix.
type Table struct {
	Rows []TableRow
}

// Emit builds the trial-type map and the output annotation table from a
// rescaled matrix. The table has exactly one row per triplet. An empty
// matrix is rejected with ErrEmptyResult.
func Emit(m Matrix) (*Table, *TrialTypes, error) {
	if len(m) == 0 {
		return nil, nil, fmt.Errorf("cannot persist an annotation table with no events: %w", ErrEmptyResult)
	}

	types := &TrialTypes{labels: make(map[int64]string)}
	for _, tr := range m {
		if _, seen := types.labels[tr.Value]; !seen {
			types.order = append(types.order, tr.Value)
			types.labels[tr.Value] = fmt.Sprintf("events_%d", len(types.order))
		}
	}

	table := &Table{Rows: make([]TableRow, len(m))}
	for i, tr := range m {
		table.Rows[i] = TableRow{
			Sample:    tr.Sample,
			TrialType: types.labels[tr.Value],
			Value:     tr.Value,
		}
	}
	return table, types, nil
}
