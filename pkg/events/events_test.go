package events

import (
	"errors"
	"testing"
)

func TestIngest(t *testing.T) {
	tests := []struct {
		name        string
		rows        []Row
		firstSample int64
		expected    Matrix
	}{
		{
			name:     "empty table",
			rows:     nil,
			expected: Matrix{},
		},
		{
			name:        "offsets applied in order",
			rows:        []Row{{Sample: 10, Value: 1}, {Sample: 50, Value: 2}},
			firstSample: 1000,
			expected: Matrix{
				{Sample: 1010, Prior: 0, Value: 1},
				{Sample: 1050, Prior: 0, Value: 2},
			},
		},
		{
			name:        "duplicates preserved",
			rows:        []Row{{Sample: 5, Value: 3}, {Sample: 5, Value: 3}},
			firstSample: 0,
			expected: Matrix{
				{Sample: 5, Prior: 0, Value: 3},
				{Sample: 5, Prior: 0, Value: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Ingest(tt.rows, tt.firstSample)
			if len(m) != len(tt.expected) {
				t.Fatalf("expected %d triplets, got %d", len(tt.expected), len(m))
			}
			for i, tr := range m {
				if tr != tt.expected[i] {
					t.Errorf("triplet %d: expected %+v, got %+v", i, tt.expected[i], tr)
				}
			}
		})
	}
}

func TestEmitLabelsFirstSeenOrder(t *testing.T) {
	// Labels follow first appearance, not numeric magnitude.
	m := Matrix{
		{Sample: 10, Value: 7},
		{Sample: 20, Value: 3},
		{Sample: 30, Value: 7},
		{Sample: 40, Value: 9},
	}

	table, types, err := Emit(m)
	if err != nil {
		t.Fatal(err)
	}

	if types.Len() != 3 {
		t.Fatalf("expected 3 distinct values, got %d", types.Len())
	}
	wantLabels := map[int64]string{7: "events_1", 3: "events_2", 9: "events_3"}
	for value, want := range wantLabels {
		got, ok := types.Label(value)
		if !ok || got != want {
			t.Errorf("value %d: expected label %q, got %q (ok=%v)", value, want, got, ok)
		}
	}

	if len(table.Rows) != len(m) {
		t.Fatalf("expected %d rows, got %d", len(m), len(table.Rows))
	}
	wantRows := []TableRow{
		{Sample: 10, TrialType: "events_1", Value: 7},
		{Sample: 20, TrialType: "events_2", Value: 3},
		{Sample: 30, TrialType: "events_1", Value: 7},
		{Sample: 40, TrialType: "events_3", Value: 9},
	}
	for i, row := range table.Rows {
		if row != wantRows[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, wantRows[i], row)
		}
	}
}

func TestEmitEmptyMatrix(t *testing.T) {
	_, _, err := Emit(Matrix{})
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", err)
	}
}

func TestRoundTripCountPreserved(t *testing.T) {
	rows := []Row{
		{Sample: 1, Value: 4},
		{Sample: 2, Value: 4},
		{Sample: 3, Value: 8},
		{Sample: 9, Value: 2},
	}
	table, _, err := Emit(Ingest(rows, 25))
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != len(rows) {
		t.Errorf("event count not preserved end-to-end: %d != %d", len(table.Rows), len(rows))
	}
}

func TestTrialTypesValueLookup(t *testing.T) {
	_, types, err := Emit(Matrix{{Sample: 1, Value: 12}, {Sample: 2, Value: 5}})
	if err != nil {
		t.Fatal(err)
	}

	v, ok := types.Value("events_2")
	if !ok || v != 5 {
		t.Errorf("expected events_2 -> 5, got %d (ok=%v)", v, ok)
	}
	if _, ok := types.Value("events_9"); ok {
		t.Errorf("lookup of unassigned label should fail")
	}
	labels := types.Labels()
	if len(labels) != 2 || labels[0] != "events_1" || labels[1] != "events_2" {
		t.Errorf("unexpected label order: %v", labels)
	}
}
