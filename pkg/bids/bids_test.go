package bids

import (
	"errors"
	"strings"
	"testing"

	"github.com/meglab/resample/pkg/events"
)

func TestReadEvents(t *testing.T) {
	tsv := "onset\tduration\tsample\ttrial_type\tvalue\n" +
		"0.01\t0\t10\tstim\t1\n" +
		"0.05\t0\t50\tstim\t2\n"

	rows, err := ReadEvents(strings.NewReader(tsv))
	if err != nil {
		t.Fatal(err)
	}
	want := []events.Row{{Sample: 10, Value: 1}, {Sample: 50, Value: 2}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, row := range rows {
		if row != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], row)
		}
	}
}

func TestReadEventsColumnOrderIrrelevant(t *testing.T) {
	tsv := "value\textra\tsample\n7\tx\t3\n9\ty\t8\n"
	rows, err := ReadEvents(strings.NewReader(tsv))
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Sample != 3 || rows[0].Value != 7 || rows[1].Sample != 8 || rows[1].Value != 9 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestReadEventsErrors(t *testing.T) {
	tests := []struct {
		name string
		tsv  string
	}{
		{"empty file", ""},
		{"missing sample column", "onset\tvalue\n0.1\t1\n"},
		{"missing value column", "sample\tonset\n10\t0.1\n"},
		{"non-integer sample", "sample\tvalue\n1.5\t1\n"},
		{"non-integer value", "sample\tvalue\n10\tabc\n"},
		{"short row", "sample\textra\tvalue\n10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEvents(strings.NewReader(tt.tsv))
			if !errors.Is(err, ErrDataFormat) {
				t.Errorf("expected ErrDataFormat, got %v", err)
			}
		})
	}
}

func TestWriteEvents(t *testing.T) {
	table := &events.Table{Rows: []events.TableRow{
		{Sample: 5, TrialType: "events_1", Value: 1},
		{Sample: 25, TrialType: "events_2", Value: 2},
	}}

	var sb strings.Builder
	if err := WriteEvents(&sb, table, 500); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "onset\tduration\tsample\ttrial_type\tvalue" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "0.01\t0\t5\tevents_1\t1" {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "0.05\t0\t25\tevents_2\t2" {
		t.Errorf("unexpected second row: %q", lines[2])
	}
}

func TestWriteEventsRoundTrip(t *testing.T) {
	table := &events.Table{Rows: []events.TableRow{
		{Sample: 100, TrialType: "events_1", Value: 4},
		{Sample: 220, TrialType: "events_2", Value: 8},
		{Sample: 310, TrialType: "events_1", Value: 4},
	}}

	var sb strings.Builder
	if err := WriteEvents(&sb, table, 250); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadEvents(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(table.Rows) {
		t.Fatalf("row count changed over a write/read cycle: %d != %d", len(rows), len(table.Rows))
	}
	for i, row := range rows {
		if row.Sample != table.Rows[i].Sample || row.Value != table.Rows[i].Value {
			t.Errorf("row %d: expected %+v, got %+v", i, table.Rows[i], row)
		}
	}
}

func TestReadChannelStatus(t *testing.T) {
	tsv := "name\ttype\tstatus\n" +
		"MEG 001\tmeg\tgood\n" +
		"MEG 002\tmeg\tbad\n" +
		"STI 014\tstim\tgood\n" +
		"EEG 001\teeg\tBad\n"

	bads, err := ReadChannelStatus(strings.NewReader(tsv))
	if err != nil {
		t.Fatal(err)
	}
	if len(bads) != 2 || bads[0] != "MEG 002" || bads[1] != "EEG 001" {
		t.Errorf("expected [MEG 002, EEG 001], got %v", bads)
	}
}

func TestReadChannelStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		tsv  string
	}{
		{"missing status column", "name\ttype\nMEG 001\tmeg\n"},
		{"unknown status", "name\tstatus\nMEG 001\tmaybe\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadChannelStatus(strings.NewReader(tt.tsv))
			if !errors.Is(err, ErrDataFormat) {
				t.Errorf("expected ErrDataFormat, got %v", err)
			}
		})
	}
}
