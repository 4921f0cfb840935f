// Package bids reads and writes the tab-separated sidecar tables that
// accompany a recording: the event annotation table (events.tsv) and the
// channel status table (channels.tsv). Only the columns this pipeline needs
// are interpreted; everything else is carried over the parser and ignored.
package bids

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/meglab/resample/pkg/events"
)

// ErrDataFormat reports a malformed annotation table: a missing required
// column, or a row whose sample or value cell is not an integer.
var ErrDataFormat = errors.New("malformed annotation table")

// ReadEvents parses an events table. The header must contain `sample`
// (integer sample offset relative to the recording start) and `value`
// (integer event code); additional columns are ignored. Row order is
// preserved.
func ReadEvents(r io.Reader) ([]events.Row, error) {
	rec := newTSVReader(r)

	header, err := rec.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: events table is empty", ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("reading events header: %w", err)
	}

	sampleCol, valueCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "sample":
			sampleCol = i
		case "value":
			valueCol = i
		}
	}
	if sampleCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("%w: events table must have 'sample' and 'value' columns, got %v", ErrDataFormat, header)
	}

	var rows []events.Row
	for line := 2; ; line++ {
		record, err := rec.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading events row %d: %w", line, err)
		}
		if sampleCol >= len(record) || valueCol >= len(record) {
			return nil, fmt.Errorf("%w: row %d is missing cells", ErrDataFormat, line)
		}

		sample, err := strconv.ParseInt(strings.TrimSpace(record[sampleCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d sample %q is not an integer", ErrDataFormat, line, record[sampleCol])
		}
		value, err := strconv.ParseInt(strings.TrimSpace(record[valueCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d value %q is not an integer", ErrDataFormat, line, record[valueCol])
		}
		rows = append(rows, events.Row{Sample: sample, Value: value})
	}
	return rows, nil
}

// WriteEvents writes the resampled annotation table as events.tsv. Onsets
// are derived from the resampled sample index and rate.
func WriteEvents(w io.Writer, t *events.Table, sfreq float64) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{"onset", "duration", "sample", "trial_type", "value"}); err != nil {
		return err
	}
	for _, row := range t.Rows {
		onset := float64(row.Sample) / sfreq
		record := []string{
			strconv.FormatFloat(onset, 'f', -1, 64),
			"0",
			strconv.FormatInt(row.Sample, 10),
			row.TrialType,
			strconv.FormatInt(row.Value, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadChannelStatus parses a channel table and returns the names of channels
// whose status column marks them bad. The table must have `name` and
// `status` columns; status values are `good` or `bad`.
func ReadChannelStatus(r io.Reader) ([]string, error) {
	rec := newTSVReader(r)

	header, err := rec.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: channels table is empty", ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("reading channels header: %w", err)
	}

	nameCol, statusCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "name":
			nameCol = i
		case "status":
			statusCol = i
		}
	}
	if nameCol < 0 || statusCol < 0 {
		return nil, fmt.Errorf("%w: channels table must have 'name' and 'status' columns, got %v", ErrDataFormat, header)
	}

	var bads []string
	for line := 2; ; line++ {
		record, err := rec.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading channels row %d: %w", line, err)
		}
		if nameCol >= len(record) || statusCol >= len(record) {
			return nil, fmt.Errorf("%w: row %d is missing cells", ErrDataFormat, line)
		}

		switch strings.ToLower(strings.TrimSpace(record[statusCol])) {
		case "bad":
			bads = append(bads, strings.TrimSpace(record[nameCol]))
		case "good":
		default:
			return nil, fmt.Errorf("%w: row %d status %q is neither 'good' nor 'bad'", ErrDataFormat, line, record[statusCol])
		}
	}
	return bads, nil
}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}
