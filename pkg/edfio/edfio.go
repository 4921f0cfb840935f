// Package edfio loads continuous recordings from EDF files into signal
// buffers and stores resampled buffers back. Sample decoding and encoding is
// delegated to github.com/OpenPSG/edf; the loader additionally parses the
// header fields the library keeps private (per-signal sampling geometry and
// labels) directly from the fixed-layout EDF header.
package edfio

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/edf"

	"github.com/meglab/resample/pkg/signal"
)

// Meta is the header identification carried into a stored EDF file.
type Meta struct {
	PatientID   string
	RecordingID string
	StartTime   time.Time
	// PhysicalDimension labels the stored unit, e.g. "uV".
	PhysicalDimension string
}

type headerInfo struct {
	dataRecords    int
	recordDuration float64 // seconds
	labels         []string
	samplesPerRec  []int
}

// Load reads every signal of an EDF file into a continuous buffer. All
// signals must share one sampling rate; recordings mixing rates are not
// supported by this pipeline.
func Load(r io.ReadSeeker) (*signal.Continuous, error) {
	info, err := parseHeader(r)
	if err != nil {
		return nil, err
	}
	if info.dataRecords < 0 {
		return nil, fmt.Errorf("edf: unknown record count")
	}
	if len(info.labels) == 0 {
		return nil, fmt.Errorf("edf: file has no signals")
	}
	if info.recordDuration <= 0 {
		return nil, fmt.Errorf("edf: non-positive record duration")
	}

	spr := info.samplesPerRec[0]
	for i, s := range info.samplesPerRec {
		if s != spr {
			return nil, fmt.Errorf("edf: signal %q has %d samples per record, expected %d; mixed rates are not supported",
				info.labels[i], s, spr)
		}
	}
	sfreq := float64(spr) / info.recordDuration

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("edf: rewinding: %w", err)
	}
	reader, err := edf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("edf: opening: %w", err)
	}

	n := info.dataRecords * spr
	data := make([][]float64, len(info.labels))
	channels := make([]signal.Channel, len(info.labels))
	for i, label := range info.labels {
		sr, err := reader.Signal(i)
		if err != nil {
			return nil, fmt.Errorf("edf: signal %d: %w", i, err)
		}
		data[i] = make([]float64, n)
		if _, err := sr.Read(data[i]); err != nil && err != io.EOF {
			return nil, fmt.Errorf("edf: reading signal %q: %w", label, err)
		}
		channels[i] = signal.Channel{Name: label}
	}

	return signal.NewContinuous(data, sfreq, 0, channels)
}

// Store writes a continuous buffer as an EDF file with one-second data
// records. The sampling rate must be a whole number of samples per second;
// the last record is zero-padded to a full second. Physical calibration
// ranges are taken from the observed data.
func Store(w io.WriteSeeker, buf *signal.Continuous, meta Meta) error {
	spr := int(math.Round(buf.SFreq))
	if spr < 1 || math.Abs(buf.SFreq-float64(spr)) > 1e-9 {
		return fmt.Errorf("edf: cannot store non-integer rate %g Hz in one-second records", buf.SFreq)
	}

	signals := make([]edf.Signal, buf.NChannels())
	for i, ch := range buf.Channels {
		pmin, pmax := dataRange(buf.Data[i])
		signals[i] = edf.Signal{
			Label:             ch.Name,
			PhysicalDimension: meta.PhysicalDimension,
			PhysicalMin:       pmin,
			PhysicalMax:       pmax,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  spr,
		}
	}

	start := meta.StartTime
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	writer, err := edf.Create(w, edf.Header{
		Version:            edf.Version0,
		PatientID:          meta.PatientID,
		RecordingID:        meta.RecordingID,
		StartTime:          start,
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		return fmt.Errorf("edf: creating: %w", err)
	}

	n := buf.NSamples()
	records := (n + spr - 1) / spr
	for rec := 0; rec < records; rec++ {
		chunk := make([][]float64, buf.NChannels())
		for ci := range chunk {
			chunk[ci] = make([]float64, spr)
			lo := rec * spr
			hi := lo + spr
			if hi > n {
				hi = n
			}
			copy(chunk[ci], buf.Data[ci][lo:hi])
		}
		if err := writer.WriteRecord(chunk); err != nil {
			return fmt.Errorf("edf: writing record %d: %w", rec, err)
		}
	}
	return writer.Close()
}

// parseHeader reads the fixed-layout EDF header fields needed to size and
// label the signal buffers.
func parseHeader(r io.ReadSeeker) (*headerInfo, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("edf: seeking header: %w", err)
	}
	fixed := make([]byte, 256)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("edf: reading header: %w", err)
	}

	dataRecords, err := headerInt(fixed[236:244])
	if err != nil {
		return nil, fmt.Errorf("edf: parsing record count: %w", err)
	}
	duration, err := headerFloat(fixed[244:252])
	if err != nil {
		return nil, fmt.Errorf("edf: parsing record duration: %w", err)
	}
	signalCount, err := headerInt(fixed[252:256])
	if err != nil {
		return nil, fmt.Errorf("edf: parsing signal count: %w", err)
	}
	if signalCount < 0 {
		return nil, fmt.Errorf("edf: negative signal count")
	}

	info := &headerInfo{
		dataRecords:    dataRecords,
		recordDuration: duration,
		labels:         make([]string, signalCount),
		samplesPerRec:  make([]int, signalCount),
	}

	labels := make([]byte, 16*signalCount)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("edf: reading signal labels: %w", err)
	}
	for i := range info.labels {
		info.labels[i] = strings.TrimSpace(string(labels[i*16 : (i+1)*16]))
	}

	// Skip transducer type (80), physical dimension (8), physical min (8),
	// physical max (8), digital min (8) and digital max (8), prefiltering
	// (80) to land on samples-per-record.
	skip := int64(signalCount) * (80 + 8 + 8 + 8 + 8 + 8 + 80)
	if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("edf: seeking signal headers: %w", err)
	}
	sprBytes := make([]byte, 8*signalCount)
	if _, err := io.ReadFull(r, sprBytes); err != nil {
		return nil, fmt.Errorf("edf: reading samples per record: %w", err)
	}
	for i := range info.samplesPerRec {
		spr, err := headerInt(sprBytes[i*8 : (i+1)*8])
		if err != nil {
			return nil, fmt.Errorf("edf: parsing samples per record for signal %d: %w", i, err)
		}
		info.samplesPerRec[i] = spr
	}
	return info, nil
}

func headerInt(b []byte) (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

func headerFloat(b []byte) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}

func dataRange(x []float64) (pmin, pmax float64) {
	pmin, pmax = math.Inf(1), math.Inf(-1)
	for _, v := range x {
		pmin = math.Min(pmin, v)
		pmax = math.Max(pmax, v)
	}
	if pmin >= pmax {
		// Flat channels still need a non-degenerate calibration range.
		pmin, pmax = pmin-1, pmax+1
	}
	return pmin, pmax
}
