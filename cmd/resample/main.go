package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/meglab/resample/pkg/bids"
	"github.com/meglab/resample/pkg/edfio"
	"github.com/meglab/resample/pkg/events"
	"github.com/meglab/resample/pkg/jobfile"
	"github.com/meglab/resample/pkg/report"
	"github.com/meglab/resample/pkg/resample"
	"github.com/meglab/resample/pkg/signal"
)

func main() {
	var (
		jobPath  = flag.String("job", "", "Path to the HCL job file (required)")
		outDir   = flag.String("out", "out_dir_resampling", "Output directory")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	if *jobPath == "" {
		logger.Error("Job file parameter is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(logger, *jobPath, *outDir); err != nil {
		logger.Error("Resampling failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, jobPath, outDir string) error {
	content, err := os.ReadFile(jobPath)
	if err != nil {
		return fmt.Errorf("reading job file: %w", err)
	}
	if !jobfile.IsJobFile(content) {
		return fmt.Errorf("%s does not look like an HCL job file", jobPath)
	}
	job, err := jobfile.Parse(content, filepath.Base(jobPath))
	if err != nil {
		return err
	}

	// Saving jointly resampled events without an events table is refused
	// up front, before any data is loaded.
	if job.Resample.SaveJointEvents && job.Events == nil {
		return fmt.Errorf("%w: cannot save an empty events file; either provide an events table or disable save_jointly_resampled_events",
			resample.ErrConfig)
	}

	params, err := job.Params()
	if err != nil {
		return err
	}
	r, err := resample.New(params)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	logger.Info("Loading recording", "path", job.Recording)
	recFile, err := os.Open(job.Recording)
	if err != nil {
		return fmt.Errorf("opening recording: %w", err)
	}
	defer recFile.Close()
	buf, err := edfio.Load(recFile)
	if err != nil {
		return err
	}
	logger.Info("Recording loaded",
		"channels", buf.NChannels(), "samples", buf.NSamples(), "sfreq", buf.SFreq)

	var diags []report.Diagnostic

	if job.Channels != nil {
		badDiags, err := applyChannelStatus(logger, buf, *job.Channels)
		if err != nil {
			return err
		}
		diags = append(diags, badDiags...)
	}

	var matrix events.Matrix
	if job.Events != nil && !job.Epoched {
		diags = append(diags, report.Warning("The events file provided must be BIDS compliant."))
		rows, err := readEvents(*job.Events)
		if err != nil {
			return err
		}
		matrix = events.Ingest(rows, buf.FirstSample)
		logger.Info("Events table loaded", "path", *job.Events, "events", len(matrix))
	}

	if job.Epoched {
		if err := runEpoched(logger, r, job, buf, outDir); err != nil {
			return err
		}
	} else {
		resampled, rescaled, resampleDiags, err := r.Continuous(buf.Clone(), matrix)
		if err != nil {
			return err
		}
		diags = append(diags, resampleDiags...)

		if err := storeRecording(resampled, outDir); err != nil {
			return err
		}
		logger.Info("Resampled recording written",
			"samples", resampled.NSamples(), "sfreq", resampled.SFreq)

		if params.WithEvents {
			if err := writeEventsTable(rescaled, resampled.SFreq, outDir); err != nil {
				return err
			}
			diags = append(diags, report.Info("Jointly resampled events are saved in events.tsv."))
		}
	}

	diags = append(diags, report.Success("Data was successfully resampled."))
	return writeProduct(diags, outDir)
}

// applyChannelStatus folds a channels.tsv status table into the buffer's bad
// flags, mirroring the upstream behavior of warning about the file contract
// and about unknown channel names.
func applyChannelStatus(logger *slog.Logger, buf *signal.Continuous, path string) ([]report.Diagnostic, error) {
	diags := []report.Diagnostic{report.Warning(
		"The channels file provided must be BIDS compliant and the column \"status\" must be present.")}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening channels table: %w", err)
	}
	defer f.Close()

	bads, err := bids.ReadChannelStatus(f)
	if err != nil {
		return nil, err
	}
	if unknown := buf.SetBads(bads); len(unknown) > 0 {
		msg := fmt.Sprintf("Channels marked bad but absent from the recording: %v.", unknown)
		logger.Warn(msg)
		diags = append(diags, report.Warning(msg))
	}
	logger.Info("Channel status applied", "bads", buf.BadNames())
	return diags, nil
}

func readEvents(path string) ([]events.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening events table: %w", err)
	}
	defer f.Close()
	return bids.ReadEvents(f)
}

// runEpoched slices the continuous recording into fixed-length epochs,
// resamples each with the epoch padding mode, and stores the concatenated
// result.
func runEpoched(logger *slog.Logger, r *resample.Resampler, job *jobfile.Job, buf *signal.Continuous, outDir string) error {
	epochLen := int(math.Round(*job.EpochLength * buf.SFreq))
	epochs, err := splitEpochs(buf, epochLen)
	if err != nil {
		return err
	}
	logger.Info("Recording segmented", "epochs", epochs.NEpochs(), "epoch_samples", epochLen)

	resampled, diags, err := r.Epochs(epochs)
	if err != nil {
		return err
	}
	joined := joinEpochs(resampled, buf.FirstSample)
	if err := storeRecording(joined, outDir); err != nil {
		return err
	}
	logger.Info("Resampled epochs written",
		"epochs", resampled.NEpochs(), "epoch_samples", resampled.EpochLen(), "sfreq", resampled.SFreq)

	diags = append(diags, report.Success("Data was successfully resampled."))
	return writeProduct(diags, outDir)
}

func splitEpochs(buf *signal.Continuous, epochLen int) (*signal.Epochs, error) {
	if epochLen < 1 {
		return nil, fmt.Errorf("%w: epoch length shorter than one sample", resample.ErrConfig)
	}
	n := buf.NSamples()
	nEpochs := n / epochLen
	if nEpochs == 0 {
		return nil, fmt.Errorf("%w: recording shorter than one epoch", resample.ErrConfig)
	}

	data := make([][][]float64, nEpochs)
	for ei := range data {
		data[ei] = make([][]float64, buf.NChannels())
		for ci := range data[ei] {
			lo := ei * epochLen
			data[ei][ci] = append([]float64(nil), buf.Data[ci][lo:lo+epochLen]...)
		}
	}
	return signal.NewEpochs(data, buf.SFreq, append([]signal.Channel(nil), buf.Channels...))
}

func joinEpochs(epochs *signal.Epochs, firstSample int64) *signal.Continuous {
	n := epochs.NEpochs() * epochs.EpochLen()
	data := make([][]float64, epochs.NChannels())
	for ci := range data {
		data[ci] = make([]float64, 0, n)
		for ei := 0; ei < epochs.NEpochs(); ei++ {
			data[ci] = append(data[ci], epochs.Data[ei][ci]...)
		}
	}
	return &signal.Continuous{
		Data:        data,
		SFreq:       epochs.SFreq,
		FirstSample: firstSample,
		Channels:    epochs.Channels,
	}
}

func storeRecording(buf *signal.Continuous, outDir string) error {
	path := filepath.Join(outDir, "meg.edf")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return edfio.Store(f, buf, edfio.Meta{
		RecordingID:       "resampled recording",
		PhysicalDimension: "uV",
	})
}

func writeEventsTable(matrix events.Matrix, sfreq float64, outDir string) error {
	table, _, err := events.Emit(matrix)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, "events.tsv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return bids.WriteEvents(f, table, sfreq)
}

func writeProduct(diags []report.Diagnostic, outDir string) error {
	path := filepath.Join(outDir, "product.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return report.WriteProduct(f, diags)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
