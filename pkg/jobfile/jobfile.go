// Package jobfile parses resampling job files written in HCL and normalizes
// their loosely typed values into the resampler's parameter set. Job files
// carry the same knobs the upstream pipeline passes as strings (npad and
// n_jobs admit the "auto" and "cuda" sentinels, stim picks arrive as a
// bracketed list), so the coercion to tagged values happens here, before the
// core is invoked.
package jobfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/meglab/resample/pkg/resample"
)

// Job is a parsed job file.
type Job struct {
	// Recording is the path of the EDF recording to resample.
	Recording string `hcl:"recording"`
	// Events optionally names an events.tsv annotation table.
	Events *string `hcl:"events,optional"`
	// Channels optionally names a channels.tsv status table.
	Channels *string `hcl:"channels,optional"`
	// Epoched marks the recording as pre-segmented epochs rather than a
	// continuous series.
	Epoched bool `hcl:"epoched,optional"`
	// EpochLength is the epoch duration in seconds, required when Epoched.
	EpochLength *float64 `hcl:"epoch_length,optional"`

	Resample Spec `hcl:"resample,block"`
}

// Spec is the resample block of a job file. String-typed fields mirror the
// upstream configuration surface and are coerced by Params.
type Spec struct {
	SFreq           float64 `hcl:"sfreq"`
	NPad            *string `hcl:"npad,optional"`
	Window          *string `hcl:"window,optional"`
	NJobs           *string `hcl:"n_jobs,optional"`
	StimPicks       *string `hcl:"stim_picks,optional"`
	RawPad          *string `hcl:"raw_pad,optional"`
	EpochPad        *string `hcl:"epoch_pad,optional"`
	SaveJointEvents bool    `hcl:"save_jointly_resampled_events,optional"`
}

// Parse decodes a job file.
func Parse(content []byte, filename string) (*Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse job file: %s", diags.Error())
	}

	var job Job
	if diags := gohcl.DecodeBody(file.Body, nil, &job); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode job file: %s", diags.Error())
	}

	if job.Recording == "" {
		return nil, fmt.Errorf("%w: job file must name a recording", resample.ErrConfig)
	}
	if job.Epoched && (job.EpochLength == nil || *job.EpochLength <= 0) {
		return nil, fmt.Errorf("%w: epoched jobs must set a positive epoch_length", resample.ErrConfig)
	}
	return &job, nil
}

// Params coerces the job's resample block into the core parameter set.
// Coercion failures are configuration errors.
func (j *Job) Params() (resample.Params, error) {
	p := resample.Params{
		SFreq:      j.Resample.SFreq,
		NPad:       resample.PadAuto,
		Jobs:       resample.CPUJobs(1),
		WithEvents: j.Resample.SaveJointEvents,
	}

	if j.Resample.NPad != nil {
		npad := strings.TrimSpace(*j.Resample.NPad)
		if npad != "auto" {
			n, err := strconv.Atoi(npad)
			if err != nil {
				return resample.Params{}, fmt.Errorf("%w: npad must be an integer or \"auto\", got %q", resample.ErrConfig, npad)
			}
			p.NPad = resample.PadSamples(n)
		}
	}

	if j.Resample.NJobs != nil {
		njobs := strings.TrimSpace(*j.Resample.NJobs)
		if njobs == "cuda" {
			p.Jobs = resample.GPUJobs
		} else {
			n, err := strconv.Atoi(njobs)
			if err != nil {
				return resample.Params{}, fmt.Errorf("%w: n_jobs must be an integer or \"cuda\", got %q", resample.ErrConfig, njobs)
			}
			p.Jobs = resample.CPUJobs(n)
		}
	}

	if j.Resample.StimPicks != nil {
		picks, err := parsePickList(*j.Resample.StimPicks)
		if err != nil {
			return resample.Params{}, err
		}
		p.StimPicks = picks
	}

	if j.Resample.Window != nil {
		p.Window = strings.TrimSpace(*j.Resample.Window)
	}
	if j.Resample.RawPad != nil {
		p.RawPad = resample.PadMode(strings.TrimSpace(*j.Resample.RawPad))
	}
	if j.Resample.EpochPad != nil {
		p.EpochPad = resample.PadMode(strings.TrimSpace(*j.Resample.EpochPad))
	}
	return p, nil
}

// parsePickList converts a bracketed pick list such as "[3, 4]" into channel
// indices. A bare comma-separated list is accepted too.
func parsePickList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var picks []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: stim pick %q is not an integer", resample.ErrConfig, strings.TrimSpace(part))
		}
		picks = append(picks, n)
	}
	return picks, nil
}

// IsJobFile reports whether the content parses as HCL, used to give early
// feedback on mistaken input files.
func IsJobFile(content []byte) bool {
	_, err := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return err == nil
}
