// Package signal defines the in-memory buffers for neurophysiological
// recordings: a continuous multi-channel time series and an ordered set of
// fixed-length epochs. Buffers carry their sampling rate and channel layout;
// resampling is the only operation that mutates them, and it always operates
// on a private copy obtained via Clone.
package signal

import (
	"fmt"
)

// Channel identifies one recorded channel. Bad marks channels flagged
// unusable by an external channel status table.
type Channel struct {
	Name string
	Bad  bool
}

// Continuous is a single unbroken multi-channel recording. Data is
// channel-major: Data[ch][sample]. FirstSample is the absolute index of
// Data[ch][0] relative to the recording-level origin.
type Continuous struct {
	Data        [][]float64
	SFreq       float64
	FirstSample int64
	Channels    []Channel
}

// NewContinuous builds a continuous buffer, validating that the channel
// descriptions match the data and that every channel has the same length.
func NewContinuous(data [][]float64, sfreq float64, firstSample int64, channels []Channel) (*Continuous, error) {
	if sfreq <= 0 {
		return nil, fmt.Errorf("sampling frequency must be positive, got %g", sfreq)
	}
	if len(data) != len(channels) {
		return nil, fmt.Errorf("got %d data channels but %d channel descriptions", len(data), len(channels))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("recording has no channels")
	}
	n := len(data[0])
	for i, ch := range data {
		if len(ch) != n {
			return nil, fmt.Errorf("channel %q has %d samples, expected %d", channels[i].Name, len(ch), n)
		}
	}
	return &Continuous{Data: data, SFreq: sfreq, FirstSample: firstSample, Channels: channels}, nil
}

// NSamples returns the number of samples per channel.
func (c *Continuous) NSamples() int {
	if len(c.Data) == 0 {
		return 0
	}
	return len(c.Data[0])
}

// NChannels returns the number of channels.
func (c *Continuous) NChannels() int { return len(c.Data) }

// Clone returns a deep copy. Resampling mutates its input, so callers hand
// the transform a clone and keep the original.
func (c *Continuous) Clone() *Continuous {
	data := make([][]float64, len(c.Data))
	for i, ch := range c.Data {
		data[i] = append([]float64(nil), ch...)
	}
	return &Continuous{
		Data:        data,
		SFreq:       c.SFreq,
		FirstSample: c.FirstSample,
		Channels:    append([]Channel(nil), c.Channels...),
	}
}

// SetBads flags the named channels as bad and returns any names that did not
// match a channel, for the caller to surface as a warning.
func (c *Continuous) SetBads(names []string) []string {
	return setBads(c.Channels, names)
}

// BadNames returns the names of channels currently flagged bad.
func (c *Continuous) BadNames() []string { return badNames(c.Channels) }

// Epochs is an ordered sequence of fixed-length segments sharing one channel
// layout and sampling rate. Data is epoch-major: Data[epoch][ch][sample].
type Epochs struct {
	Data     [][][]float64
	SFreq    float64
	Channels []Channel
}

// NewEpochs builds an epoched buffer, validating that every epoch has the
// shared channel count and that every channel in every epoch has the shared
// epoch length.
func NewEpochs(data [][][]float64, sfreq float64, channels []Channel) (*Epochs, error) {
	if sfreq <= 0 {
		return nil, fmt.Errorf("sampling frequency must be positive, got %g", sfreq)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no epochs")
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("recording has no channels")
	}
	n := -1
	for ei, epoch := range data {
		if len(epoch) != len(channels) {
			return nil, fmt.Errorf("epoch %d has %d channels, expected %d", ei, len(epoch), len(channels))
		}
		for ci, ch := range epoch {
			if n < 0 {
				n = len(ch)
			}
			if len(ch) != n {
				return nil, fmt.Errorf("epoch %d channel %q has %d samples, expected %d", ei, channels[ci].Name, len(ch), n)
			}
		}
	}
	return &Epochs{Data: data, SFreq: sfreq, Channels: channels}, nil
}

// NEpochs returns the number of epochs.
func (e *Epochs) NEpochs() int { return len(e.Data) }

// NChannels returns the number of channels shared by every epoch.
func (e *Epochs) NChannels() int { return len(e.Channels) }

// EpochLen returns the number of samples per channel in each epoch.
func (e *Epochs) EpochLen() int {
	if len(e.Data) == 0 || len(e.Data[0]) == 0 {
		return 0
	}
	return len(e.Data[0][0])
}

// Clone returns a deep copy.
func (e *Epochs) Clone() *Epochs {
	data := make([][][]float64, len(e.Data))
	for ei, epoch := range e.Data {
		data[ei] = make([][]float64, len(epoch))
		for ci, ch := range epoch {
			data[ei][ci] = append([]float64(nil), ch...)
		}
	}
	return &Epochs{Data: data, SFreq: e.SFreq, Channels: append([]Channel(nil), e.Channels...)}
}

// SetBads flags the named channels as bad and returns unmatched names.
func (e *Epochs) SetBads(names []string) []string {
	return setBads(e.Channels, names)
}

// BadNames returns the names of channels currently flagged bad.
func (e *Epochs) BadNames() []string { return badNames(e.Channels) }

func setBads(channels []Channel, names []string) []string {
	index := make(map[string]int, len(channels))
	for i, ch := range channels {
		index[ch.Name] = i
	}
	var unknown []string
	for _, name := range names {
		if i, ok := index[name]; ok {
			channels[i].Bad = true
		} else {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func badNames(channels []Channel) []string {
	var bads []string
	for _, ch := range channels {
		if ch.Bad {
			bads = append(bads, ch.Name)
		}
	}
	return bads
}
