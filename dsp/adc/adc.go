// Package adc converts a fine-resolution reference waveform into the
// quantized, noisy sample stream an 8-bit digitizer would produce.
package adc

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-trigger/dsp/waveform"
)

// Errors returned by the converter.
var (
	ErrInvalidInterval = errors.New("adc: sample interval must be positive and finite")
	ErrNegativeNoise   = errors.New("adc: noise sigma must be >= 0")
	ErrOffsetRange     = errors.New("adc: offset fraction must be in [0, 1)")
	ErrCoarseTimestep  = errors.New("adc: waveform timestep must be at least 100x finer than the sample interval")
	ErrShortWaveform   = errors.New("adc: waveform shorter than one sample interval")
)

const (
	fullScale = 255 // maximum 8-bit count
	midScale  = 127 // count at zero amplitude; also the amplitude gain
)

// Converter samples a reference waveform at a coarse interval, maps the
// amplitude to 8-bit ADC counts and adds Gaussian noise.
type Converter struct {
	interval float64
	sigma    float64
	rng      *rand.Rand
}

// Option configures a Converter.
type Option func(*Converter) error

// WithNoiseSigma sets the additive Gaussian noise standard deviation in
// ADC counts. Zero disables noise entirely (no entropy is consumed).
func WithNoiseSigma(sigma float64) Option {
	return func(c *Converter) error {
		if sigma < 0 || math.IsNaN(sigma) {
			return ErrNegativeNoise
		}

		c.sigma = sigma

		return nil
	}
}

// WithRand sets the random source used for noise generation. Supplying a
// seeded source makes captures reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(c *Converter) error {
		c.rng = rng
		return nil
	}
}

// New creates a Converter for the given coarse sample interval in seconds.
// The default configuration is noise-free with a fixed-seed PCG source.
func New(sampleInterval float64, opts ...Option) (*Converter, error) {
	if sampleInterval <= 0 || math.IsNaN(sampleInterval) || math.IsInf(sampleInterval, 0) {
		return nil, ErrInvalidInterval
	}

	conv := &Converter{interval: sampleInterval}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(conv)
		if err != nil {
			return nil, err
		}
	}

	if conv.rng == nil {
		conv.rng = rand.New(rand.NewPCG(1, 0))
	}

	return conv, nil
}

// Interval returns the coarse sample interval in seconds.
func (c *Converter) Interval() float64 {
	return c.interval
}

// Capture is one acquisition of the reference waveform.
// Counts are integral and clamped to [0, 255]; a Capture is never mutated
// after creation.
type Capture struct {
	Counts   []int
	Interval float64

	// Offset is the true sub-sample phase offset this capture was taken at,
	// in sample-interval units. It exists so that a recovered trigger
	// estimate can be validated against ground truth; detection must never
	// read it.
	Offset float64
}

// Sample acquires the waveform starting at the given sub-sample offset,
// expressed as a fraction of one coarse sample interval in [0, 1).
//
// The fine waveform is decimated to the coarse rate, scaled to counts as
// amplitude*127 + 127, disturbed by N(0, sigma) per sample, clipped to
// [0, 255] and rounded to the nearest integer.
func (c *Converter) Sample(w *waveform.Waveform, offsetFrac float64) (*Capture, error) {
	if offsetFrac < 0 || offsetFrac >= 1 || math.IsNaN(offsetFrac) {
		return nil, ErrOffsetRange
	}

	step := int(math.Round(c.interval / w.Timestep))
	if step < 100 {
		return nil, ErrCoarseTimestep
	}

	start := int(math.Round(offsetFrac * float64(step)))
	if start >= len(w.Data) {
		return nil, ErrShortWaveform
	}

	n := (len(w.Data)-start-1)/step + 1

	picked := make([]float64, n)
	for i := range picked {
		picked[i] = w.Data[start+i*step]
	}

	// Gain stage: amplitude in [-1, 1] to a bipolar count around zero.
	scaled := make([]float64, n)
	vecmath.ScaleBlock(scaled, picked, midScale)

	counts := make([]int, n)

	for i, v := range scaled {
		v += midScale

		if c.sigma > 0 {
			v += c.rng.NormFloat64() * c.sigma
		}

		v = math.Min(fullScale, math.Max(0, v))
		counts[i] = int(math.Round(v))
	}

	return &Capture{Counts: counts, Interval: c.interval, Offset: offsetFrac}, nil
}
