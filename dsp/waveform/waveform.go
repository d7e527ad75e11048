// Package waveform synthesizes dense, noise-free reference signals for
// trigger simulation. The fine timestep is independent of (and much finer
// than) any later ADC sampling; the sampled view is produced by dsp/adc.
package waveform

import (
	"errors"
	"math"
)

// Errors returned by waveform generation.
var (
	ErrInvalidFrequency = errors.New("waveform: frequency must be positive")
	ErrInvalidCycles    = errors.New("waveform: cycle count must be positive")
	ErrInvalidTimestep  = errors.New("waveform: timestep must be positive and finite")
	ErrTimestepTooLarge = errors.New("waveform: timestep must resolve the waveform period")
)

// Sine describes a unit-amplitude sine reference signal.
type Sine struct {
	Frequency float64 // Hz
	Cycles    int     // number of full periods to synthesize
	Timestep  float64 // fine simulation timestep in seconds
}

// Validate checks that the Sine parameters are valid.
func (s *Sine) Validate() error {
	if s.Frequency <= 0 || math.IsNaN(s.Frequency) || math.IsInf(s.Frequency, 0) {
		return ErrInvalidFrequency
	}

	if s.Cycles <= 0 {
		return ErrInvalidCycles
	}

	if s.Timestep <= 0 || math.IsNaN(s.Timestep) || math.IsInf(s.Timestep, 0) {
		return ErrInvalidTimestep
	}

	if s.Timestep >= 1/s.Frequency {
		return ErrTimestepTooLarge
	}

	return nil
}

// Generate synthesizes Cycles/Frequency seconds of sine at the fine timestep.
//
// The phase argument is wrapped modulo 2π before evaluation so that accuracy
// does not degrade over long multi-cycle signals. The result has amplitude
// in [-1, 1] and is fully determined by the three parameters.
func (s *Sine) Generate() (*Waveform, error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	duration := float64(s.Cycles) / s.Frequency
	n := int(math.Round(duration / s.Timestep))

	omega := 2 * math.Pi * s.Frequency

	data := make([]float64, n)
	for i := range data {
		phase := math.Mod(omega*float64(i)*s.Timestep, 2*math.Pi)
		data[i] = math.Sin(phase)
	}

	return &Waveform{Data: data, Timestep: s.Timestep}, nil
}

// Waveform is a continuous reference signal at fine time resolution.
// It is immutable once generated.
type Waveform struct {
	Data     []float64
	Timestep float64
}

// Len returns the number of fine samples.
func (w *Waveform) Len() int {
	return len(w.Data)
}

// Duration returns the covered time span in seconds.
func (w *Waveform) Duration() float64 {
	return float64(len(w.Data)) * w.Timestep
}
