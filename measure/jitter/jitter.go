package jitter

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-trigger/dsp/adc"
	"github.com/cwbudde/algo-trigger/dsp/trigger"
	"github.com/cwbudde/algo-trigger/dsp/waveform"
)

// Errors returned by configuration validation.
var (
	ErrInvalidFrequency  = errors.New("jitter: frequency must be positive")
	ErrInvalidSampleRate = errors.New("jitter: sample rate must be positive")
	ErrInvalidCycles     = errors.New("jitter: cycle count must be positive")
	ErrTimestepTooCoarse = errors.New("jitter: timestep must be at most 1/(100*sampleRate)")
	ErrNegativeNoise     = errors.New("jitter: noise sigma must be >= 0")
	ErrLevelRange        = errors.New("jitter: trigger levels must satisfy 0 <= min <= max <= 255")
	ErrNoTrials          = errors.New("jitter: trial offset count must be positive")
)

const defaultTrialOffsets = 10

// Config holds the simulation parameters for a jitter sweep.
type Config struct {
	Frequency  float64 // reference waveform frequency, Hz
	SampleRate float64 // ADC coarse sampling rate, Hz
	Cycles     int     // waveform cycles synthesized
	Timestep   float64 // fine simulation timestep, s; at most 1/(100*SampleRate)
	NoiseSigma float64 // Gaussian noise per sample, ADC counts

	MinLevel int // trigger-level sweep bounds, ADC counts
	MaxLevel int

	// TrialOffsets is the number of evenly spaced sub-sample phase offsets
	// trialled per level, spanning [0, 0.5). Zero selects the default of 10.
	TrialOffsets int

	// Seed feeds the per-level noise generators. A fixed seed makes the
	// whole jitter curve reproducible.
	Seed uint64
}

// DefaultConfig returns the reference simulation setup: a 100 MHz sine
// digitized at 1 GS/s with 1.5 counts of noise, swept from level 25 to 230.
func DefaultConfig() Config {
	return Config{
		Frequency:  100e6,
		SampleRate: 1e9,
		Cycles:     5,
		Timestep:   1e-11,
		NoiseSigma: 1.5,
		MinLevel:   25,
		MaxLevel:   230,
	}
}

// Validate checks the configuration. All failures here are fatal; nothing
// downstream revalidates.
func (c Config) Validate() error {
	if c.Frequency <= 0 || math.IsNaN(c.Frequency) || math.IsInf(c.Frequency, 0) {
		return ErrInvalidFrequency
	}

	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return ErrInvalidSampleRate
	}

	if c.Cycles <= 0 {
		return ErrInvalidCycles
	}

	if c.Timestep <= 0 || c.Timestep > 1/(100*c.SampleRate) {
		return ErrTimestepTooCoarse
	}

	if c.NoiseSigma < 0 || math.IsNaN(c.NoiseSigma) {
		return ErrNegativeNoise
	}

	if c.MinLevel < 0 || c.MinLevel > c.MaxLevel || c.MaxLevel > 255 {
		return ErrLevelRange
	}

	if c.TrialOffsets < 0 {
		return ErrNoTrials
	}

	return nil
}

// SampleInterval returns the coarse sample interval in seconds.
func (c Config) SampleInterval() float64 {
	return 1 / c.SampleRate
}

// Levels returns the number of trigger levels in the sweep range.
func (c Config) Levels() int {
	return c.MaxLevel - c.MinLevel + 1
}

func (c Config) trialOffsets() int {
	if c.TrialOffsets == 0 {
		return defaultTrialOffsets
	}

	return c.TrialOffsets
}

// Trial is one phase-offset measurement at a trigger level.
type Trial struct {
	Offset  float64      // true sub-sample offset the capture was taken at
	Capture *adc.Capture // the sampled waveform shown to the detector
	Event   trigger.Event
	Err     error // non-nil marks a trial loss; Event and the recovered error are zero

	// Error is the recovered timing error, Offset - Correction, in
	// sample-interval units.
	Error float64
}

// Step is the result of measuring one trigger level: the pull-based surface
// an external renderer consumes.
type Step struct {
	Level     int
	Trials    []Trial
	Successes int
	Losses    int

	// RMSps is the RMS timing error in picoseconds over the successful
	// trials. Only meaningful when Successes > 0.
	RMSps float64
}

// Sweep drives the sampler and trigger detector across trigger levels and
// accumulates the jitter curve. It is the only stateful component of the
// simulation; a Sweep is not safe for concurrent use, but every Step leaves
// it consistent, so an interactive driver may stop between calls and resume
// later.
type Sweep struct {
	cfg        Config
	wave       *waveform.Waveform
	pretrigger int
	level      int
	curve      *Curve
	skipped    map[int]int
}

// New creates a Sweep, synthesizing the reference waveform once up front.
func New(cfg Config) (*Sweep, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	sine := &waveform.Sine{Frequency: cfg.Frequency, Cycles: cfg.Cycles, Timestep: cfg.Timestep}

	wave, err := sine.Generate()
	if err != nil {
		return nil, fmt.Errorf("jitter: synthesize reference: %w", err)
	}

	samplesPerCycle := cfg.SampleRate / cfg.Frequency

	return &Sweep{
		cfg:        cfg,
		wave:       wave,
		pretrigger: int(math.Round(samplesPerCycle / 2)),
		level:      cfg.MinLevel,
		curve:      NewCurve(),
		skipped:    make(map[int]int),
	}, nil
}

// Config returns the sweep configuration.
func (s *Sweep) Config() Config {
	return s.cfg
}

// Pretrigger returns the guard count: edges in the first half cycle of a
// capture are ignored so the interpolation stencil has history.
func (s *Sweep) Pretrigger() int {
	return s.pretrigger
}

// Level returns the trigger level the next Step will measure.
func (s *Sweep) Level() int {
	return s.level
}

// SetLevel repositions the sweep, e.g. to restart a partial pass.
func (s *Sweep) SetLevel(level int) error {
	if level < s.cfg.MinLevel || level > s.cfg.MaxLevel {
		return ErrLevelRange
	}

	s.level = level

	return nil
}

// Curve returns the jitter curve accumulated so far. The curve only holds
// levels with at least one successful trial.
func (s *Sweep) Curve() *Curve {
	return s.curve
}

// Skipped returns how many trials have been lost at the given level, so
// callers can judge statistical confidence even for levels absent from the
// curve.
func (s *Sweep) Skipped(level int) int {
	return s.skipped[level]
}

// Step measures the current trigger level and advances to the next one,
// wrapping from MaxLevel back to MinLevel. One curve entry is written per
// call when at least one trial succeeds.
func (s *Sweep) Step() (*Step, error) {
	step, err := s.measure(s.level)
	if err != nil {
		return nil, err
	}

	s.record(step)

	s.level++
	if s.level > s.cfg.MaxLevel {
		s.level = s.cfg.MinLevel
	}

	return step, nil
}

// record folds a measured step into the curve and loss bookkeeping.
func (s *Sweep) record(step *Step) {
	s.skipped[step.Level] = step.Losses

	if step.Successes > 0 {
		s.curve.set(step.Level, Entry{
			RMSps:     step.RMSps,
			Successes: step.Successes,
			Losses:    step.Losses,
		})
	}
}

// measure runs all trial offsets at one level. It touches no Sweep state,
// so concurrent callers may measure distinct levels in parallel.
//
// The noise generator is derived from (Seed, level), making each level's
// result independent of execution order: serial sweeps, restarted sweeps
// and parallel runs all produce the same curve.
func (s *Sweep) measure(level int) (*Step, error) {
	rng := rand.New(rand.NewPCG(s.cfg.Seed, uint64(level)))

	conv, err := adc.New(s.cfg.SampleInterval(),
		adc.WithNoiseSigma(s.cfg.NoiseSigma),
		adc.WithRand(rng))
	if err != nil {
		return nil, fmt.Errorf("jitter: configure converter: %w", err)
	}

	offsets := s.cfg.trialOffsets()
	step := &Step{Level: level, Trials: make([]Trial, 0, offsets)}
	errSq := make([]float64, 0, offsets)

	for k := 0; k < offsets; k++ {
		offset := float64(k) / float64(2*offsets)

		capture, err := conv.Sample(s.wave, offset)
		if err != nil {
			return nil, fmt.Errorf("jitter: sample at offset %f: %w", offset, err)
		}

		tr := Trial{Offset: offset, Capture: capture}

		event, err := trigger.RisingEdge(capture.Counts, s.pretrigger, level)
		if err != nil {
			tr.Err = err
			step.Losses++
		} else {
			tr.Event = event
			tr.Error = offset - event.Correction
			errSq = append(errSq, tr.Error*tr.Error)
			step.Successes++
		}

		step.Trials = append(step.Trials, tr)
	}

	if step.Successes > 0 {
		step.RMSps = math.Sqrt(stat.Mean(errSq, nil)) * s.cfg.SampleInterval() * 1e12
	}

	return step, nil
}

// Run performs one full pass from MinLevel to MaxLevel and returns the
// curve. The sweep is left positioned at MinLevel, ready for another pass.
func (s *Sweep) Run() (*Curve, error) {
	s.level = s.cfg.MinLevel

	for i := 0; i < s.cfg.Levels(); i++ {
		_, err := s.Step()
		if err != nil {
			return nil, err
		}
	}

	return s.curve, nil
}
