// Package snr estimates the signal-to-noise ratio of an ADC capture from
// its spectrum. It is a diagnostic companion to measure/jitter: the SNR a
// configured noise sigma actually produces bounds the timing accuracy the
// trigger can reach.
package snr

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-trigger/dsp/adc"
)

// Errors returned by spectral analysis.
var (
	ErrEmptyCapture    = errors.New("snr: capture has no samples")
	ErrCaptureTooShort = errors.New("snr: capture too short for spectral analysis")
	ErrInvalidRate     = errors.New("snr: sample rate must be positive and finite")
	ErrNoFundamental   = errors.New("snr: no fundamental component above DC")
)

// minSamples is the smallest capture that yields a usable spectrum.
const minSamples = 8

// Result holds the spectral estimate for one capture.
type Result struct {
	FundamentalBin  int     // spectrum bin of the strongest component
	FundamentalFreq float64 // its frequency in Hz
	SignalPower     float64 // power in the fundamental bin and its neighbours
	NoisePower      float64 // power in all remaining non-DC bins
	SNRdB           float64 // 10*log10(SignalPower/NoisePower); +Inf when noise-free
}

// Analyze estimates the SNR of a capture.
//
// The counts are DC-centred, zero-padded to a power of two and transformed;
// the strongest non-DC bin is taken as the fundamental, with one neighbour
// bin on each side attributed to it to absorb leakage from off-bin tones.
func Analyze(capture *adc.Capture) (Result, error) {
	if capture == nil || len(capture.Counts) == 0 {
		return Result{}, ErrEmptyCapture
	}

	if capture.Interval <= 0 {
		return Result{}, ErrInvalidRate
	}

	return AnalyzeCounts(capture.Counts, 1/capture.Interval)
}

// AnalyzeCounts estimates the SNR of a raw count sequence sampled at the
// given rate in Hz.
func AnalyzeCounts(counts []int, sampleRate float64) (Result, error) {
	if len(counts) == 0 {
		return Result{}, ErrEmptyCapture
	}

	if len(counts) < minSamples {
		return Result{}, ErrCaptureTooShort
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Result{}, ErrInvalidRate
	}

	mean := 0.0
	for _, c := range counts {
		mean += float64(c)
	}

	mean /= float64(len(counts))

	fftSize := nextPowerOf2(len(counts))

	in := make([]complex128, fftSize)
	for i, c := range counts {
		in[i] = complex(float64(c)-mean, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("snr: failed to create FFT plan: %w", err)
	}

	spectrum := make([]complex128, fftSize)
	if err := plan.Forward(spectrum, in); err != nil {
		return Result{}, fmt.Errorf("snr: forward FFT failed: %w", err)
	}

	bins := fftSize/2 + 1

	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := 0; i < bins; i++ {
		re[i] = real(spectrum[i])
		im[i] = imag(spectrum[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	peak := 1
	for k := 2; k < bins; k++ {
		if power[k] > power[peak] {
			peak = k
		}
	}

	if power[peak] == 0 {
		return Result{}, ErrNoFundamental
	}

	res := Result{
		FundamentalBin:  peak,
		FundamentalFreq: float64(peak) * sampleRate / float64(fftSize),
	}

	for k := 1; k < bins; k++ {
		if k >= peak-1 && k <= peak+1 {
			res.SignalPower += power[k]
		} else {
			res.NoisePower += power[k]
		}
	}

	if res.NoisePower == 0 {
		res.SNRdB = math.Inf(1)
	} else {
		res.SNRdB = 10 * math.Log10(res.SignalPower/res.NoisePower)
	}

	return res, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
