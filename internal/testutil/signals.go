// Package testutil provides deterministic test signals shared by the
// trigger and measurement test suites.
package testutil

import "math"

// SineCounts generates n 8-bit ADC counts of a sine wave sampled at the
// given rate: round(amplitude*127*sin + 127), clipped to [0, 255].
func SineCounts(freqHz, sampleRate, amplitude float64, n int) []int {
	out := make([]int, n)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		v := amplitude*127*math.Sin(step*float64(i)) + 127
		v = math.Min(255, math.Max(0, v))
		out[i] = int(math.Round(v))
	}

	return out
}

// RampCounts generates n counts rising linearly from start by slope per
// sample, clipped to [0, 255].
func RampCounts(start, slope, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = min(255, max(0, start+i*slope))
	}

	return out
}

// ConstCounts generates n identical counts.
func ConstCounts(value, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = value
	}

	return out
}
