// Package jitter measures the timing accuracy of a sub-sample rising-edge
// trigger across a range of trigger levels.
//
// For every trigger level the sweep captures the reference sine at several
// known sub-sample phase offsets, runs the trigger detector on each noisy
// capture, and compares the recovered crossing estimate against the true
// offset. The RMS of those timing errors, scaled to picoseconds, is the
// trigger jitter at that level:
//
//	jitter(level) = sqrt(mean((t - correction)^2)) * sampleInterval * 1e12
//
// Trials whose edge cannot be found or interpolated are counted as losses
// and excluded; a level where every trial is lost never enters the curve.
//
// The sweep advances one level per [Sweep.Step], wrapping at the top of the
// range, so an interactive driver can pull one step at a time indefinitely.
// [Sweep.Run] performs one bounded pass, and [Sweep.RunParallel] distributes
// the same pass over worker goroutines with identical results.
package jitter
