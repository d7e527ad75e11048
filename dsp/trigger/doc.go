// Package trigger locates rising-edge level crossings in 8-bit sample
// streams with sub-sample precision.
//
// Detection is a plain scan for the first sample above the trigger level
// whose predecessor was at or below it. The sub-sample estimate then comes
// from a weighted combination of first differences in a nine-sample window
// around the crossing:
//
//	localSlope = (slope[-1]+slope[+1]) + 0.25*(slope[-2]-slope[+2])
//	correction = -(level - f[idx]) / localSlope * 1.75
//
// The result is an [Event]: the integer crossing index plus the signed
// fractional correction, both in sample-interval units. The estimated
// crossing sits at Index - Correction on the sample grid.
//
// The 1.75 gain is a calibration constant for sinusoidal edges; see the
// comment on the constant before reusing the package on other shapes.
package trigger
