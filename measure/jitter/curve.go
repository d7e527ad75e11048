package jitter

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Entry is the jitter statistic for a single trigger level.
type Entry struct {
	RMSps     float64 // RMS timing error in picoseconds
	Successes int     // trials that produced an estimate
	Losses    int     // trials skipped (no edge, or edge uninterpolatable)
}

// Curve maps trigger levels to their measured RMS jitter. Levels without a
// single successful trial are absent, not zero.
type Curve struct {
	entries map[int]Entry
}

// NewCurve returns an empty curve.
func NewCurve() *Curve {
	return &Curve{entries: make(map[int]Entry)}
}

func (c *Curve) set(level int, e Entry) {
	c.entries[level] = e
}

// Len returns the number of populated levels.
func (c *Curve) Len() int {
	return len(c.entries)
}

// At returns the entry for a level and whether it is populated.
func (c *Curve) At(level int) (Entry, bool) {
	e, ok := c.entries[level]
	return e, ok
}

// Levels returns the populated trigger levels in ascending order.
func (c *Curve) Levels() []int {
	levels := make([]int, 0, len(c.entries))
	for level := range c.entries {
		levels = append(levels, level)
	}

	sort.Ints(levels)

	return levels
}

// Average returns the mean RMS jitter in picoseconds across all populated
// levels, and the number of levels it is based on.
func (c *Curve) Average() (float64, int) {
	if len(c.entries) == 0 {
		return 0, 0
	}

	values := make([]float64, 0, len(c.entries))
	for _, e := range c.entries {
		values = append(values, e.RMSps)
	}

	return stat.Mean(values, nil), len(values)
}

// Summary formats the overall result as a single reporting line.
func (c *Curve) Summary() string {
	avg, n := c.Average()
	return fmt.Sprintf("AvgJitter = %.3f ps (based on %d samples)", avg, n)
}
