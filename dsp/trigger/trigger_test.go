package trigger

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-trigger/internal/testutil"
)

// sineCapture is a noise-free 1 GS/s capture of a 100 MHz sine taken at a
// sub-sample offset of 0.25, quantized to 8-bit counts (ten samples per
// cycle, five cycles).
var sineCapture = []int{
	147, 217, 252, 240, 185, 107, 37, 2, 14, 69,
	147, 217, 252, 240, 185, 107, 37, 2, 14, 69,
	147, 217, 252, 240, 185, 107, 37, 2, 14, 69,
	147, 217, 252, 240, 185, 107, 37, 2, 14, 69,
	147, 217, 252, 240, 185, 107, 37, 2, 14, 69,
}

func TestRisingEdgeSineCapture(t *testing.T) {
	ev, err := RisingEdge(sineCapture, 5, 127)
	if err != nil {
		t.Fatalf("RisingEdge failed: %v", err)
	}

	if ev.Index != 10 {
		t.Fatalf("index mismatch: got %d want 10", ev.Index)
	}

	// Slopes around index 10 are integers, so the correction is exactly
	// -(127-147)/153 * 1.75.
	want := 20.0 / 153.0 * 1.75
	if math.Abs(ev.Correction-want) > 1e-12 {
		t.Fatalf("correction mismatch: got %.15f want %.15f", ev.Correction, want)
	}

	if math.Abs(ev.Estimate()-(10-want)) > 1e-12 {
		t.Fatalf("estimate mismatch: got %.15f", ev.Estimate())
	}
}

func TestRisingEdgeSkipsPretrigger(t *testing.T) {
	// The same edge repeats every ten samples; raising firstSamp must move
	// the detection to the next cycle with the identical correction.
	first, err := RisingEdge(sineCapture, 5, 127)
	if err != nil {
		t.Fatalf("RisingEdge failed: %v", err)
	}

	later, err := RisingEdge(sineCapture, 15, 127)
	if err != nil {
		t.Fatalf("RisingEdge failed: %v", err)
	}

	if later.Index != first.Index+10 {
		t.Fatalf("guarded index mismatch: got %d want %d", later.Index, first.Index+10)
	}

	if later.Correction != first.Correction {
		t.Fatalf("correction should repeat across cycles: %f vs %f", later.Correction, first.Correction)
	}
}

func TestRisingEdgeLinearRamp(t *testing.T) {
	ev, err := RisingEdge(testutil.RampCounts(0, 10, 12), 0, 35)
	if err != nil {
		t.Fatalf("RisingEdge failed: %v", err)
	}

	if ev.Index != 4 {
		t.Fatalf("index mismatch: got %d want 4", ev.Index)
	}

	// Constant slope 10: localSlope = 20, diff = -5,
	// correction = 5/20 * 1.75 = 0.4375.
	if ev.Correction != 0.4375 {
		t.Fatalf("correction mismatch: got %f want 0.4375", ev.Correction)
	}
}

func TestCorrectionExactHitIsZero(t *testing.T) {
	// counts[4] == level: zero correction regardless of the finite slope.
	corr, err := Correction(testutil.RampCounts(0, 10, 12), 4, 40)
	if err != nil {
		t.Fatalf("Correction failed: %v", err)
	}

	if corr != 0 {
		t.Fatalf("exact hit should correct by zero, got %f", corr)
	}
}

func TestCorrectionZeroSlope(t *testing.T) {
	flat := []int{50, 50, 50, 50, 50, 50, 50, 50, 50}

	if _, err := Correction(flat, 4, 60); !errors.Is(err, ErrZeroSlope) {
		t.Fatalf("flat stencil: got %v want ErrZeroSlope", err)
	}

	// The first- and second-order terms can also cancel exactly:
	// slope[-1]+slope[+1] = 1, slope[-2]-slope[+2] = -4.
	cancel := []int{10, 10, 14, 10, 11, 11, 11, 11, 11, 11}

	if _, err := RisingEdge(cancel, 3, 10); !errors.Is(err, ErrZeroSlope) {
		t.Fatalf("cancelling stencil: got %v want ErrZeroSlope", err)
	}
}

func TestRisingEdgeNotFound(t *testing.T) {
	falling := []int{200, 180, 160, 140, 120, 100, 80, 60, 40, 20}

	if _, err := RisingEdge(falling, 0, 127); !errors.Is(err, ErrEdgeNotFound) {
		t.Fatalf("falling capture: got %v want ErrEdgeNotFound", err)
	}

	if _, err := RisingEdge(sineCapture, 49, 127); !errors.Is(err, ErrEdgeNotFound) {
		t.Fatalf("guard past end: got %v want ErrEdgeNotFound", err)
	}

	if _, err := RisingEdge(nil, 0, 127); !errors.Is(err, ErrEdgeNotFound) {
		t.Fatalf("nil capture: got %v want ErrEdgeNotFound", err)
	}
}

func TestRisingEdgeInsufficientMargin(t *testing.T) {
	// Edge at index 2: too close to the start for the -4 stencil arm.
	early := []int{0, 0, 100, 100, 100, 100, 100, 100, 100, 100}

	if _, err := RisingEdge(early, 0, 50); !errors.Is(err, ErrInsufficientMargin) {
		t.Fatalf("early edge: got %v want ErrInsufficientMargin", err)
	}

	// Edge at len-2: too close to the end for the +4 arm.
	late := []int{0, 0, 0, 0, 0, 0, 0, 0, 100, 100}

	if _, err := RisingEdge(late, 0, 50); !errors.Is(err, ErrInsufficientMargin) {
		t.Fatalf("late edge: got %v want ErrInsufficientMargin", err)
	}
}

func TestRisingEdgeShortCapturesNeverPanic(t *testing.T) {
	// Captures shorter than firstSamp+5 can only fail with EdgeNotFound or
	// InsufficientMargin.
	for n := 0; n < 9; n++ {
		_, err := RisingEdge(testutil.RampCounts(0, 40, n), 1, 50)
		if err == nil {
			t.Fatalf("length %d: expected failure", n)
		}

		if !errors.Is(err, ErrEdgeNotFound) && !errors.Is(err, ErrInsufficientMargin) {
			t.Fatalf("length %d: unexpected error %v", n, err)
		}
	}
}

func TestRisingEdgeNegativeGuard(t *testing.T) {
	// A negative guard must clamp, not index before the capture.
	ev, err := RisingEdge(testutil.RampCounts(0, 10, 12), -7, 35)
	if err != nil {
		t.Fatalf("RisingEdge failed: %v", err)
	}

	if ev.Index != 4 {
		t.Fatalf("index mismatch: got %d want 4", ev.Index)
	}
}

func TestCorrectionMarginBounds(t *testing.T) {
	r := testutil.RampCounts(0, 10, 9)

	// idx 4 is the only legal stencil centre in a 9-sample capture.
	if _, err := Correction(r, 4, 35); err != nil {
		t.Fatalf("centre stencil failed: %v", err)
	}

	if _, err := Correction(r, 3, 35); !errors.Is(err, ErrInsufficientMargin) {
		t.Fatalf("idx 3: got %v want ErrInsufficientMargin", err)
	}

	if _, err := Correction(r, 5, 35); !errors.Is(err, ErrInsufficientMargin) {
		t.Fatalf("idx 5: got %v want ErrInsufficientMargin", err)
	}
}
