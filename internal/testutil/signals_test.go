package testutil

import "testing"

func TestSineCountsRange(t *testing.T) {
	counts := SineCounts(125e6, 1e9, 1.0, 64)

	if len(counts) != 64 {
		t.Fatalf("length mismatch: got %d", len(counts))
	}

	if counts[0] != 127 {
		t.Fatalf("first count should be mid-scale, got %d", counts[0])
	}

	for i, c := range counts {
		if c < 0 || c > 255 {
			t.Fatalf("count out of range at %d: %d", i, c)
		}
	}
}

func TestRampCountsClips(t *testing.T) {
	counts := RampCounts(-20, 50, 8)

	if counts[0] != 0 {
		t.Fatalf("start should clip to 0, got %d", counts[0])
	}

	if counts[7] != 255 {
		t.Fatalf("end should clip to 255, got %d", counts[7])
	}

	if counts[2] != 80 {
		t.Fatalf("mid value mismatch: got %d want 80", counts[2])
	}
}

func TestConstCounts(t *testing.T) {
	for _, c := range ConstCounts(42, 5) {
		if c != 42 {
			t.Fatalf("got %d want 42", c)
		}
	}
}
