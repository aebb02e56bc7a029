package splitter

import (
	"math"
	"testing"
)

func TestPlanExactMultiple(t *testing.T) {
	specs := Plan(60, 30)
	if len(specs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(specs))
	}
	for i, spec := range specs {
		if spec.DurationSeconds != 30 {
			t.Fatalf("segment %d: expected duration 30, got %v", i, spec.DurationSeconds)
		}
	}
	if specs[1].StartSeconds != 30 || specs[1].EndSeconds != 60 {
		t.Fatalf("unexpected final segment bounds: %+v", specs[1])
	}
}

func TestPlanRemainderGoesToFinalSegment(t *testing.T) {
	specs := Plan(95, 30)
	if len(specs) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(specs))
	}
	want := []float64{30, 30, 30, 5}
	for i, spec := range specs {
		if spec.DurationSeconds != want[i] {
			t.Fatalf("segment %d: expected duration %v, got %v", i, want[i], spec.DurationSeconds)
		}
		if spec.Seq != i+1 {
			t.Fatalf("segment %d: expected seq %d, got %d", i, i+1, spec.Seq)
		}
	}
	if specs[3].StartSeconds != 90 || specs[3].EndSeconds != 95 {
		t.Fatalf("unexpected final segment bounds: %+v", specs[3])
	}
}

func TestPlanShortVideoYieldsSingleSegment(t *testing.T) {
	specs := Plan(12.5, 30)
	if len(specs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(specs))
	}
	if specs[0].StartSeconds != 0 || specs[0].DurationSeconds != 12.5 {
		t.Fatalf("unexpected segment: %+v", specs[0])
	}
}

func TestPlanCoversTotalDuration(t *testing.T) {
	for _, tc := range []struct{ total, split float64 }{
		{95, 30},
		{30, 30},
		{31.4, 10},
		{0.5, 30},
	} {
		specs := Plan(tc.total, tc.split)
		var sum float64
		for _, spec := range specs {
			sum += spec.DurationSeconds
		}
		if math.Abs(sum-tc.total) > 1e-9 {
			t.Fatalf("Plan(%v, %v): durations sum to %v", tc.total, tc.split, sum)
		}
	}
}

func TestPlanInvalidInputs(t *testing.T) {
	if specs := Plan(0, 30); specs != nil {
		t.Fatalf("expected nil for zero total, got %+v", specs)
	}
	if specs := Plan(60, 0); specs != nil {
		t.Fatalf("expected nil for zero split, got %+v", specs)
	}
	if specs := Plan(-5, 30); specs != nil {
		t.Fatalf("expected nil for negative total, got %+v", specs)
	}
}
