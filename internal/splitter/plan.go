package splitter

import "math"

// SegmentSpec describes one planned cut of the source video.
type SegmentSpec struct {
	Seq             int
	StartSeconds    float64
	DurationSeconds float64
	EndSeconds      float64
}

// Plan computes the segment boundaries for a video of totalSeconds split
// into pieces of splitSeconds each. Every segment but the last runs for
// exactly splitSeconds; the last absorbs whatever remains, so a 95 second
// video split at 30 yields segments of 30, 30, 30, and 5 seconds.
func Plan(totalSeconds, splitSeconds float64) []SegmentSpec {
	if totalSeconds <= 0 || splitSeconds <= 0 {
		return nil
	}

	count := int(math.Ceil(totalSeconds / splitSeconds))
	specs := make([]SegmentSpec, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * splitSeconds
		duration := splitSeconds
		if i == count-1 {
			duration = totalSeconds - start
		}
		specs = append(specs, SegmentSpec{
			Seq:             i + 1,
			StartSeconds:    start,
			DurationSeconds: duration,
			EndSeconds:      start + duration,
		})
	}
	return specs
}
