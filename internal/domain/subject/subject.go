package subject

import "github.com/clipforge/clipforge/internal/types"

// DefaultSampleCount is how many frames the locator samples across
// the source video.
const DefaultSampleCount = 10

// SampleIndexes returns the frame numbers to sample: sampleCount
// frames evenly spaced with stride max(1, totalFrames/sampleCount).
// Short sources yield fewer frames rather than duplicates.
func SampleIndexes(totalFrames, sampleCount int) []int {
	if totalFrames <= 0 || sampleCount <= 0 {
		return nil
	}
	stride := totalFrames / sampleCount
	if stride < 1 {
		stride = 1
	}
	out := make([]int, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		n := i * stride
		if n >= totalFrames {
			break
		}
		out = append(out, n)
	}
	return out
}

// Confidence maps a detected region's share of the frame area into
// [0,1]. Larger regions read as closer, more prominent faces and
// score higher; a region covering a tenth of the frame already maxes
// out.
func Confidence(w, h, frameW, frameH int) float64 {
	if w <= 0 || h <= 0 || frameW <= 0 || frameH <= 0 {
		return 0
	}
	c := float64(w*h) / float64(frameW*frameH) * 10
	if c > 1 {
		return 1
	}
	return c
}

// Aggregate collapses per-frame detections into the single canonical
// subject location: the highest-confidence detection wins, with ties
// broken by first occurrence in sampling order. No detections means
// no location.
func Aggregate(dets []types.FaceDetection) *types.SubjectLocation {
	best := -1
	for i, d := range dets {
		if best < 0 || d.Confidence > dets[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	d := dets[best]
	return &types.SubjectLocation{
		X:          d.X,
		Y:          d.Y,
		Width:      d.Width,
		Height:     d.Height,
		Confidence: d.Confidence,
	}
}
