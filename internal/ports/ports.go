package ports

import (
	"context"

	"github.com/clipforge/clipforge/internal/types"
)

// CandidateSelector ranks transcript windows via an external scoring
// service. Scoring failures degrade to an empty slice; a non-nil
// error is reserved for caller cancellation.
type CandidateSelector interface {
	SelectCandidates(
		ctx context.Context,
		segments []types.TranscriptSegment,
		targetLengthSec int,
		maxCandidates int,
	) ([]types.ClipCandidate, error)
}

// SuggestionGenerator derives publishing assets from the transcript.
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, segments []types.TranscriptSegment) (types.Suggestions, error)
}

// VideoTool wraps the media toolchain: probing, frame sampling, and
// clip rendering.
type VideoTool interface {
	// ProbeDimensions never fails; it falls back to a default
	// resolution so planning can proceed.
	ProbeDimensions(ctx context.Context, path string) (width, height int)
	ProbeStats(ctx context.Context, path string) (types.VideoStats, error)
	ExtractFrames(ctx context.Context, path, dir string, sampleCount int) ([]string, error)
	RenderClip(
		ctx context.Context,
		inPath, outPath string,
		startSec, endSec float64,
		plan types.CropPlan,
		format types.Format,
	) error
}

// FaceDetector finds candidate face regions in a single frame image.
type FaceDetector interface {
	DetectFaces(framePath string) ([]types.FaceDetection, error)
}
