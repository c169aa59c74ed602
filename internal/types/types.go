package types

import "fmt"

// TranscriptSegment is one timestamped line of the source transcript.
// Segments are ordered by StartSeconds ascending and owned by the
// caller; the pipeline never mutates them.
type TranscriptSegment struct {
	Timestamp    string   `json:"timestamp"`
	Text         string   `json:"text"`
	StartSeconds float64  `json:"start_seconds"`
	EndSeconds   *float64 `json:"end_seconds,omitempty"`
}

// ClipCandidate is a proposed time window worth rendering as a short
// clip. JSON tags match the wire shape the scoring service returns.
type ClipCandidate struct {
	StartSeconds    float64 `json:"start_time"`
	EndSeconds      float64 `json:"end_time"`
	Duration        float64 `json:"duration"`
	Rationale       string  `json:"reason"`
	HookText        string  `json:"hook_text"`
	EngagementScore float64 `json:"engagement_score"`
	PreviewText     string  `json:"transcript_preview"`
}

// FaceDetection is one candidate face region found in a single
// sampled frame. Confidence is in [0,1].
type FaceDetection struct {
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}

// SubjectLocation is the aggregated best estimate of where the human
// subject sits in the source frames. It is computed once per source
// video and shared across all of its clips.
type SubjectLocation struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// CropPlan describes the crop rectangle within the source frame plus
// the fixed output canvas the cropped content is scaled and padded to.
type CropPlan struct {
	CropX        int
	CropY        int
	CropWidth    int
	CropHeight   int
	CanvasWidth  int
	CanvasHeight int
}

func (p CropPlan) Resolution() string {
	return fmt.Sprintf("%dx%d", p.CanvasWidth, p.CanvasHeight)
}

// Format is one of the enumerated output presets. Encode settings are
// a fixed policy per preset so output size and playback compatibility
// stay bounded.
type Format struct {
	Name         string
	AspectW      int
	AspectH      int
	CanvasWidth  int
	CanvasHeight int
	VideoBitrate string
	AudioBitrate string
	Preset       string
	CRF          int
}

// VideoStats is the best-effort result of probing a source video.
type VideoStats struct {
	DurationSeconds float64
	TotalFrames     int
	FPS             float64
}

// RenderedClip is the metadata for one successfully rendered output
// file. Failed renders produce no RenderedClip.
type RenderedClip struct {
	Candidate  ClipCandidate    `json:"candidate"`
	OutputPath string           `json:"output_path"`
	FileSizeMB float64          `json:"file_size_mb"`
	Resolution string           `json:"resolution"`
	Subject    *SubjectLocation `json:"subject,omitempty"`
}

// Report aggregates one pipeline run.
type Report struct {
	Clips          []RenderedClip `json:"clips"`
	TotalRequested int            `json:"total_requested"`
	TotalSucceeded int            `json:"total_succeeded"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
}

// Suggestions are the optional publishing assets derived from the
// transcript.
type Suggestions struct {
	Titles          []string `json:"titles"`
	Description     string   `json:"description"`
	ThumbnailPrompt string   `json:"thumbnail_prompt"`
	SocialPosts     []string `json:"social_posts"`
}
