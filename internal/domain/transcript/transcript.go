package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

// LoadFile reads a transcript JSON file. Two shapes are accepted: a
// bare array of segments, or an object with a "transcription" field
// holding that array (the shape the transcription service writes).
func LoadFile(path string) ([]types.TranscriptSegment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var segs []types.TranscriptSegment
	if err := json.Unmarshal(b, &segs); err != nil {
		var wrapped struct {
			Transcription []types.TranscriptSegment `json:"transcription"`
		}
		if werr := json.Unmarshal(b, &wrapped); werr != nil {
			return nil, fmt.Errorf("parse transcript %s: %w", path, err)
		}
		segs = wrapped.Transcription
	}
	return Normalize(segs)
}

// Normalize fills missing start times from the textual timestamp,
// derives missing end times from the following segment, and rejects
// transcripts whose start times go backwards.
func Normalize(segs []types.TranscriptSegment) ([]types.TranscriptSegment, error) {
	out := make([]types.TranscriptSegment, len(segs))
	copy(out, segs)

	for i := range out {
		if out[i].StartSeconds == 0 && out[i].Timestamp != "" {
			sec, err := ParseTimestamp(out[i].Timestamp)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			out[i].StartSeconds = sec
		}
		if out[i].Timestamp == "" {
			out[i].Timestamp = FormatTimestamp(out[i].StartSeconds)
		}
	}

	for i := range out {
		if out[i].StartSeconds < 0 {
			return nil, fmt.Errorf("segment %d: negative start time %.2f", i, out[i].StartSeconds)
		}
		if i > 0 && out[i].StartSeconds < out[i-1].StartSeconds {
			return nil, fmt.Errorf("segment %d: start time %.2f precedes previous %.2f",
				i, out[i].StartSeconds, out[i-1].StartSeconds)
		}
		if out[i].EndSeconds == nil && i+1 < len(out) {
			end := out[i+1].StartSeconds
			out[i].EndSeconds = &end
		}
	}
	return out, nil
}

// ParseTimestamp converts "MM:SS" or "HH:MM:SS" to seconds.
func ParseTimestamp(ts string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", ts)
		}
		vals = append(vals, v)
	}
	if len(vals) == 2 {
		return vals[0]*60 + vals[1], nil
	}
	return vals[0]*3600 + vals[1]*60 + vals[2], nil
}

// FormatTimestamp renders seconds as "MM:SS", or "HH:MM:SS" past one
// hour.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Duration returns the last known end time of the transcript, falling
// back to the last start time when no segment carries an end.
func Duration(segs []types.TranscriptSegment) float64 {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].EndSeconds != nil {
			return *segs[i].EndSeconds
		}
	}
	if len(segs) > 0 {
		return segs[len(segs)-1].StartSeconds
	}
	return 0
}

// Format renders the transcript as "[MM:SS] text" lines for prompt
// construction.
func Format(segs []types.TranscriptSegment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteByte('\n')
		}
		ts := s.Timestamp
		if ts == "" {
			ts = FormatTimestamp(s.StartSeconds)
		}
		fmt.Fprintf(&b, "[%s] %s", ts, s.Text)
	}
	return b.String()
}

// TextRange concatenates the text of all segments overlapping the
// [start, end) window.
func TextRange(segs []types.TranscriptSegment, start, end float64) string {
	var parts []string
	for _, s := range segs {
		if s.StartSeconds >= start && s.StartSeconds < end {
			parts = append(parts, s.Text)
			continue
		}
		if s.EndSeconds != nil && *s.EndSeconds > start && s.StartSeconds < end {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
