package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/clipforge/clipforge/internal/domain/subject"
	"github.com/clipforge/clipforge/internal/types"
)

// Fallback resolution when the probe fails; planning proceeds instead
// of aborting.
const (
	fallbackWidth  = 1920
	fallbackHeight = 1080

	defaultFPS = 30.0
)

type Adapter struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Adapter {
	return &Adapter{log: log}
}

// ProbeDimensions returns the source frame size, or the fixed
// fallback when probing fails for any reason.
func (a *Adapter) ProbeDimensions(ctx context.Context, path string) (int, int) {
	_, w, h, err := a.probe(ctx, path)
	if err != nil || w <= 0 || h <= 0 {
		a.log.Warn().Err(err).Str("video", path).
			Msgf("probe failed; assuming %dx%d", fallbackWidth, fallbackHeight)
		return fallbackWidth, fallbackHeight
	}
	return w, h
}

// ProbeStats returns duration, frame count, and frame rate,
// best-effort from the container and stream metadata.
func (a *Adapter) ProbeStats(ctx context.Context, path string) (types.VideoStats, error) {
	stats, _, _, err := a.probe(ctx, path)
	if err != nil {
		return types.VideoStats{}, err
	}
	return stats, nil
}

// ExtractFrames writes sampleCount evenly spaced JPEG frames into
// dir, fewer if the source is shorter. Individual frame failures are
// skipped.
func (a *Adapter) ExtractFrames(ctx context.Context, path, dir string, sampleCount int) ([]string, error) {
	stats, _, _, err := a.probe(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "probe for frame sampling")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fps := stats.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	total := stats.TotalFrames
	if total <= 0 {
		total = int(stats.DurationSeconds * fps)
	}

	indexes := subject.SampleIndexes(total, sampleCount)
	out := make([]string, 0, len(indexes))
	for i, frameNo := range indexes {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		framePath := filepath.Join(dir, fmt.Sprintf("frame_%03d.jpg", i))
		seek := float64(frameNo) / fps
		err := ffmpeggo.Input(path, ffmpeggo.KwArgs{"ss": seek}).
			Output(framePath, ffmpeggo.KwArgs{"frames:v": 1, "q:v": 2}).
			OverWriteOutput().
			Run()
		if err != nil {
			a.log.Warn().Err(err).Float64("seek", seek).Msg("frame extraction failed; skipping frame")
			continue
		}
		out = append(out, framePath)
	}
	return out, nil
}

// RenderClip extracts [startSec, endSec) of the source, applies the
// crop and scale+pad transform to the video stream, muxes the audio
// back in, and encodes with the format's fixed policy. On failure the
// partial output file is removed.
func (a *Adapter) RenderClip(
	ctx context.Context,
	inPath, outPath string,
	startSec, endSec float64,
	plan types.CropPlan,
	format types.Format,
) error {
	if endSec <= startSec {
		return errors.Errorf("invalid clip range %.2f-%.2f", startSec, endSec)
	}

	in := ffmpeggo.Input(inPath, ffmpeggo.KwArgs{
		"ss": formatSeconds(startSec),
		"t":  formatSeconds(endSec - startSec),
	})

	video := in.Get("v").
		Filter("crop", ffmpeggo.Args{fmt.Sprintf("%d:%d:%d:%d",
			plan.CropWidth, plan.CropHeight, plan.CropX, plan.CropY)}).
		Filter("scale", ffmpeggo.Args{fmt.Sprintf("%d:%d",
			plan.CanvasWidth, plan.CanvasHeight)}, ffmpeggo.KwArgs{
			"force_original_aspect_ratio": "decrease",
		}).
		Filter("pad", ffmpeggo.Args{fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2",
			plan.CanvasWidth, plan.CanvasHeight)}, ffmpeggo.KwArgs{
			"color": "black",
		})

	stream := ffmpeggo.Output([]*ffmpeggo.Stream{video, in.Get("a")}, outPath, ffmpeggo.KwArgs{
		"c:v":      "libx264",
		"c:a":      "aac",
		"b:v":      format.VideoBitrate,
		"b:a":      format.AudioBitrate,
		"preset":   format.Preset,
		"crf":      format.CRF,
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
	}).OverWriteOutput()

	if err := a.runCompiled(ctx, stream.Compile()); err != nil {
		removePartial(outPath)
		return errors.Wrapf(err, "render %s", filepath.Base(outPath))
	}
	return nil
}

// runCompiled runs an ffmpeg process with cancellation: on ctx done
// the process is killed so in-flight renders fail fast.
func (a *Adapter) runCompiled(ctx context.Context, cmd *exec.Cmd) error {
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "ffmpeg: %s", tail(buf.String(), 500))
		}
		return nil
	}
}

func (a *Adapter) probe(ctx context.Context, path string) (types.VideoStats, int, int, error) {
	if err := ctx.Err(); err != nil {
		return types.VideoStats{}, 0, 0, err
	}
	raw, err := ffmpeggo.Probe(path)
	if err != nil {
		return types.VideoStats{}, 0, 0, errors.Wrapf(err, "probe %s", path)
	}
	return parseProbe([]byte(raw))
}

type probeData struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Duration   string `json:"duration"`
		NbFrames   string `json:"nb_frames"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(raw []byte) (types.VideoStats, int, int, error) {
	var data probeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return types.VideoStats{}, 0, 0, errors.Wrap(err, "parse probe output")
	}

	idx := -1
	for i, s := range data.Streams {
		if s.CodecType == "video" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.VideoStats{}, 0, 0, errors.New("no video stream found")
	}
	vs := data.Streams[idx]

	fps := parseFrameRate(vs.RFrameRate)

	duration := parseFloat(vs.Duration)
	if duration == 0 {
		duration = parseFloat(data.Format.Duration)
	}

	frames := int(parseFloat(vs.NbFrames))
	if duration == 0 && frames > 0 && fps > 0 {
		duration = float64(frames) / fps
	}
	if frames == 0 && duration > 0 && fps > 0 {
		frames = int(duration * fps)
	}

	stats := types.VideoStats{
		DurationSeconds: duration,
		TotalFrames:     frames,
		FPS:             fps,
	}
	return stats, vs.Width, vs.Height, nil
}

func parseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num := parseFloat(parts[0])
	den := parseFloat(parts[1])
	if den == 0 {
		return 0
	}
	return num / den
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func removePartial(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
