package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clipforge/clipforge/internal/domain/crop"
	"github.com/clipforge/clipforge/internal/domain/subject"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

// ErrAllRendersFailed reports that candidates existed but not one of
// them produced an output file. Distinct from the zero-candidates
// case, which is a successful empty run.
var ErrAllRendersFailed = errors.New("all clip renders failed")

type Deps struct {
	Selector ports.CandidateSelector
	Video    ports.VideoTool
	// Detector may be nil; the pipeline then always uses the default
	// crop.
	Detector ports.FaceDetector
	Log      zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	VideoPath    string
	Segments     []types.TranscriptSegment
	TargetLength int
	MaxClips     int
	Format       types.Format
	ClipsDir     string
	FramesDir    string
	// Workers bounds parallel renders; 0 means min(NumCPU, MaxClips).
	Workers int
}

type Result struct {
	Report types.Report
}

func (in Input) validate() error {
	if in.VideoPath == "" {
		return errors.New("video path is empty")
	}
	if in.TargetLength <= 0 {
		return fmt.Errorf("target length must be > 0, got %d", in.TargetLength)
	}
	if in.MaxClips <= 0 {
		return fmt.Errorf("max clips must be > 0, got %d", in.MaxClips)
	}
	if in.Format.CanvasWidth <= 0 || in.Format.CanvasHeight <= 0 {
		return fmt.Errorf("format %q has no canvas", in.Format.Name)
	}
	return nil
}

// Run drives the whole clip pipeline: select candidates once, locate
// the subject once, plan the crop once, then render every candidate.
// A single render failure is logged and skipped; only the everything-
// failed case aborts.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	started := time.Now()

	cands, err := u.d.Selector.SelectCandidates(ctx, in.Segments, in.TargetLength, in.MaxClips)
	if err != nil {
		return Result{}, err
	}
	if len(cands) == 0 {
		u.d.Log.Info().Msg("no clip candidates selected")
		return Result{Report: types.Report{
			Clips:          []types.RenderedClip{},
			ElapsedSeconds: elapsedSeconds(started),
		}}, nil
	}
	u.d.Log.Info().Int("candidates", len(cands)).Msg("clip candidates selected")

	loc := u.locateSubject(ctx, in.VideoPath, in.FramesDir)

	srcW, srcH := u.d.Video.ProbeDimensions(ctx, in.VideoPath)
	plan := crop.Plan(srcW, srcH, loc, in.Format)
	u.d.Log.Debug().
		Int("src_w", srcW).Int("src_h", srcH).
		Int("crop_w", plan.CropWidth).Int("crop_h", plan.CropHeight).
		Msg("crop planned")

	rendered := make([]*types.RenderedClip, len(cands))
	g := new(errgroup.Group)
	g.SetLimit(workerCount(in.Workers, len(cands)))
	for i, cand := range cands {
		i, cand := i, cand
		g.Go(func() error {
			outPath := filepath.Join(in.ClipsDir, ClipFileName(i, cand))
			err := u.d.Video.RenderClip(ctx, in.VideoPath, outPath, cand.StartSeconds, cand.EndSeconds, plan, in.Format)
			if err != nil {
				u.d.Log.Error().Err(err).
					Int("clip", i+1).
					Float64("start", cand.StartSeconds).
					Float64("end", cand.EndSeconds).
					Msg("clip render failed; skipping")
				return nil
			}
			rendered[i] = &types.RenderedClip{
				Candidate:  cand,
				OutputPath: outPath,
				FileSizeMB: fileSizeMB(outPath),
				Resolution: plan.Resolution(),
				Subject:    loc,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	out := make([]types.RenderedClip, 0, len(cands))
	for _, r := range rendered {
		if r != nil {
			out = append(out, *r)
		}
	}

	report := types.Report{
		Clips:          out,
		TotalRequested: len(cands),
		TotalSucceeded: len(out),
		ElapsedSeconds: elapsedSeconds(started),
	}
	if len(out) == 0 {
		return Result{Report: report}, ErrAllRendersFailed
	}
	u.d.Log.Info().
		Int("requested", report.TotalRequested).
		Int("succeeded", report.TotalSucceeded).
		Msg("clip rendering finished")
	return Result{Report: report}, nil
}

// locateSubject samples frames and aggregates face detections into
// one shared location. It is a quality enhancement, never fatal: any
// failure falls back to no location and the default crop.
func (u Usecase) locateSubject(ctx context.Context, videoPath, framesDir string) *types.SubjectLocation {
	if u.d.Detector == nil {
		u.d.Log.Debug().Msg("face detection disabled")
		return nil
	}

	frames, err := u.d.Video.ExtractFrames(ctx, videoPath, framesDir, subject.DefaultSampleCount)
	if err != nil {
		u.d.Log.Warn().Err(err).Msg("frame sampling failed; using default crop")
		return nil
	}

	var dets []types.FaceDetection
	for _, frame := range frames {
		found, err := u.d.Detector.DetectFaces(frame)
		if err != nil {
			u.d.Log.Warn().Err(err).Str("frame", frame).Msg("face detection failed on frame")
			continue
		}
		dets = append(dets, found...)
	}

	loc := subject.Aggregate(dets)
	if loc == nil {
		u.d.Log.Info().Msg("no subject detected; using default crop")
		return nil
	}
	u.d.Log.Info().
		Int("x", loc.X).Int("y", loc.Y).
		Float64("confidence", loc.Confidence).
		Msg("subject located")
	return loc
}

// ClipFileName builds the deterministic output name for a candidate:
// index plus rounded start/end seconds, collision-free within a run.
func ClipFileName(idx int, c types.ClipCandidate) string {
	return fmt.Sprintf("clip_%d_%ds-%ds.mp4", idx+1, int(c.StartSeconds), int(c.EndSeconds))
}

func workerCount(requested, candidates int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > candidates {
		n = candidates
	}
	if n < 1 {
		n = 1
	}
	return n
}

func fileSizeMB(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return math.Round(float64(info.Size())/(1024*1024)*100) / 100
}

func elapsedSeconds(started time.Time) float64 {
	return math.Round(time.Since(started).Seconds()*100) / 100
}
