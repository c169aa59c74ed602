package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/crop"
	"github.com/clipforge/clipforge/internal/domain/transcript"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/ports/adapters/ffmpeg"
	"github.com/clipforge/clipforge/internal/ports/adapters/llm"
	"github.com/clipforge/clipforge/internal/ports/adapters/pigo"
	"github.com/clipforge/clipforge/internal/usecase"
)

type Config struct {
	InputVideo     string
	TranscriptPath string
	OutDir         string
	MaxClips       int
	TargetLength   int
	FormatName     string
	Workers        int
	Suggestions    bool

	// CacheDir is the base directory for local artifacts (sampled
	// frames, etc.). If empty, defaults to ".cache".
	CacheDir string

	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenAIAllowedHosts []string

	// CascadePath points at the binary face cascade; empty disables
	// subject detection.
	CascadePath string

	Logger zerolog.Logger
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.TranscriptPath == "" {
		return errors.New("transcript path is empty")
	}
	if _, err := os.Stat(c.TranscriptPath); err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	if c.MaxClips <= 0 {
		return fmt.Errorf("clips must be > 0")
	}
	if c.TargetLength <= 0 {
		return fmt.Errorf("length must be > 0")
	}
	if _, err := crop.Lookup(c.FormatName); err != nil {
		return err
	}
	return llm.ValidateBaseURL(c.OpenAIBaseURL, c.OpenAIAllowedHosts)
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Logger

	format, err := crop.Lookup(cfg.FormatName)
	if err != nil {
		return err
	}

	segments, err := transcript.LoadFile(cfg.TranscriptPath)
	if err != nil {
		return err
	}
	log.Info().Int("segments", len(segments)).Msg("transcript loaded")

	// adapters
	video := ffmpeg.New(log)
	selector := llm.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, log)

	if stats, err := video.ProbeStats(ctx, cfg.InputVideo); err == nil {
		log.Info().
			Float64("duration_sec", stats.DurationSeconds).
			Float64("fps", stats.FPS).
			Msg("source probed")
		if td := transcript.Duration(segments); td > stats.DurationSeconds+1 && stats.DurationSeconds > 0 {
			log.Warn().
				Float64("transcript_sec", td).
				Float64("video_sec", stats.DurationSeconds).
				Msg("transcript runs past the end of the video")
		}
	}

	var detector ports.FaceDetector
	if cfg.CascadePath != "" {
		d, err := pigo.New(cfg.CascadePath)
		if err != nil {
			log.Warn().Err(err).Str("cascade", cfg.CascadePath).
				Msg("face cascade unavailable; subject detection disabled")
		} else {
			detector = d
		}
	}

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", hash(cfg.InputVideo))
	framesDir := filepath.Join(cacheDir, "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return err
	}
	log.Debug().Str("cache", cacheDir).Msg("workspace prepared")

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputVideo, time.Now().UTC())
	clipsDir := filepath.Join(runOutDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return err
	}
	log.Info().Str("dir", runOutDir).Msg("output run dir")

	uc := usecase.New(usecase.Deps{
		Selector: selector,
		Video:    video,
		Detector: detector,
		Log:      log,
	})
	res, err := uc.Run(ctx, usecase.Input{
		VideoPath:    cfg.InputVideo,
		Segments:     segments,
		TargetLength: cfg.TargetLength,
		MaxClips:     cfg.MaxClips,
		Format:       format,
		ClipsDir:     clipsDir,
		FramesDir:    framesDir,
		Workers:      cfg.Workers,
	})
	if err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(runOutDir, "report.json"), res.Report); err != nil {
		return err
	}
	log.Info().
		Int("clips", res.Report.TotalSucceeded).
		Str("report", filepath.Join(runOutDir, "report.json")).
		Msg("report written")

	if cfg.Suggestions {
		sugg, err := selector.GenerateSuggestions(ctx, segments)
		if err != nil {
			// Clips are already on disk; a failed extra is not worth
			// failing the run over.
			log.Warn().Err(err).Msg("suggestions generation failed; skipping")
			return nil
		}
		if err := writeJSON(filepath.Join(runOutDir, "suggestions.json"), sugg); err != nil {
			return err
		}
		log.Info().Str("path", filepath.Join(runOutDir, "suggestions.json")).Msg("suggestions written")
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, b, 0o644)
}

func buildRunOutDir(outRoot, inputVideo string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputVideo), filepath.Ext(inputVideo))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputVideo, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.CandidateSelector = (*llm.Adapter)(nil)
var _ ports.SuggestionGenerator = (*llm.Adapter)(nil)
var _ ports.FaceDetector = (*pigo.Detector)(nil)
