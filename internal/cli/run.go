package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/pipeline"
)

func run(cmd *cobra.Command, input string) error {
	transcriptPath, _ := cmd.Flags().GetString("transcript")
	outDir, _ := cmd.Flags().GetString("out")
	maxClips, _ := cmd.Flags().GetInt("clips")
	length, _ := cmd.Flags().GetInt("length")
	formatName, _ := cmd.Flags().GetString("format")
	workers, _ := cmd.Flags().GetInt("workers")
	suggestions, _ := cmd.Flags().GetBool("suggestions")
	verbose, _ := cmd.Flags().GetBool("verbose")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return errors.New("OPENAI_API_KEY is required (set it in .env)")
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	absTranscript, err := filepath.Abs(transcriptPath)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg := pipeline.Config{
		InputVideo:     absIn,
		TranscriptPath: absTranscript,
		OutDir:         outDir,
		MaxClips:       maxClips,
		TargetLength:   length,
		FormatName:     formatName,
		Workers:        workers,
		Suggestions:    suggestions,

		OpenAIAPIKey:       apiKey,
		OpenAIModel:        getenvDefault("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL:      getenvDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAllowedHosts: splitHosts(os.Getenv("OPENAI_ALLOWED_HOSTS")),

		CascadePath: getenvDefault("CLIPFORGE_CASCADE", ".cache/models/facefinder"),

		Logger: logger,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
