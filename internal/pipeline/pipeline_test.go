package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got := buildRunOutDir("out", "/videos/My Talk (final).mp4", now)
	dir, base := filepath.Split(got)
	assert.Equal(t, "out"+string(filepath.Separator), dir)
	assert.True(t, strings.HasPrefix(base, "my-talk-final-20260314-092653Z-"), base)

	// the suffix keeps two runs on the same input apart
	other := buildRunOutDir("out", "/videos/My Talk (final).mp4", now.Add(time.Nanosecond))
	assert.NotEqual(t, got, other)
}

func TestBuildRunOutDir_EmptyName(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := buildRunOutDir("out", "/videos/###.mp4", now)
	assert.True(t, strings.HasPrefix(filepath.Base(got), "input-"), got)
}

func TestNormalizePathSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Talk (final)", "my-talk-final"},
		{"  spaced  out  ", "spaced-out"},
		{"already-clean", "already-clean"},
		{"UPPER_case.v2", "upper-case-v2"},
		{"###", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePathSegment(tt.in))
		})
	}
}

func TestHashStable(t *testing.T) {
	assert.Equal(t, hash("abc"), hash("abc"))
	assert.NotEqual(t, hash("abc"), hash("abd"))
	assert.Len(t, hash("abc"), 12)
}

func validConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	video := filepath.Join(dir, "talk.mp4")
	transcript := filepath.Join(dir, "talk.json")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(transcript, []byte("[]"), 0o644))
	return Config{
		InputVideo:     video,
		TranscriptPath: transcript,
		MaxClips:       5,
		TargetLength:   60,
		FormatName:     "tiktok",
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestConfigValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty input", func(c *Config) { c.InputVideo = "" }},
		{"missing input", func(c *Config) { c.InputVideo = c.InputVideo + ".nope" }},
		{"empty transcript", func(c *Config) { c.TranscriptPath = "" }},
		{"missing transcript", func(c *Config) { c.TranscriptPath = c.TranscriptPath + ".nope" }},
		{"zero clips", func(c *Config) { c.MaxClips = 0 }},
		{"zero length", func(c *Config) { c.TargetLength = 0 }},
		{"unknown format", func(c *Config) { c.FormatName = "betamax" }},
		{"bad base url", func(c *Config) { c.OpenAIBaseURL = "http://evil.example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
