package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/clipforge/clipforge/internal/domain/clips"
	"github.com/clipforge/clipforge/internal/domain/transcript"
	"github.com/clipforge/clipforge/internal/types"
)

const defaultModel = "gpt-4.1-mini"

// Adapter talks to an OpenAI-compatible chat completion endpoint for
// candidate scoring and suggestion generation.
type Adapter struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func New(apiKey, model, baseURL string, log zerolog.Logger) *Adapter {
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = normalizeBaseURL(baseURL)
	}
	return &Adapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

// SelectCandidates asks the model for engaging clip windows and
// enforces the candidate-set invariants on whatever comes back.
// Scoring failures of any kind degrade to an empty slice so the
// pipeline can continue without clips; only caller cancellation is
// surfaced as an error.
func (a *Adapter) SelectCandidates(
	ctx context.Context,
	segments []types.TranscriptSegment,
	targetLengthSec int,
	maxCandidates int,
) ([]types.ClipCandidate, error) {
	if len(segments) == 0 || maxCandidates <= 0 {
		return nil, nil
	}

	prompt := buildSelectionPrompt(segments, targetLengthSec, maxCandidates)
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		a.log.Warn().Err(err).Msg("clip scoring request failed; continuing without candidates")
		return nil, nil
	}
	if len(resp.Choices) == 0 {
		a.log.Warn().Msg("clip scoring returned no choices; continuing without candidates")
		return nil, nil
	}

	raw, err := ExtractJSONArray(resp.Choices[0].Message.Content)
	if err != nil {
		a.log.Warn().Err(err).Msg("clip scoring response was not parsable JSON; continuing without candidates")
		return nil, nil
	}

	var cands []types.ClipCandidate
	if err := json.Unmarshal([]byte(raw), &cands); err != nil {
		a.log.Warn().Err(err).Msg("clip scoring response did not match candidate schema; continuing without candidates")
		return nil, nil
	}

	for i := range cands {
		if strings.TrimSpace(cands[i].PreviewText) == "" {
			cands[i].PreviewText = transcript.TextRange(segments, cands[i].StartSeconds, cands[i].EndSeconds)
		}
	}

	sourceDuration := transcript.Duration(segments)
	out := clips.Sanitize(cands, sourceDuration, targetLengthSec, maxCandidates)
	a.log.Debug().
		Int("returned", len(cands)).
		Int("kept", len(out)).
		Msg("clip candidates sanitized")
	return out, nil
}

// GenerateSuggestions derives publishing assets from the transcript.
// Unlike scoring, suggestions are explicit opt-in, so errors surface
// to the caller.
func (a *Adapter) GenerateSuggestions(ctx context.Context, segments []types.TranscriptSegment) (types.Suggestions, error) {
	if len(segments) == 0 {
		return types.Suggestions{}, errors.New("empty transcript")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildSuggestionsPrompt(segments)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return types.Suggestions{}, fmt.Errorf("suggestions request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.Suggestions{}, errors.New("suggestions request returned no choices")
	}

	raw, err := ExtractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return types.Suggestions{}, fmt.Errorf("parse suggestions: %w", err)
	}
	var out types.Suggestions
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return types.Suggestions{}, fmt.Errorf("parse suggestions: %w", err)
	}
	return out, nil
}

func buildSelectionPrompt(segments []types.TranscriptSegment, targetLengthSec, maxCandidates int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pick up to %d windows of this video transcript that would work as standalone short-form clips.\n\n", maxCandidates)
	fmt.Fprintf(&b, "Target clip length: %d seconds, allowed to drift by up to %.0f seconds to end on a complete thought.\n", targetLengthSec, clips.TargetTolerance)
	b.WriteString("Windows must not overlap each other. Favor strong openings, self-contained payoffs, and moments that need no surrounding context.\n\n")
	b.WriteString("Reply with only a JSON array, no fences and no commentary. Each element:\n")
	b.WriteString(`{"start_time": 45.0, "end_time": 98.0, "duration": 53.0, "reason": "...", "hook_text": "...", "engagement_score": 8.5, "transcript_preview": "..."}`)
	b.WriteString("\n\nstart_time and end_time are seconds from the beginning; engagement_score is 0-10.\n\nTranscript:\n")
	b.WriteString(transcript.Format(segments))
	return b.String()
}

func buildSuggestionsPrompt(segments []types.TranscriptSegment) string {
	var b strings.Builder
	b.WriteString("Draft publishing assets for the video transcribed below.\n")
	b.WriteString("Reply with only a JSON object, no fences and no commentary, shaped as:\n")
	b.WriteString(`{"titles": ["..."], "description": "...", "thumbnail_prompt": "...", "social_posts": ["..."]}`)
	b.WriteString("\n\nGive 3-5 title options, a one-paragraph description, a short thumbnail text idea, and 2-3 social posts.\n\nTranscript:\n")
	b.WriteString(transcript.Format(segments))
	return b.String()
}
