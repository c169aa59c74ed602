package clips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/types"
)

func cand(start, end, score float64) types.ClipCandidate {
	return types.ClipCandidate{
		StartSeconds:    start,
		EndSeconds:      end,
		Duration:        end - start,
		EngagementScore: score,
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		c    types.ClipCandidate
		src  float64
		want bool
	}{
		{"ok", cand(10, 70, 8), 600, true},
		{"negative start", cand(-1, 50, 8), 600, false},
		{"end before start", cand(50, 40, 8), 600, false},
		{"end equals start", cand(50, 50, 8), 600, false},
		{"past source end", cand(550, 650, 8), 600, false},
		{"unknown source skips upper bound", cand(550, 650, 8), 0, true},
		{"duration drift within tolerance", types.ClipCandidate{StartSeconds: 0, EndSeconds: 60, Duration: 60.9}, 600, true},
		{"duration drift beyond tolerance", types.ClipCandidate{StartSeconds: 0, EndSeconds: 60, Duration: 62}, 600, false},
		{"zero duration field", types.ClipCandidate{StartSeconds: 0, EndSeconds: 60, Duration: 0}, 600, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.c, tt.src))
		})
	}
}

func TestOverlap(t *testing.T) {
	assert.True(t, Overlap(cand(0, 60, 0), cand(30, 90, 0)))
	assert.True(t, Overlap(cand(30, 90, 0), cand(0, 60, 0)))
	// touching endpoints do not overlap
	assert.False(t, Overlap(cand(0, 60, 0), cand(60, 120, 0)))
	assert.False(t, Overlap(cand(0, 60, 0), cand(120, 180, 0)))
}

func TestSanitize_DropsInvalidBeforeCap(t *testing.T) {
	in := []types.ClipCandidate{
		cand(-5, 40, 9),   // invalid: negative start
		cand(500, 700, 9), // invalid: past source end
		cand(10, 70, 7),
		cand(100, 160, 6),
	}
	out := Sanitize(in, 600, 0, 5)
	require.Len(t, out, 2)
	assert.Equal(t, 10.0, out[0].StartSeconds)
	assert.Equal(t, 100.0, out[1].StartSeconds)
}

func TestSanitize_OrdersByScoreDescending(t *testing.T) {
	in := []types.ClipCandidate{
		cand(0, 60, 5),
		cand(200, 260, 9),
		cand(100, 160, 7),
	}
	out := Sanitize(in, 600, 0, 5)
	require.Len(t, out, 3)
	assert.Equal(t, []float64{9, 7, 5}, []float64{
		out[0].EngagementScore, out[1].EngagementScore, out[2].EngagementScore,
	})
}

func TestSanitize_TieBreaksByEarlierStart(t *testing.T) {
	in := []types.ClipCandidate{
		cand(300, 360, 8),
		cand(100, 160, 8),
	}
	out := Sanitize(in, 600, 0, 5)
	require.Len(t, out, 2)
	assert.Equal(t, 100.0, out[0].StartSeconds)
	assert.Equal(t, 300.0, out[1].StartSeconds)
}

func TestSanitize_HigherScoreWinsOverlap(t *testing.T) {
	in := []types.ClipCandidate{
		cand(0, 60, 6),
		cand(30, 90, 9), // overlaps the first, higher score
		cand(200, 260, 5),
	}
	out := Sanitize(in, 600, 0, 5)
	require.Len(t, out, 2)
	assert.Equal(t, 30.0, out[0].StartSeconds)
	assert.Equal(t, 9.0, out[0].EngagementScore)
	assert.Equal(t, 200.0, out[1].StartSeconds)
}

func TestSanitize_Truncates(t *testing.T) {
	in := []types.ClipCandidate{
		cand(0, 60, 9),
		cand(100, 160, 8),
		cand(200, 260, 7),
		cand(300, 360, 6),
	}
	out := Sanitize(in, 600, 0, 2)
	require.Len(t, out, 2)
	assert.Equal(t, 9.0, out[0].EngagementScore)
	assert.Equal(t, 8.0, out[1].EngagementScore)
}

func TestSanitize_ClampsScores(t *testing.T) {
	in := []types.ClipCandidate{
		cand(0, 60, 15),
		cand(100, 160, -3),
	}
	out := Sanitize(in, 600, 0, 5)
	require.Len(t, out, 2)
	assert.Equal(t, 10.0, out[0].EngagementScore)
	assert.Equal(t, 0.0, out[1].EngagementScore)
}

func TestSanitize_TargetLengthWindow(t *testing.T) {
	in := []types.ClipCandidate{
		cand(0, 60, 9),    // on target
		cand(100, 145, 8), // 45s, at the short edge
		cand(200, 275, 7), // 75s, at the long edge
		cand(400, 430, 6), // 30s, too short
		cand(500, 590, 5), // 90s, too long
	}
	out := Sanitize(in, 900, 60, 10)
	require.Len(t, out, 3)
	for _, c := range out {
		d := c.EndSeconds - c.StartSeconds
		assert.GreaterOrEqual(t, d, 45.0)
		assert.LessOrEqual(t, d, 75.0)
	}

	// zero target disables the window
	out = Sanitize(in, 900, 0, 10)
	assert.Len(t, out, 5)
}

func TestSanitize_Empty(t *testing.T) {
	assert.Empty(t, Sanitize(nil, 600, 0, 5))
	assert.Empty(t, Sanitize([]types.ClipCandidate{cand(0, 60, 9)}, 600, 0, 0))
}
