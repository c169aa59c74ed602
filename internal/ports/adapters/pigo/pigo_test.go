package pigo

import (
	"testing"

	pigocore "github.com/esimov/pigo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFaceDetections(t *testing.T) {
	dets := []pigocore.Detection{
		{Row: 300, Col: 500, Scale: 200, Q: 12.5},
		{Row: 100, Col: 100, Scale: 80, Q: 2.0},  // below quality floor
		{Row: 100, Col: 100, Scale: 0, Q: 20.0},  // degenerate scale
		{Row: 40, Col: 30, Scale: 120, Q: 7.0},   // near the top-left edge
	}

	got := toFaceDetections(dets, 1920, 1080)
	require.Len(t, got, 2)

	assert.Equal(t, 400, got[0].X)
	assert.Equal(t, 200, got[0].Y)
	assert.Equal(t, 200, got[0].Width)
	assert.Equal(t, 200, got[0].Height)
	assert.Greater(t, got[0].Confidence, 0.0)

	// edge detection clamps to the frame instead of going negative
	assert.Equal(t, 0, got[1].X)
	assert.Equal(t, 0, got[1].Y)
}

func TestToFaceDetections_Empty(t *testing.T) {
	assert.Empty(t, toFaceDetections(nil, 1920, 1080))
}
