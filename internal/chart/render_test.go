package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG")

func TestRender(t *testing.T) {
	img, err := Render([]string{"2025-05-01", "2025-05-02"}, []float64{1800, 2300}, "Water")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderAllZero(t *testing.T) {
	img, err := Render([]string{"2025-05-02"}, []float64{0}, "Burned")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderRejectsBadInput(t *testing.T) {
	_, err := Render(nil, nil, "Water")
	assert.Error(t, err)

	_, err = Render([]string{"2025-05-01"}, []float64{1, 2}, "Water")
	assert.Error(t, err)
}
