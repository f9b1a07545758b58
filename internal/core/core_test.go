package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMode(" Image ")
	require.NoError(t, err)
	assert.Equal(t, ModeBrightness, got)

	_, err = ParseMode("video")
	assert.Error(t, err)
}

func TestModeCycle(t *testing.T) {
	assert.Equal(t, ModeIcon, ModeNoise.Next())
	assert.Equal(t, ModeBrightness, ModeIcon.Next())
	assert.Equal(t, ModeNoise, ModeBrightness.Next())
	assert.False(t, ModeNoise.UsesImage())
	assert.True(t, ModeIcon.UsesImage())
	assert.True(t, ModeBrightness.UsesImage())
}

func TestViewportPixels(t *testing.T) {
	w, h := Viewport{W: 666.6, H: 1000}.Pixels()
	assert.Equal(t, 667, w)
	assert.Equal(t, 1000, h)
	assert.True(t, Viewport{W: 0, H: 10}.Empty())
}

func TestFixedStepCountsDueTicks(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }

	// The first call fires immediately: the accumulator starts primed.
	require.Equal(t, 1, fs.Steps(5))
	require.Equal(t, 0, fs.Steps(5))

	clock = clock.Add(250 * time.Millisecond)
	assert.Equal(t, 2, fs.Steps(5))

	clock = clock.Add(10 * time.Second)
	assert.Equal(t, 5, fs.Steps(5), "catch-up must be capped")
	assert.Equal(t, 0, fs.Steps(5), "backlog is dropped after a capped catch-up")
}

func TestRNGDeterministic(t *testing.T) {
	a, b := NewRNG(7), NewRNG(7)
	for range 16 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
	assert.False(t, a.Chance(0))
	assert.True(t, a.Chance(1))
}

func TestParameterControlClamp(t *testing.T) {
	c := ParameterControl{Min: 0, Max: 1, HasMin: true, HasMax: true}
	assert.Equal(t, 0.0, c.Clamp(-3))
	assert.Equal(t, 1.0, c.Clamp(3))
	assert.Equal(t, 0.4, c.Clamp(0.4))

	snap := ParameterSnapshot{Groups: []ParameterGroup{{Name: "g", Params: []Parameter{{Key: "zoom", Value: "0.2"}}}}}
	p, ok := snap.Lookup("zoom")
	require.True(t, ok)
	assert.Equal(t, "0.2", p.Value)
}
