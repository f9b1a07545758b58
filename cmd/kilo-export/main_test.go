package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"kilo/internal/app"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVGLogsOnlyOnSuccess(t *testing.T) {
	cfg := app.NewConfig()
	cfg.Width, cfg.Height = 120, 90
	cfg.Reveal = false
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	session, err := cfg.Setup(logger)
	require.NoError(t, err)
	session.Step()

	require.Error(t, writeSVG(failingWriter{}, session, logger))
	assert.Zero(t, logs.FilterMessage("wrote svg").Len())

	var buf bytes.Buffer
	require.NoError(t, writeSVG(&buf, session, logger))
	assert.Contains(t, buf.String(), "</svg>")
	entries := logs.FilterMessage("wrote svg").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "paths")
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "kilo.svg", defaultName("svg", "mp4"))
	assert.Equal(t, "kilo.apng.png", defaultName("apng", "mp4"))
	assert.Equal(t, "kilo-frames", defaultName("frames", "mp4"))
	assert.Equal(t, "kilo.mov", defaultName("video", "mov"))
}
