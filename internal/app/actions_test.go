package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"kilo/internal/core"
	"kilo/internal/export"
	"kilo/internal/studio"
)

func testSession(t *testing.T) (*studio.Studio, *Config) {
	t.Helper()
	cfg := NewConfig()
	cfg.Width, cfg.Height = 120, 90
	cfg.Loop = 3
	cfg.Reveal = false
	cfg.OutDir = t.TempDir()
	s, err := cfg.Setup(zaptest.NewLogger(t))
	require.NoError(t, err)
	return s, cfg
}

func fixedClock(a *Actions) {
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
}

func TestCommandForRune(t *testing.T) {
	assert.Equal(t, CmdQuit, CommandForRune('q'))
	assert.Equal(t, CmdMode, CommandForRune('M'))
	assert.Equal(t, CmdGrow, CommandForRune('+'))
	assert.Equal(t, CmdShrink, CommandForRune('-'))
	assert.Equal(t, CmdNone, CommandForRune('z'))
}

func TestActionsAdjustSession(t *testing.T) {
	s, cfg := testSession(t)
	a := NewActions(s, cfg, zaptest.NewLogger(t))

	_, ok := a.Do(CmdQuit)
	assert.False(t, ok)

	msg, ok := a.Do(CmdMode)
	assert.True(t, ok)
	assert.Equal(t, "Mode icon", msg)
	assert.Equal(t, core.ModeIcon, s.Mode())

	zoom := s.Grid().Zoom()
	a.Do(CmdGrow)
	assert.InDelta(t, zoom+0.1, s.Grid().Zoom(), 1e-9)
	a.Do(CmdShrink)
	assert.InDelta(t, zoom, s.Grid().Zoom(), 1e-9)

	msg, _ = a.Do(CmdAnimate)
	assert.Equal(t, "Animate on", msg)

	msg, _ = a.Do(CmdCancel)
	assert.Empty(t, msg, "nothing to cancel")
}

func TestActionsSaveStills(t *testing.T) {
	s, cfg := testSession(t)
	a := NewActions(s, cfg, zaptest.NewLogger(t))
	fixedClock(a)
	s.Step()

	msg, _ := a.Do(CmdSVG)
	path := filepath.Join(cfg.OutDir, "kilo-20240501-123000.svg")
	assert.Equal(t, "Saved "+path, msg)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "</svg>"))

	msg, _ = a.Do(CmdPNG)
	assert.Equal(t, "Saved "+filepath.Join(cfg.OutDir, "kilo-20240501-123000.png"), msg)
}

func TestActionsLoopExport(t *testing.T) {
	s, cfg := testSession(t)
	a := NewActions(s, cfg, zaptest.NewLogger(t))
	fixedClock(a)

	msg, _ := a.Do(CmdLoop)
	assert.Equal(t, "Loop export started", msg)
	require.Eventually(t, func() bool { return !s.Exporting() }, 10*time.Second, 5*time.Millisecond)
	assert.Equal(t, export.StateDone, s.ExportProgress().State)
	assert.FileExists(t, filepath.Join(cfg.OutDir, "kilo-20240501-123000.apng.png"))
}

func TestTerminalDraw(t *testing.T) {
	s, cfg := testSession(t)
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(40, 16)

	term := NewTerminal(screen, s, cfg, zaptest.NewLogger(t))
	s.Step()
	term.Draw()

	// 120x90 canvas into 40x30 pixels: the top row is painted.
	mainc, _, _, _ := screen.GetContent(0, 0)
	assert.Equal(t, '▀', mainc)

	var status strings.Builder
	for x := 0; x < 5; x++ {
		r, _, _, _ := screen.GetContent(x, 15)
		status.WriteRune(r)
	}
	assert.Equal(t, "noise", status.String())

	assert.True(t, term.HandleEvent(tcell.NewEventResize(40, 16)))
}

func TestTerminalRunStopsWithContext(t *testing.T) {
	s, cfg := testSession(t)
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewTerminal(screen, s, cfg, nil).Run(ctx))
}
