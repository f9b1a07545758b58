package app

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"kilo/internal/core"
	"kilo/internal/render"
	"kilo/internal/studio"
	"kilo/internal/ui"
)

// maxCatchUp bounds the ticks run for one redraw after a stall.
const maxCatchUp = 4

// Terminal previews a session in a tcell screen using half-block pixels.
type Terminal struct {
	screen  tcell.Screen
	session *studio.Studio
	actions *Actions
	step    *core.FixedStep
	log     *zap.Logger

	message string
	expires time.Time
}

// NewTerminal prepares a preview on an initialised screen.
func NewTerminal(screen tcell.Screen, s *studio.Studio, cfg *Config, log *zap.Logger) *Terminal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Terminal{
		screen:  screen,
		session: s,
		actions: NewActions(s, cfg, log),
		step:    core.NewFixedStep(cfg.TPS),
		log:     log,
	}
}

// Run steps and draws the session until the user quits or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(t.step.Interval())
	defer ticker.Stop()
	t.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !t.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			for n := t.step.Steps(maxCatchUp); n > 0; n-- {
				t.session.Step()
			}
			t.Draw()
		}
	}
}

// HandleEvent applies one terminal event. It reports false on quit.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		cmd := CmdNone
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			cmd = CmdQuit
		case tcell.KeyRune:
			cmd = CommandForRune(ev.Rune())
		}
		msg, ok := t.actions.Do(cmd)
		if msg != "" {
			t.notify(msg)
		}
		return ok
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *Terminal) notify(msg string) {
	t.message = msg
	t.expires = time.Now().Add(3 * time.Second)
}

// Draw renders the session into all but the last terminal row and writes a
// status line below it.
func (t *Terminal) Draw() {
	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 1 {
		return
	}
	t.screen.Clear()
	view := t.session.Canvas()
	r, k := render.TerminalRaster(cols, rows-1, view.W, view.H)
	if k > 0 {
		t.session.Render(render.Scaled{Backend: r, K: k})
		render.Blit(t.screen, r.Image())
	}

	line := ui.StatusLine(t.session)
	if t.session.NeedsImage() {
		line = "Select an image with -image | " + line
	}
	if t.message != "" && time.Now().Before(t.expires) {
		line = t.message + " | " + line
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	x := 0
	for _, ch := range line {
		if x >= cols {
			break
		}
		t.screen.SetContent(x, rows-1, ch, nil, style)
		x++
	}
	t.screen.Show()
}
