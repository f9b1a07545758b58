//go:build ebiten

package app

import (
	"image/color"
	"io/fs"

	"go.uber.org/zap"

	"kilo/internal/render"
	"kilo/internal/studio"
	"kilo/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUDWidth is the width of the parameter panel.
const HUDWidth = 280

// messageTicks is how long a status message stays on screen.
const messageTicks = 180

var keyCommands = []struct {
	key ebiten.Key
	cmd Command
}{
	{ebiten.KeyQ, CmdQuit},
	{ebiten.KeyEscape, CmdQuit},
	{ebiten.KeyEqual, CmdGrow},
	{ebiten.KeyKPAdd, CmdGrow},
	{ebiten.KeyMinus, CmdShrink},
	{ebiten.KeyKPSubtract, CmdShrink},
	{ebiten.KeyM, CmdMode},
	{ebiten.KeyC, CmdSwatch},
	{ebiten.KeyA, CmdAnimate},
	{ebiten.KeyD, CmdDiscrete},
	{ebiten.KeyR, CmdReveal},
	{ebiten.KeyS, CmdSVG},
	{ebiten.KeyP, CmdPNG},
	{ebiten.KeyL, CmdLoop},
	{ebiten.KeyV, CmdVideo},
	{ebiten.KeyX, CmdCancel},
}

// Game adapts a studio session to the ebiten.Game interface.
type Game struct {
	session *studio.Studio
	actions *Actions
	log     *zap.Logger

	target  *ebiten.Image
	pen     *render.Canvas
	hud     *ui.HUD
	overlay *ui.Overlay
	showHUD bool

	message      string
	messageTicks int
}

// New constructs a Game for the session.
func New(s *studio.Studio, cfg *Config, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{
		session: s,
		actions: NewActions(s, cfg, log),
		log:     log,
		hud:     ui.NewHUD(s, HUDWidth),
		overlay: ui.NewOverlay(s),
		showHUD: true,
	}
}

// Update handles per-frame input and advances the session.
func (g *Game) Update() error {
	for _, kc := range keyCommands {
		if !inpututil.IsKeyJustPressed(kc.key) {
			continue
		}
		msg, ok := g.actions.Do(kc.cmd)
		if !ok {
			return ebiten.Termination
		}
		if msg != "" {
			g.notify(msg)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	g.loadDropped()

	if g.overlay != nil {
		g.overlay.Update()
	}
	if g.showHUD {
		w, _ := g.session.Canvas().Pixels()
		g.hud.Update(w)
	}

	g.session.Step()
	if g.messageTicks > 0 {
		g.messageTicks--
	}
	return nil
}

func (g *Game) notify(msg string) {
	g.message = msg
	g.messageTicks = messageTicks
}

// loadDropped loads the first file dropped onto the window.
func (g *Game) loadDropped() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	entries, err := fs.ReadDir(files, ".")
	if err != nil || len(entries) == 0 {
		return
	}
	name := entries[0].Name()
	f, err := files.Open(name)
	if err != nil {
		g.notify("Cannot open " + name)
		return
	}
	defer f.Close()
	if err := g.session.LoadImage(f); err != nil {
		g.log.Warn("image rejected", zap.String("name", name), zap.Error(err))
		g.notify("Image rejected: " + err.Error())
		return
	}
	g.notify("Loaded " + name)
}

// Draw renders the session, the overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	w, h := g.session.Canvas().Pixels()
	if w <= 0 || h <= 0 {
		return
	}
	if g.target == nil || g.target.Bounds().Dx() != w || g.target.Bounds().Dy() != h {
		g.target = ebiten.NewImage(w, h)
		g.pen = render.NewCanvas(g.target)
	}
	g.session.Render(g.pen)
	screen.DrawImage(g.target, &ebiten.DrawImageOptions{})
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	if g.showHUD {
		g.hud.Draw(screen, w, h)
	}
	if g.messageTicks > 0 {
		text.Draw(screen, g.message, basicfont.Face7x13, 12, h-12, color.RGBA{R: 230, G: 230, B: 240, A: 255})
	}
}

// Layout returns the logical screen size: the canvas plus the HUD panel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.session.Canvas().Pixels()
	if g.showHUD {
		w += g.hud.Width()
	}
	return w, h
}

// WindowSize returns a window size that fits the layout on typical screens.
func (g *Game) WindowSize() (int, int) {
	w, h := g.Layout(0, 0)
	const maxSide = 900
	if h > maxSide {
		w = w * maxSide / h
		h = maxSide
	}
	return w, h
}
