//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"kilo/internal/core"
	"kilo/internal/export"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the parameter panel to the right of the canvas.
type HUD struct {
	session    Session
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot

	controls     []hudControlState
	selected     int
	panelOffsetX int

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for the session and panel width.
func NewHUD(s Session, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{session: s, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	controls := s.ParameterControls()
	h.controls = make([]hudControlState, len(controls))
	for i, ctrl := range controls {
		h.controls[i] = hudControlState{control: ctrl, value: "--"}
	}
	h.layoutControls()
	return h
}

// Width returns the panel width.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update refreshes the cached parameter snapshot and handles HUD
// interactions.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.snapshot = h.session.Parameters()
	h.refreshControlValues()
	h.handleKeys()
	h.handleMouse()
}

// Draw paints the HUD panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawControls()
	h.drawStats()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) title() string {
	return fmt.Sprintf("%s Controls", modeTitle(h.session.Mode()))
}

func modeTitle(m core.Mode) string {
	s := m.String()
	if s == "" {
		return "Grid"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *HUD) refreshControlValues() {
	paramMap := map[string]core.Parameter{}
	for _, group := range h.snapshot.Groups {
		for _, param := range group.Params {
			paramMap[param.Key] = param
		}
	}
	for i := range h.controls {
		state := &h.controls[i]
		state.hasValue = false
		state.value = "--"
		param, ok := paramMap[state.control.Key]
		if !ok {
			continue
		}
		switch state.control.Type {
		case core.ParamTypeInt:
			parsed, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue = parsed
			state.floatValue = float64(parsed)
			state.value = strconv.Itoa(parsed)
			state.hasValue = true
		case core.ParamTypeFloat:
			parsed, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = parsed
			state.value = formatFloat(state.control, parsed)
			state.hasValue = true
		case core.ParamTypeBool:
			parsed, err := strconv.ParseBool(param.Value)
			if err != nil {
				continue
			}
			state.boolValue = parsed
			state.value = "off"
			if parsed {
				state.value = "on"
			}
			state.hasValue = true
		}
	}
}

// handleKeys moves the selection with Tab and arrow keys and adjusts the
// selected control with left and right.
func (h *HUD) handleKeys() {
	n := len(h.controls)
	if n == 0 {
		return
	}
	back := ebiten.IsKeyPressed(ebiten.KeyShift)
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if back {
			h.selected = (h.selected + n - 1) % n
		} else {
			h.selected = (h.selected + 1) % n
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		h.selected = (h.selected + 1) % n
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		h.selected = (h.selected + n - 1) % n
	}
	state := &h.controls[h.selected]
	if !state.hasValue {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		h.applyAdjustment(state, -1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		h.applyAdjustment(state, 1)
	}
}

func (h *HUD) handleMouse() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) {
			h.selected = i
			h.applyAdjustment(state, -1)
			return
		}
		if pointInRect(px, my, state.plusRect) {
			h.selected = i
			h.applyAdjustment(state, 1)
			return
		}
	}
}

func (h *HUD) applyAdjustment(state *hudControlState, direction int) {
	if state == nil || direction == 0 || !h.canAdjust(state, direction) {
		return
	}
	switch state.control.Type {
	case core.ParamTypeInt:
		target := int(state.control.Clamp(float64(state.intValue + direction*intStep(state.control))))
		if target == state.intValue {
			return
		}
		if h.session.SetIntParameter(state.control.Key, target) {
			state.intValue = target
			state.floatValue = float64(target)
			state.value = strconv.Itoa(target)
		}
	case core.ParamTypeFloat:
		target := state.control.Clamp(state.floatValue + float64(direction)*floatStep(state.control))
		if math.Abs(target-state.floatValue) < 1e-9 {
			return
		}
		if h.session.SetFloatParameter(state.control.Key, target) {
			state.floatValue = target
			state.value = formatFloat(state.control, target)
		}
	case core.ParamTypeBool:
		if h.session.SetBoolParameter(state.control.Key, !state.boolValue) {
			state.boolValue = !state.boolValue
		}
	}
}

func (h *HUD) canAdjust(state *hudControlState, direction int) bool {
	if state == nil || direction == 0 {
		return false
	}
	switch state.control.Type {
	case core.ParamTypeInt:
		target := state.intValue + direction*intStep(state.control)
		if state.control.HasMin && direction < 0 && state.intValue <= int(math.Round(state.control.Min)) {
			return false
		}
		if state.control.HasMax && direction > 0 && state.intValue >= int(math.Round(state.control.Max)) {
			return false
		}
		return target != state.intValue
	case core.ParamTypeFloat:
		if state.control.HasMin && direction < 0 && state.floatValue <= state.control.Min+1e-9 {
			return false
		}
		if state.control.HasMax && direction > 0 && state.floatValue >= state.control.Max-1e-9 {
			return false
		}
		return true
	case core.ParamTypeBool:
		return true
	default:
		return false
	}
}

func intStep(ctrl core.ParameterControl) int {
	step := int(math.Round(ctrl.Step))
	if step <= 0 {
		step = 1
	}
	return step
}

func floatStep(ctrl core.ParameterControl) float64 {
	if ctrl.Step <= 0 {
		return 0.05
	}
	return ctrl.Step
}

func (h *HUD) drawControls() {
	if h.panel == nil {
		return
	}
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, h.title(), face, panelPadding, headerY, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, color.RGBA{R: 160, G: 160, B: 170, A: 255})
		return
	}
	for i := range h.controls {
		state := &h.controls[i]
		top := state.top
		labelColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if i == h.selected {
			labelColor = color.RGBA{R: 255, G: 214, B: 110, A: 255}
		}
		text.Draw(h.panel, state.control.Label, face, panelPadding, top+labelBaseline, labelColor)
		valueColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if !state.hasValue {
			valueColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
		}
		bounds := text.BoundString(face, state.value)
		valueX := state.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, state.value, face, valueX, top+labelBaseline, valueColor)

		h.drawButton(state.minusRect, "-", state.hasValue && h.canAdjust(state, -1))
		h.drawButton(state.plusRect, "+", state.hasValue && h.canAdjust(state, 1))
	}
}

// drawStats lists the cell counters, timing and export state below the
// controls.
func (h *HUD) drawStats() {
	face := basicfont.Face7x13
	col := color.RGBA{R: 170, G: 200, B: 180, A: 255}
	c := h.session.Grid().Counts()
	lines := []string{
		fmt.Sprintf("Cells %d  visible %d", c.Total, c.Visible),
		fmt.Sprintf("Drawn %d", c.NonZero),
		fmt.Sprintf("FPS %.0f  TPS %.0f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("Frame %d", h.session.Frame()),
	}
	if p := h.session.ExportProgress(); p.State != export.StateIdle {
		lines = append(lines, "Export "+ExportLine(p))
	}
	y := controlsTop + len(h.controls)*lineHeight + infoSpacing/2
	for _, line := range lines {
		if y > h.lastHeight-panelPadding {
			return
		}
		text.Draw(h.panel, line, face, panelPadding, y, col)
		y += statsLineHeight
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	precision := 1
	switch step := floatStep(ctrl); {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	boolValue  bool
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding    = 12
	lineHeight      = 30
	buttonSize      = 22
	buttonGap       = 6
	headerBaseline  = 18
	labelBaseline   = 20
	infoSpacing     = 36
	statsLineHeight = 18
	controlsTop     = panelPadding + headerBaseline + 14
)
