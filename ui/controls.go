package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel lists the overlays and their toggle keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	rows := 0
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	height := int32(rows+1)*lineHeight + padding*2 + int32(len(categories))*4
	r.DrawPanel(c.x, c.y, c.width, height)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, r.Theme.HeaderFontSize, rl.White)
	y += lineHeight

	for _, category := range categories {
		y = r.DrawSectionHeader(c.x+padding, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return c.y + height
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	status := rl.Color{R: 80, G: 80, B: 80, A: 255}
	name := r.Theme.LabelColor
	if enabled {
		status = r.Theme.BarFillHigh
		name = rl.White
	}
	rl.DrawRectangle(x, y+3, 8, 8, status)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, name)

	if desc.KeyLabel != "" {
		key := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(key, r.Theme.FontSize)
		rl.DrawText(key, x+width-keyWidth, y, r.Theme.FontSize, rl.Gray)
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "scene":
		return "Scene"
	case "panels":
		return "Panels"
	}
	return cat
}

// MenuAction is what the player picked on the end-of-round screen.
type MenuAction int

const (
	MenuNone MenuAction = iota
	MenuRestart
	MenuQuit
)

// EndScreenData describes the round that just ended.
type EndScreenData struct {
	Won         bool
	Reason      string // "caught" or "fell" on a loss
	Round       int
	Score       int
	SurvivalSec float64
	Sensitivity float32 // current mouse sensitivity, editable on this screen
}

// EndScreen is the game-over and win menu.
type EndScreen struct {
	renderer *Renderer
}

// NewEndScreen creates the end-of-round menu.
func NewEndScreen() *EndScreen {
	return &EndScreen{renderer: NewRenderer()}
}

// Draw renders the menu over a dimmed frame. It returns the chosen action
// and the sensitivity after any slider change. Enter also restarts.
func (e *EndScreen) Draw(data EndScreenData, screenWidth, screenHeight int32) (MenuAction, float32) {
	r := e.renderer
	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.Color{R: 0, G: 0, B: 0, A: 150})

	const panelW, panelH = 420, 280
	px := screenWidth/2 - panelW/2
	py := screenHeight/2 - panelH/2
	r.DrawPanel(px, py, panelW, panelH)

	title, color := "GAME OVER", rl.Red
	if data.Won {
		title, color = "YOU ESCAPED", rl.Green
	}
	cx := screenWidth / 2
	y := py + r.Theme.Padding*2
	r.DrawCentered(title, cx, y, r.Theme.TitleFontSize, color)
	y += r.Theme.TitleFontSize + 8

	if !data.Won && data.Reason != "" {
		r.DrawCentered(reasonText(data.Reason), cx, y, r.Theme.HeaderFontSize, r.Theme.LabelColor)
	}
	y += r.Theme.LineHeight + 6

	lx := px + 40
	y = r.DrawLabelValue(lx, y, "Round", fmt.Sprintf("%d", data.Round))
	y = r.DrawLabelValue(lx, y, "Score", fmt.Sprintf("%d", data.Score))
	y = r.DrawLabelValue(lx, y, "Survived", fmt.Sprintf("%.1fs", data.SurvivalSec))
	y += 6

	rl.DrawText("Mouse sensitivity", lx, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	sens := gui.SliderBar(
		rl.Rectangle{X: float32(lx), Y: float32(y), Width: panelW - 140, Height: 18},
		"", fmt.Sprintf("%.2f", data.Sensitivity),
		data.Sensitivity, 0.02, 0.5,
	)
	y += 34

	action := MenuNone
	if gui.Button(rl.Rectangle{X: float32(lx), Y: float32(y), Width: 150, Height: 32}, "Restart") || rl.IsKeyPressed(rl.KeyEnter) {
		action = MenuRestart
	}
	if gui.Button(rl.Rectangle{X: float32(px + panelW - 40 - 150), Y: float32(y), Width: 150, Height: 32}, "Quit") {
		action = MenuQuit
	}
	return action, sens
}

func reasonText(reason string) string {
	switch reason {
	case "caught":
		return "The brain caught you"
	case "fell":
		return "You fell out of the maze"
	}
	return reason
}
