// Package inspector shows the live state of the player and enemies by
// reflecting over their tagged fields.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/game"
)

// Panel dimensions
const (
	PanelWidth   = 340
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 235}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// section is a titled group of inspected values.
type section struct {
	title  string
	values []any
}

// patrolState is the per-actor route progress.
type patrolState struct {
	Target   int        `inspect:"label"`
	Waypoint mgl64.Vec3 `inspect:"vec,fmt:%.1f"`
	Distance float64    `inspect:"label,fmt:%.2f"`
	Caught   bool       `inspect:"bool"`
}

// Inspector cycles through the actors and draws the selected one.
type Inspector struct {
	selected int // 0 player, 1 homing, 2+ patrols
	panelX   int32
	panelY   int32
}

// NewInspector creates an inspector anchored to the top right.
func NewInspector(screenWidth int32) *Inspector {
	return &Inspector{
		panelX: screenWidth - PanelWidth - 10,
		panelY: 10,
	}
}

// Resize re-anchors the panel.
func (ins *Inspector) Resize(screenWidth int32) {
	ins.panelX = screenWidth - PanelWidth - 10
}

// HandleInput cycles the selection with [ and ].
func (ins *Inspector) HandleInput(w *game.World) {
	n := 2 + len(w.Patrols())
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		ins.selected = (ins.selected + 1) % n
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		ins.selected = (ins.selected + n - 1) % n
	}
	if ins.selected >= n {
		ins.selected = 0
	}
}

// Selected returns the index of the inspected actor.
func (ins *Inspector) Selected() int { return ins.selected }

// Draw renders the panel for the selected actor.
func (ins *Inspector) Draw(w *game.World) {
	title, sections := ins.collect(w)

	height := int32(HeaderHeight + PanelPadding*2)
	for _, s := range sections {
		height += 22
		for _, v := range s.values {
			height += int32(len(ExtractFields(v))) * 18
		}
		height += 6
	}

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLines(ins.panelX, ins.panelY, PanelWidth, height, ColorPanelBorder)
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(title, ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)
	rl.DrawText("[ ]", ins.panelX+PanelWidth-34, ins.panelY+8, 14, ColorSectionText)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding
	for _, s := range sections {
		rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
		rl.DrawText(s.title, x+2, y, 14, ColorSectionText)
		y += 22
		for _, v := range s.values {
			for _, f := range ExtractFields(v) {
				y += DrawField(x, y, f)
			}
		}
		y += 6
	}
}

func (ins *Inspector) collect(w *game.World) (string, []section) {
	pp := w.PlayerPosition()

	switch {
	case ins.selected == 0:
		var sections []section
		sections = append(sections, section{"POSE", []any{components.IdentityPose(pp)}})
		if p := w.Player(); p != nil {
			sections = append(sections, section{"CONTROLLER", []any{p}})
		}
		return "PLAYER", sections

	case ins.selected == 1:
		pose, ok := w.HomingPose()
		if !ok {
			return "BRAIN", nil
		}
		values := []any{pose}
		if vel, ok := w.HomingVelocity(); ok {
			values = append(values, vel)
		}
		return "BRAIN", []section{
			{"BODY", values},
			{"PURSUIT", []any{pursuit{
				Distance:   pose.Position.Sub(pp).Len(),
				HitCounter: w.HitCounter(),
				Caught:     w.IsPlayerHit(),
			}}},
		}
	}

	i := ins.selected - 2
	patrols := w.Patrols()
	if i >= len(patrols) {
		return "PATROL", nil
	}
	p := patrols[i]
	return fmt.Sprintf("PATROL %d", i+1), []section{
		{"BODY", []any{p.Pose()}},
		{"ROUTE", []any{patrolState{
			Target:   p.Index(),
			Waypoint: p.Target(),
			Distance: p.Target().Sub(p.Position()).Len(),
			Caught:   p.IsPlayerHit(pp),
		}}},
	}
}

type pursuit struct {
	Distance   float64 `inspect:"label,fmt:%.2f"`
	HitCounter int     `inspect:"label"`
	Caught     bool    `inspect:"bool"`
}
