package ui

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/telemetry"
)

// HUDData holds everything the in-game HUD shows.
type HUDData struct {
	Round          int
	Score          int
	HitCounter     int
	MaxHitCounter  int
	Elapsed        float64
	Dash           string
	Grounded       bool
	HomingDistance float64
	HitRadius      float64
	KeyDistance    float64
	Tick           int32
	FPS            int32
}

var sessionSection = SectionDescriptor{
	ID:    "session",
	Title: "Run",
	Fields: []FieldDescriptor{
		{ID: "round", Label: "Round", Widget: WidgetText, Format: "%.0f",
			Getter: func(d any) float32 { return float32(d.(HUDData).Round) }},
		{ID: "score", Label: "Score", Widget: WidgetText, Format: "%.0f",
			Getter: func(d any) float32 { return float32(d.(HUDData).Score) }},
		{ID: "time", Label: "Time", Widget: WidgetText,
			TextGetter: func(d any) string { return fmt.Sprintf("%.1fs", d.(HUDData).Elapsed) }},
		{ID: "threat", Label: "Threat", Widget: WidgetBar, Format: "%.0f", Inverted: true,
			Getter: func(d any) float32 { return float32(d.(HUDData).HitCounter) }},
	},
}

var playerSection = SectionDescriptor{
	ID:    "player",
	Title: "Player",
	Fields: []FieldDescriptor{
		{ID: "dash", Label: "Dash", Widget: WidgetText,
			TextGetter: func(d any) string { return d.(HUDData).Dash }},
		{ID: "ground", Label: "Ground", Widget: WidgetText,
			TextGetter: func(d any) string {
				if d.(HUDData).Grounded {
					return "grounded"
				}
				return "airborne"
			}},
		{ID: "brain", Label: "Brain", Widget: WidgetText,
			TextGetter: func(d any) string { return fmt.Sprintf("%.1fm", d.(HUDData).HomingDistance) }},
		{ID: "key", Label: "Key", Widget: WidgetText,
			Visible:    func(d any) bool { return d.(HUDData).KeyDistance >= 0 },
			TextGetter: func(d any) string { return fmt.Sprintf("%.1fm", d.(HUDData).KeyDistance) }},
	},
}

// HUD renders the in-game heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a HUD whose panel is width pixels wide.
func NewHUD(width int32) *HUD {
	return &HUD{renderer: NewRenderer(), width: width}
}

// Draw renders the status panel, the crosshair and a proximity warning.
func (h *HUD) Draw(data HUDData, screenWidth, screenHeight int32) {
	r := h.renderer
	pad := r.Theme.Padding

	session := sessionSection
	session.Fields = append([]FieldDescriptor(nil), sessionSection.Fields...)
	session.Fields[3].Range = FieldRange{Min: 0, Max: float32(data.MaxHitCounter)}

	height := r.SectionHeight(session, data) + r.SectionHeight(playerSection, data) + pad*2
	r.DrawPanel(pad, pad, h.width, height)
	y := r.DrawSection(pad*2, pad*2, session, data, h.width-pad*2)
	r.DrawSection(pad*2, y, playerSection, data, h.width-pad*2)

	cx, cy := screenWidth/2, screenHeight/2
	rl.DrawLine(cx-8, cy, cx+8, cy, r.Theme.Crosshair)
	rl.DrawLine(cx, cy-8, cx, cy+8, r.Theme.Crosshair)

	if data.HitRadius > 0 && data.HomingDistance < 3*data.HitRadius {
		r.DrawCentered("IT'S RIGHT BEHIND YOU", cx, pad*2, r.Theme.HeaderFontSize+4, rl.Red)
	}

	rl.DrawText(fmt.Sprintf("tick %d  %d fps", data.Tick, data.FPS), pad, screenHeight-22, 12, rl.Gray)
}

// DrawControls renders the control legend at the bottom right.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	w := rl.MeasureText(controls, 14)
	rl.DrawText(controls, screenWidth-w-10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the step phase timings.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: systems.NewSystemRegistry(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel, grouping phases by category in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	categories := p.registry.Categories()
	lineHeight := int32(14)
	height := r.Theme.Padding*2 + 40 + int32(len(p.registry.IDs())+len(categories))*lineHeight
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 18

	for _, cat := range categories {
		rl.DrawText(strings.ToUpper(cat), x, y, 12, r.Theme.SectionHeader)
		y += lineHeight
		for _, info := range p.registry.ByCategory(cat) {
			pct := stats.PhasePct[info.ID]
			color := rl.LightGray
			if pct > 40 {
				color = rl.Red
			} else if pct > 20 {
				color = rl.Orange
			}
			rl.DrawText(
				fmt.Sprintf("  %-10s %8s %5.1f%%", info.Name, stats.PhaseAvg[info.ID].Round(time.Microsecond), pct),
				x, y, 12, color,
			)
			y += lineHeight
		}
	}
}
