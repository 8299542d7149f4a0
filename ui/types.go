// Package ui draws the heads-up display and menus over the 3D scene.
// Panels are described by field descriptors so the HUD layout can change
// alongside the game state it reads.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText    WidgetType = iota // Plain text with format string
	WidgetBar                       // Bar over Range, colored by fill ratio
	WidgetSection                   // Section header
	WidgetSpacer                    // Vertical spacing
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// Ratio maps v into [0, 1] over the range.
func (r FieldRange) Ratio(v float32) float32 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	t := (v - r.Min) / span
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID         string
	Label      string
	Widget     WidgetType
	Format     string // Printf format for text and bar values
	Range      FieldRange
	Inverted   bool              // Bar turns red as it fills instead of as it empties
	Visible    func(any) bool    // nil = always visible
	Getter     func(any) float32 // Numeric value
	TextGetter func(any) string  // Text value, wins over Getter for WidgetText
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Crosshair      rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 15, G: 18, B: 24, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Gold,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 90, B: 90, A: 255},
		BarFillMedium:  rl.Color{R: 210, G: 180, B: 90, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 110, A: 255},
		Crosshair:      rl.Color{R: 255, G: 255, B: 255, A: 200},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
		TitleFontSize:  40,
	}
}
