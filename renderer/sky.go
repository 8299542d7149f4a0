package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// SkyRenderer fills the screen with a vertical gradient that reddens as the
// threat rises.
type SkyRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color
	danger           rl.Color
}

// NewSkyRenderer creates a sky for the given screen size.
func NewSkyRenderer(screenW, screenH int32) *SkyRenderer {
	return &SkyRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     rl.Color{R: 18, G: 22, B: 40, A: 255},
		bottom:  rl.Color{R: 70, G: 80, B: 110, A: 255},
		danger:  rl.Color{R: 120, G: 20, B: 30, A: 255},
	}
}

// Resize updates the screen size.
func (s *SkyRenderer) Resize(w, h int32) {
	s.screenW, s.screenH = w, h
}

// Draw clears the frame with the gradient. threat is clamped to [0, 1].
func (s *SkyRenderer) Draw(threat float32) {
	if threat < 0 {
		threat = 0
	}
	if threat > 1 {
		threat = 1
	}
	rl.ClearBackground(s.top)
	rl.DrawRectangleGradientV(0, 0, s.screenW, s.screenH, s.top, lerpColor(s.bottom, s.danger, threat))
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}
