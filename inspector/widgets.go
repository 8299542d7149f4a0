package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

// Widget colors
var (
	ColorBarBg   = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarPos  = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarNeg  = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText    = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorBoolOn  = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// DrawLabel renders "name: value".
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	rl.DrawText(fmt.Sprintf("%s: %s", name, FormatValue(value, options["fmt"])), x, y, 14, ColorText)
	return 18
}

// DrawVec renders a 3-vector.
func DrawVec(x, y int32, name string, v mgl64.Vec3, options map[string]string) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)
	rl.DrawText(FormatVec(v, options["fmt"]), x+80, y, 14, ColorText)
	return 18
}

// DrawBar renders a horizontal bar over the min/max options. When the range
// spans zero the bar grows from the zero mark.
func DrawBar(x, y int32, name string, value float32, options map[string]string) int32 {
	lo, hi := GetRange(options)
	const barWidth, barHeight = int32(120), int32(14)
	barX := x + 80

	rl.DrawText(name, x, y, 14, ColorTextDim)
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	if hi > lo {
		pos := func(v float32) int32 {
			t := (v - lo) / (hi - lo)
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			return barX + int32(float32(barWidth)*t)
		}
		zero := pos(0)
		end := pos(value)
		color := ColorBarPos
		if end < zero {
			zero, end = end, zero
			color = ColorBarNeg
		}
		rl.DrawRectangle(zero, y, end-zero, barHeight, color)
	}

	rl.DrawText(FormatValue(value, options["fmt"]), barX+barWidth+5, y, 14, ColorTextDim)
	return 18
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	color, text := ColorBoolOff, "OFF"
	if value {
		color, text = ColorBoolOn, "ON"
	}
	rl.DrawRectangle(x+80, y, 14, 14, color)
	rl.DrawText(text, x+99, y, 14, color)
	return 18
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	switch field.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(field.Value); ok {
			return DrawBar(x, y, field.Name, v, field.Options)
		}
	case WidgetVec:
		if v, ok := field.Value.(mgl64.Vec3); ok {
			return DrawVec(x, y, field.Name, v, field.Options)
		}
	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return DrawBool(x, y, field.Name, v)
		}
	}
	return DrawLabel(x, y, field.Name, field.Value, field.Options)
}
