package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/brainmaze/camera"
	"github.com/pthm-cable/brainmaze/systems"
)

var movementKeys = []struct {
	key    int32
	intent systems.Intent
}{
	{rl.KeyW, systems.IntentForward},
	{rl.KeyS, systems.IntentBackward},
	{rl.KeyA, systems.IntentLeft},
	{rl.KeyD, systems.IntentRight},
	{rl.KeySpace, systems.IntentJump},
	{rl.KeyLeftShift, systems.IntentDash},
}

// ReadIntent collects this frame's movement keys.
func ReadIntent() systems.Intent {
	intent := systems.IntentNone
	for _, m := range movementKeys {
		if rl.IsKeyDown(m.key) {
			intent |= m.intent
		}
	}
	return intent
}

// Look feeds the mouse delta into cam while the cursor is captured.
// Screen Y grows downward, so the vertical delta is negated.
func Look(cam *camera.FPS) {
	if !rl.IsCursorHidden() {
		return
	}
	d := rl.GetMouseDelta()
	cam.ProcessMouseMovement(float64(d.X), float64(-d.Y))
}

// HandleCursorToggle releases or captures the cursor when 2 is pressed.
func HandleCursorToggle() {
	if !rl.IsKeyPressed(rl.KeyTwo) {
		return
	}
	if rl.IsCursorHidden() {
		rl.EnableCursor()
	} else {
		rl.DisableCursor()
	}
}
