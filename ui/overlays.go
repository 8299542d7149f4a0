package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Debug overlays drawn over the maze.
const (
	OverlayHitboxes  OverlayID = "hitboxes"
	OverlayHitRadii  OverlayID = "hit_radii"
	OverlayRoutes    OverlayID = "routes"
	OverlayPerf      OverlayID = "perf"
	OverlayInspector OverlayID = "inspector"
	OverlayControls  OverlayID = "controls"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string
	Category    string // "scene" or "panels"
	Exclusive   []OverlayID
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the debug overlays, all off.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}

	reg.Register(OverlayDescriptor{
		ID: OverlayHitboxes, Name: "Hitboxes", Description: "Wireframe every static collider, hidden ones included",
		Key: rl.KeyF1, KeyLabel: "F1", Category: "scene",
	})
	reg.Register(OverlayDescriptor{
		ID: OverlayHitRadii, Name: "Hit Radii", Description: "Spheres at each enemy's hit distance",
		Key: rl.KeyF2, KeyLabel: "F2", Category: "scene",
	})
	reg.Register(OverlayDescriptor{
		ID: OverlayRoutes, Name: "Patrol Routes", Description: "Waypoint loops and current targets",
		Key: rl.KeyF3, KeyLabel: "F3", Category: "scene",
	})
	// Perf and inspector share the right-hand column.
	reg.Register(OverlayDescriptor{
		ID: OverlayPerf, Name: "Performance", Description: "Average time per step phase",
		Key: rl.KeyF4, KeyLabel: "F4", Category: "panels", Exclusive: []OverlayID{OverlayInspector},
	})
	reg.Register(OverlayDescriptor{
		ID: OverlayInspector, Name: "Inspector", Description: "Player and enemy state",
		Key: rl.KeyF5, KeyLabel: "F5", Category: "panels", Exclusive: []OverlayID{OverlayPerf},
	})
	reg.Register(OverlayDescriptor{
		ID: OverlayControls, Name: "Overlay List", Description: "This list",
		Key: rl.KeyTab, KeyLabel: "Tab", Category: "panels",
	})
	return reg
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category, in registration order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleInput toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleInput() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
