package systems

// Phase IDs shared by the world step and the perf collector.
const (
	PhasePlayer    = "player"
	PhaseHoming    = "homing"
	PhasePatrol    = "patrol"
	PhaseSolve     = "solve"
	PhaseSync      = "sync"
	PhaseTelemetry = "telemetry"
)

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "actors", "physics")
}

// SystemRegistry holds metadata about all step phases.
// This centralizes naming so the HUD and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
}

// NewSystemRegistry creates a registry with all step phases.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the world's step phases in execution order.
// Update this when adding new phases.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: PhasePlayer, Name: "Player", Description: "Moves the character controller from intent", Category: "actors"})
	r.Register(SystemInfo{ID: PhaseHoming, Name: "Homing", Description: "Pushes the seeking actor toward the player", Category: "actors"})
	r.Register(SystemInfo{ID: PhasePatrol, Name: "Patrol", Description: "Advances waypoint followers", Category: "actors"})
	r.Register(SystemInfo{ID: PhaseSolve, Name: "Solve", Description: "Integrates bodies and resolves contacts", Category: "physics"})
	r.Register(SystemInfo{ID: PhaseSync, Name: "Sync", Description: "Writes body transforms to render proxies", Category: "physics"})
	r.Register(SystemInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Records session events and window stats", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
