package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable state of one simulation frame.
type Snapshot struct {
	Version int     `json:"version"`
	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`
	State   string  `json:"state"`

	Session SessionState `json:"session"`

	Player  PlayerState  `json:"player"`
	Homing  ActorState   `json:"homing"`
	Patrols []ActorState `json:"patrols,omitempty"`
	Key     *[3]float64  `json:"key,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// SessionState mirrors the session counters.
type SessionState struct {
	Round      int  `json:"round"`
	Score      int  `json:"score"`
	HitCounter int  `json:"hit_counter"`
	KeyFound   bool `json:"key_found"`
}

// PlayerState is the player's controller state.
type PlayerState struct {
	Position [3]float64 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Grounded bool       `json:"grounded"`
	Dash     string     `json:"dash"`
}

// ActorState is an enemy pose. Rotation is (w, x, y, z).
type ActorState struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Target   int        `json:"target,omitempty"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
