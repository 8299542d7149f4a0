package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/brainmaze/config"
)

func TestOutputManager_DisabledIsNoop(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager without error, got %v, %v", om, err)
	}

	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil WriteTelemetry: %v", err)
	}
	if err := om.WriteRound(RoundStats{}); err != nil {
		t.Errorf("nil WriteRound: %v", err)
	}
	if path, err := om.WriteSnapshot(&Snapshot{}); err != nil || path != "" {
		t.Errorf("nil WriteSnapshot: %q, %v", path, err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManager_HeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int32(i * 600), Hits: i}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WriteRound(RoundStats{Round: 1, Outcome: OutcomeCaught}); err != nil {
		t.Fatalf("WriteRound: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,round") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header repeated")
	}

	rounds, err := os.ReadFile(filepath.Join(dir, "rounds.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(rounds), OutcomeCaught) {
		t.Errorf("round outcome missing from rounds.csv:\n%s", rounds)
	}
}

func TestOutputManager_WriteConfigAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}

	path, err := om.WriteSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 42})
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if path != filepath.Join(dir, "snapshots", "snapshot_42.json") {
		t.Errorf("unexpected snapshot path %s", path)
	}
}
