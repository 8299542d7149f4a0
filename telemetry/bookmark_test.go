package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_CloseCall(t *testing.T) {
	tests := []struct {
		name  string
		stats WindowStats
		want  bool
	}{
		{"near miss", WindowStats{HomingDistMin: 2.5}, true},
		{"far", WindowStats{HomingDistMin: 8}, false},
		{"hit in window", WindowStats{HomingDistMin: 1.0, Hits: 1}, false},
		{"no samples", WindowStats{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(10, 2.0)
			got := hasBookmark(bd.Check(tt.stats), BookmarkCloseCall)
			if got != tt.want {
				t.Errorf("close call = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookmarkDetector_DifficultySpike(t *testing.T) {
	bd := NewBookmarkDetector(10, 2.0)

	// First window has nothing to compare against
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 600, HitCounter: 5}), BookmarkDifficultySpike) {
		t.Error("unexpected spike on first window")
	}

	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 1200, HitCounter: 6}), BookmarkDifficultySpike) {
		t.Error("unexpected spike for +1")
	}

	if !hasBookmark(bd.Check(WindowStats{WindowEndTick: 1800, HitCounter: 9}), BookmarkDifficultySpike) {
		t.Error("expected difficulty_spike bookmark for +3")
	}
}

func TestBookmarkDetector_LongSurvivalFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10, 2.0)

	fired := 0
	for i := 0; i < 12; i++ {
		stats := WindowStats{WindowEndTick: int32(i * 600), HomingDistMin: 20}
		if hasBookmark(bd.Check(stats), BookmarkLongSurvival) {
			fired++
			if i != survivalWindows-1 {
				t.Errorf("fired at window %d, want %d", i, survivalWindows-1)
			}
		}
	}
	if fired != 1 {
		t.Errorf("expected exactly one long_survival bookmark, got %d", fired)
	}

	// A death restarts the streak
	bd.Check(WindowStats{Deaths: 1, HomingDistMin: 20})
	fired = 0
	for i := 0; i < survivalWindows; i++ {
		if hasBookmark(bd.Check(WindowStats{HomingDistMin: 20}), BookmarkLongSurvival) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("expected streak to restart after a death, got %d bookmarks", fired)
	}
}

func TestBookmarkDetector_KeyFound(t *testing.T) {
	bd := NewBookmarkDetector(10, 2.0)
	bms := bd.Check(WindowStats{WindowEndTick: 600, KeysFound: 1, Round: 2, Score: 40, HomingDistMin: 30})
	if !hasBookmark(bms, BookmarkKeyFound) {
		t.Fatal("expected key_found bookmark")
	}
}
