package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCloseCall       BookmarkType = "close_call"
	BookmarkDifficultySpike BookmarkType = "difficulty_spike"
	BookmarkLongSurvival    BookmarkType = "long_survival"
	BookmarkKeyFound        BookmarkType = "key_found"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// survivalWindows is the number of consecutive clean windows that triggers BookmarkLongSurvival.
const survivalWindows = 5

// BookmarkDetector detects interesting moments in a session.
type BookmarkDetector struct {
	hitRadius float64

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	cleanWindows int // consecutive windows without hits or deaths
}

// NewBookmarkDetector creates a detector with the given history size.
// hitRadius is the homing hit radius used to judge close calls.
func NewBookmarkDetector(historySize int, hitRadius float64) *BookmarkDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &BookmarkDetector{
		hitRadius:   hitRadius,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkCloseCall(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkDifficultySpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkLongSurvival(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if stats.KeysFound > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkKeyFound,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Key found in round %d with score %d", stats.Round, stats.Score),
		})
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx], true
}

// checkCloseCall fires when the homing actor came within 1.5x the hit radius without a hit.
func (bd *BookmarkDetector) checkCloseCall(stats WindowStats) *Bookmark {
	if stats.Hits > 0 || stats.HomingDistMin <= 0 || bd.hitRadius <= 0 {
		return nil
	}
	if stats.HomingDistMin < bd.hitRadius*1.5 {
		return &Bookmark{
			Type:        BookmarkCloseCall,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Homing actor passed within %.2f (hit radius %.2f)", stats.HomingDistMin, bd.hitRadius),
		}
	}
	return nil
}

// checkDifficultySpike fires when the hit counter rose by 3 or more since the last window.
func (bd *BookmarkDetector) checkDifficultySpike(stats WindowStats) *Bookmark {
	prev, ok := bd.previous()
	if !ok {
		return nil
	}
	if stats.HitCounter-prev.HitCounter >= 3 {
		return &Bookmark{
			Type:        BookmarkDifficultySpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Hit counter jumped from %d to %d", prev.HitCounter, stats.HitCounter),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkLongSurvival(stats WindowStats) *Bookmark {
	if stats.Hits > 0 || stats.Deaths > 0 || stats.Resets > 0 {
		bd.cleanWindows = 0
		return nil
	}
	bd.cleanWindows++
	if bd.cleanWindows == survivalWindows { // trigger exactly once per streak
		return &Bookmark{
			Type:        BookmarkLongSurvival,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Survived %d windows without a hit", survivalWindows),
		}
	}
	return nil
}
