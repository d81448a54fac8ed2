package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction       BookmarkType = "extinction"
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkPopulationRecord BookmarkType = "population_record"
	BookmarkNewGeneration    BookmarkType = "new_generation"
	BookmarkStablePopulation BookmarkType = "stable_population"
)

// stableDays is how many consecutive low-variance days mark a stable population.
const stableDays = 5

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Day         int
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"day", b.Day,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable days in the population series.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []DayStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPeak  int // peak population since the last crash
	recordPeak  int // highest population ever seen
	maxGen      int
	extinct     bool
	stableCount int // consecutive low-variance days
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 4 {
		historySize = 4 // variance window for stable population detection
	}
	return &BookmarkDetector{
		history:     make([]DayStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest day and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats DayStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkExtinction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkRecord(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkGeneration(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkStable(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	bd.recentPeak = max(bd.recentPeak, stats.Population)
	bd.recordPeak = max(bd.recordPeak, stats.Population)
	bd.maxGen = max(bd.maxGen, stats.MaxGeneration)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats DayStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent days, oldest first.
func (bd *BookmarkDetector) recent(n int) []DayStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	n = min(n, size)

	out := make([]DayStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats DayStats) *Bookmark {
	if bd.extinct || stats.Population > 0 {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Day:         stats.Day,
		Description: fmt.Sprintf("Population extinct after peak of %d", bd.recordPeak),
	}
}

func (bd *BookmarkDetector) checkCrash(stats DayStats) *Bookmark {
	if bd.recentPeak < 4 || stats.Population == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if drop <= 0.5 {
		return nil
	}

	// Reset peak after crash
	oldPeak := bd.recentPeak
	bd.recentPeak = stats.Population

	return &Bookmark{
		Type:        BookmarkPopulationCrash,
		Day:         stats.Day,
		Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
	}
}

func (bd *BookmarkDetector) checkRecord(stats DayStats) *Bookmark {
	if stats.Population <= bd.recordPeak {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPopulationRecord,
		Day:         stats.Day,
		Description: fmt.Sprintf("Population reached %d (previous record %d)", stats.Population, bd.recordPeak),
	}
}

func (bd *BookmarkDetector) checkGeneration(stats DayStats) *Bookmark {
	if stats.MaxGeneration <= bd.maxGen {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkNewGeneration,
		Day:         stats.Day,
		Description: fmt.Sprintf("Generation %d alive", stats.MaxGeneration),
	}
}

func (bd *BookmarkDetector) checkStable(stats DayStats) *Bookmark {
	if stats.Population == 0 {
		bd.stableCount = 0
		return nil
	}

	window := append(bd.recent(3), stats)
	if len(window) < 4 {
		return nil
	}

	var sum float64
	for _, d := range window {
		sum += float64(d.Population)
	}
	mean := sum / float64(len(window))

	var variance float64
	for _, d := range window {
		diff := float64(d.Population) - mean
		variance += diff * diff
	}
	variance /= float64(len(window))

	if variance/(mean*mean) < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == stableDays { // trigger exactly once per stable stretch
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Day:         stats.Day,
			Description: fmt.Sprintf("Population stable around %.1f for %d days", mean, stableDays),
		}
	}
	return nil
}
