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

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(DayStats{Day: 1, Population: 5})

	bookmarks := bd.Check(DayStats{Day: 2, Population: 0})
	if !hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}
	if bookmarks[0].Day != 2 {
		t.Errorf("bookmark day = %d, want 2", bookmarks[0].Day)
	}

	// Only reported once
	if hasBookmark(bd.Check(DayStats{Day: 3, Population: 0}), BookmarkExtinction) {
		t.Error("extinction reported twice")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 1; i <= 3; i++ {
		bd.Check(DayStats{Day: i, Population: 10})
	}

	if !hasBookmark(bd.Check(DayStats{Day: 4, Population: 4}), BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}
	// Peak resets after a crash
	if hasBookmark(bd.Check(DayStats{Day: 5, Population: 3}), BookmarkPopulationCrash) {
		t.Error("crash reported again against the old peak")
	}
}

func TestBookmarkDetector_RecordAndGeneration(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// First day establishes the baseline
	if got := bd.Check(DayStats{Day: 1, Population: 10}); len(got) != 0 {
		t.Errorf("first day produced bookmarks: %+v", got)
	}

	bookmarks := bd.Check(DayStats{Day: 2, Population: 12, MaxGeneration: 1})
	if !hasBookmark(bookmarks, BookmarkPopulationRecord) {
		t.Error("expected population_record bookmark")
	}
	if !hasBookmark(bookmarks, BookmarkNewGeneration) {
		t.Error("expected new_generation bookmark")
	}

	bookmarks = bd.Check(DayStats{Day: 3, Population: 11, MaxGeneration: 1})
	if hasBookmark(bookmarks, BookmarkPopulationRecord) || hasBookmark(bookmarks, BookmarkNewGeneration) {
		t.Errorf("unexpected bookmarks: %+v", bookmarks)
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var triggered []int
	for day := 1; day <= 12; day++ {
		if hasBookmark(bd.Check(DayStats{Day: day, Population: 10}), BookmarkStablePopulation) {
			triggered = append(triggered, day)
		}
	}

	// Four days fill the window, then five stable days are needed
	if len(triggered) != 1 || triggered[0] != 8 {
		t.Errorf("stable_population triggered on days %v, want [8]", triggered)
	}
}
