package ui

import "testing"

func TestAnchoredScrollRowAfterOlderMerge(t *testing.T) {
	// 100 older rows prepended while the loading banner row disappears: the
	// offset moves by exactly 99 so the same message stays at the top.
	if got := anchoredScrollRow(2, 100, -1); got != 101 {
		t.Errorf("Expected row 101, got %d", got)
	}
}

func TestAnchoredScrollRowBannerAppears(t *testing.T) {
	// The banner pushing history down one row shifts the offset with it.
	if got := anchoredScrollRow(2, 0, 1); got != 3 {
		t.Errorf("Expected row 3, got %d", got)
	}
}

func TestAnchoredScrollRowSteadyWithoutChanges(t *testing.T) {
	if got := anchoredScrollRow(7, 0, 0); got != 7 {
		t.Errorf("Expected row 7, got %d", got)
	}
}

func TestAnchoredScrollRowClampsToTop(t *testing.T) {
	if got := anchoredScrollRow(0, 0, -1); got != 0 {
		t.Errorf("Expected row 0, got %d", got)
	}
}
