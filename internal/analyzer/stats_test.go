package analyzer

import (
	"errors"
	"testing"

	"github.com/codeguardian/codeguardian/internal/source"
)

func TestBuildLanguageStats(t *testing.T) {
	units := []*source.FileUnit{
		source.NewFileUnit("a.py", "x = 1\ny = 2\nz = 3\n"),
		source.NewFileUnit("b.py", "print('hi')\n"),
		source.NewFileUnit("main.go", "package main\nfunc main() {}\n"),
		source.NewUnreadableUnit("blob.py", errors.New("binary")),
	}

	stats := BuildLanguageStats(units)

	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.TotalLines != 6 {
		t.Errorf("TotalLines = %d, want 6", stats.TotalLines)
	}
	if stats.LineBreakdown["python"] != 4 {
		t.Errorf("python lines = %d, want 4", stats.LineBreakdown["python"])
	}
	if stats.LineBreakdown["go"] != 2 {
		t.Errorf("go lines = %d, want 2", stats.LineBreakdown["go"])
	}
	if stats.LinePercent["python"] != 66.7 {
		t.Errorf("python percent = %v, want 66.7", stats.LinePercent["python"])
	}
	if stats.LinePercent["go"] != 33.3 {
		t.Errorf("go percent = %v, want 33.3", stats.LinePercent["go"])
	}
}

func TestBuildLanguageStatsEmpty(t *testing.T) {
	stats := BuildLanguageStats(nil)
	if stats.TotalFiles != 0 || stats.TotalLines != 0 {
		t.Errorf("Expected zero totals, got %+v", stats)
	}
	if len(stats.LinePercent) != 0 {
		t.Errorf("Expected no percentages, got %v", stats.LinePercent)
	}
}
