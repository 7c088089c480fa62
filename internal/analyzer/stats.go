package analyzer

import (
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/source"
)

// BuildLanguageStats tallies files and lines per language over the scanned
// units. Units that could not be read carry no line counts and are left out.
func BuildLanguageStats(units []*source.FileUnit) report.LanguageStats {
	stats := report.LanguageStats{
		LineBreakdown: make(map[string]int),
		LinePercent:   make(map[string]float64),
	}

	for _, unit := range units {
		if unit.ReadErr != nil || unit.Language == source.LanguageUnknown {
			continue
		}
		stats.TotalFiles++
		stats.TotalLines += unit.LineCount
		stats.LineBreakdown[string(unit.Language)] += unit.LineCount
	}

	if stats.TotalLines > 0 {
		for lang, lines := range stats.LineBreakdown {
			stats.LinePercent[lang] = roundOne(float64(lines) / float64(stats.TotalLines) * 100)
		}
	}

	return stats
}
