package analyzer

import (
	"testing"

	"github.com/codeguardian/codeguardian/internal/report"
)

func TestBuildFileScorePenalties(t *testing.T) {
	findings := []report.Finding{
		{Category: report.CategoryMaintainability, Severity: report.SeverityCritical},
		{Category: report.CategoryMaintainability, Severity: report.SeverityHigh},
		{Category: report.CategoryMaintainability, Severity: report.SeverityMedium},
		{Category: report.CategoryMaintainability, Severity: report.SeverityLow},
		{Category: report.CategorySecurity, Severity: report.SeverityCritical},
	}

	score := BuildFileScore("app.py", 100, findings)

	// 10 - 2.5 - 1.5 - 0.75 - 0.25; the security finding deducts nothing.
	want := 5.0
	if score.MaintainabilityScore != want {
		t.Errorf("MaintainabilityScore = %v, want %v", score.MaintainabilityScore, want)
	}
	if score.FindingsBySeverity[report.SeverityCritical] != 2 {
		t.Errorf("Expected 2 critical findings, got %d", score.FindingsBySeverity[report.SeverityCritical])
	}
	if score.FindingsByCategory[report.CategoryMaintainability] != 4 {
		t.Errorf("Expected 4 maintainability findings, got %d", score.FindingsByCategory[report.CategoryMaintainability])
	}
}

func TestBuildFileScoreClampsAtZero(t *testing.T) {
	var findings []report.Finding
	for i := 0; i < 10; i++ {
		findings = append(findings, report.Finding{
			Category: report.CategoryMaintainability,
			Severity: report.SeverityCritical,
		})
	}

	score := BuildFileScore("bad.py", 50, findings)
	if score.MaintainabilityScore != 0 {
		t.Errorf("Expected score clamped to 0, got %v", score.MaintainabilityScore)
	}
}

func TestBuildFileScoreMaxAIConfidence(t *testing.T) {
	findings := []report.Finding{
		{Category: report.CategoryAIPattern, Severity: report.SeverityLow, Confidence: 0.4},
		{Category: report.CategoryAIPattern, Severity: report.SeverityLow, Confidence: 0.85},
		{Category: report.CategoryAIPattern, Severity: report.SeverityLow, Confidence: 0.6},
		{Category: report.CategorySecurity, Severity: report.SeverityHigh, Confidence: 0},
	}

	score := BuildFileScore("gen.py", 30, findings)
	if score.AIConfidence != 0.85 {
		t.Errorf("Expected max confidence 0.85, got %v", score.AIConfidence)
	}

	clean := BuildFileScore("clean.py", 30, nil)
	if clean.AIConfidence != 0 {
		t.Errorf("Expected 0 confidence with no ai-pattern findings, got %v", clean.AIConfidence)
	}
	if clean.MaintainabilityScore != 10.0 {
		t.Errorf("Expected perfect score with no findings, got %v", clean.MaintainabilityScore)
	}
}

func TestBuildSummaryLineWeightedScore(t *testing.T) {
	fileScores := map[string]report.FileScore{
		"big.py":   {Path: "big.py", LineCount: 900, MaintainabilityScore: 10.0},
		"small.py": {Path: "small.py", LineCount: 100, MaintainabilityScore: 0.0},
	}

	summary := BuildSummary(fileScores, nil, 0.7)

	// (10*900 + 0*100) / 1000 = 9.0; a plain mean would give 5.0.
	if summary.MaintainabilityScore != 9.0 {
		t.Errorf("MaintainabilityScore = %v, want 9.0", summary.MaintainabilityScore)
	}
}

func TestBuildSummaryZeroLineFallback(t *testing.T) {
	fileScores := map[string]report.FileScore{
		"a.py": {Path: "a.py", LineCount: 0, MaintainabilityScore: 10.0},
		"b.py": {Path: "b.py", LineCount: 0, MaintainabilityScore: 5.0},
	}

	summary := BuildSummary(fileScores, nil, 0.7)
	if summary.MaintainabilityScore != 7.5 {
		t.Errorf("Expected uniform mean 7.5, got %v", summary.MaintainabilityScore)
	}
}

func TestBuildSummaryAIPercentageThreshold(t *testing.T) {
	fileScores := map[string]report.FileScore{
		"under.py": {Path: "under.py", LineCount: 10, MaintainabilityScore: 10, AIConfidence: 0.65},
		"exact.py": {Path: "exact.py", LineCount: 10, MaintainabilityScore: 10, AIConfidence: 0.7},
		"over.py":  {Path: "over.py", LineCount: 10, MaintainabilityScore: 10, AIConfidence: 0.72},
		"zero.py":  {Path: "zero.py", LineCount: 10, MaintainabilityScore: 10, AIConfidence: 0},
	}

	summary := BuildSummary(fileScores, nil, 0.7)

	// 0.7 and 0.72 reach the threshold; 0.65 sits just under it.
	if summary.AIGeneratedPercentage != 50.0 {
		t.Errorf("AIGeneratedPercentage = %v, want 50.0", summary.AIGeneratedPercentage)
	}
}

func TestBuildSummaryEmptyRun(t *testing.T) {
	summary := BuildSummary(map[string]report.FileScore{}, nil, 0.7)

	if summary.FilesScanned != 0 {
		t.Errorf("Expected 0 files scanned, got %d", summary.FilesScanned)
	}
	if summary.TotalFindings != 0 {
		t.Errorf("Expected 0 findings, got %d", summary.TotalFindings)
	}
	if summary.MaintainabilityScore != 10.0 {
		t.Errorf("Expected neutral score 10.0, got %v", summary.MaintainabilityScore)
	}
	if summary.AIGeneratedPercentage != 0.0 {
		t.Errorf("Expected 0%% AI, got %v", summary.AIGeneratedPercentage)
	}
}

func TestBuildSummaryCategoryCounts(t *testing.T) {
	findings := []report.Finding{
		{Category: report.CategorySecurity, Severity: report.SeverityCritical},
		{Category: report.CategorySecurity, Severity: report.SeverityHigh},
		{Category: report.CategoryPerformance, Severity: report.SeverityMedium},
		{Category: report.CategoryAIPattern, Severity: report.SeverityLow},
	}
	fileScores := map[string]report.FileScore{
		"a.py": {Path: "a.py", LineCount: 10, MaintainabilityScore: 10},
	}

	summary := BuildSummary(fileScores, findings, 0.7)

	if summary.SecurityIssues != 2 {
		t.Errorf("SecurityIssues = %d, want 2", summary.SecurityIssues)
	}
	if summary.PerformanceIssues != 1 {
		t.Errorf("PerformanceIssues = %d, want 1", summary.PerformanceIssues)
	}
	if summary.TotalFindings != 4 {
		t.Errorf("TotalFindings = %d, want 4", summary.TotalFindings)
	}
	if summary.FindingsBySeverity[report.SeverityCritical] != 1 {
		t.Errorf("Expected 1 critical, got %d", summary.FindingsBySeverity[report.SeverityCritical])
	}
}
