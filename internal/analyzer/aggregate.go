package analyzer

import (
	"math"

	"github.com/codeguardian/codeguardian/internal/report"
)

// maintainabilityPenalty is the per-finding deduction from the perfect
// score of 10.0, scaled by severity.
var maintainabilityPenalty = map[report.Severity]float64{
	report.SeverityCritical: 2.5,
	report.SeverityHigh:     1.5,
	report.SeverityMedium:   0.75,
	report.SeverityLow:      0.25,
}

// BuildFileScore aggregates one file's findings into counts and scores.
// The AI confidence is the maximum over the file's ai-pattern findings: a
// single strong signal dominates many weak ones. Zero ai-pattern findings
// means confidence 0.
func BuildFileScore(path string, lineCount int, findings []report.Finding) report.FileScore {
	score := report.FileScore{
		Path:               path,
		LineCount:          lineCount,
		FindingsBySeverity: make(map[report.Severity]int),
		FindingsByCategory: make(map[report.Category]int),
	}

	maintainability := 10.0
	aiConfidence := 0.0

	for _, f := range findings {
		score.FindingsBySeverity[f.Severity]++
		score.FindingsByCategory[f.Category]++

		if f.Category == report.CategoryMaintainability {
			maintainability -= maintainabilityPenalty[f.Severity]
		}
		if f.Category == report.CategoryAIPattern && f.Confidence > aiConfidence {
			aiConfidence = f.Confidence
		}
	}

	score.MaintainabilityScore = clamp(maintainability, 0, 10)
	score.AIConfidence = aiConfidence
	return score
}

// BuildSummary combines per-file scores into run-level numbers. The
// computation is order-independent over files, so parallel completion
// order never changes the result. Zero files is a valid run with neutral
// scores.
func BuildSummary(fileScores map[string]report.FileScore, findings []report.Finding, aiThreshold float64) report.Summary {
	summary := report.Summary{
		FilesScanned:       len(fileScores),
		TotalFindings:      len(findings),
		FindingsBySeverity: make(map[report.Severity]int),
		FindingsByCategory: make(map[report.Category]int),
	}

	for _, f := range findings {
		summary.FindingsBySeverity[f.Severity]++
		summary.FindingsByCategory[f.Category]++
	}
	summary.SecurityIssues = summary.FindingsByCategory[report.CategorySecurity]
	summary.PerformanceIssues = summary.FindingsByCategory[report.CategoryPerformance]

	summary.MaintainabilityScore = runMaintainabilityScore(fileScores)
	summary.AIGeneratedPercentage = aiGeneratedPercentage(fileScores, aiThreshold)

	return summary
}

// runMaintainabilityScore is the mean of per-file scores weighted by line
// count, so larger files influence the result proportionally more. Files
// with no lines fall back to uniform weighting.
func runMaintainabilityScore(fileScores map[string]report.FileScore) float64 {
	if len(fileScores) == 0 {
		return 10.0
	}

	var weightedSum, totalLines float64
	var plainSum float64
	for _, fs := range fileScores {
		weightedSum += fs.MaintainabilityScore * float64(fs.LineCount)
		totalLines += float64(fs.LineCount)
		plainSum += fs.MaintainabilityScore
	}

	if totalLines == 0 {
		return roundOne(plainSum / float64(len(fileScores)))
	}
	return roundOne(weightedSum / totalLines)
}

// aiGeneratedPercentage counts files whose confidence reaches the
// configured threshold.
func aiGeneratedPercentage(fileScores map[string]report.FileScore, threshold float64) float64 {
	if len(fileScores) == 0 {
		return 0.0
	}

	aiFiles := 0
	for _, fs := range fileScores {
		if fs.AIConfidence >= threshold {
			aiFiles++
		}
	}
	return roundOne(float64(aiFiles) / float64(len(fileScores)) * 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
