package report

import (
	"fmt"
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the position of s in the total order
// critical > high > medium > low. Unknown severities rank below low.
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is at or above threshold in the severity order.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(s))
	if _, ok := severityRank[sev]; !ok {
		return "", fmt.Errorf("unknown severity %q (expected low, medium, high or critical)", s)
	}
	return sev, nil
}

// Severities lists the four levels from lowest to highest.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

type Category string

const (
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryAIPattern       Category = "ai-pattern"
)

// Categories lists all analyzer categories in registry order.
func Categories() []Category {
	return []Category{CategorySecurity, CategoryPerformance, CategoryMaintainability, CategoryAIPattern}
}

// Finding is a single normalized detection result tied to a file location.
// Findings are immutable once produced; two findings are equal iff all
// fields match. Confidence is set only for ai-pattern findings.
type Finding struct {
	RuleID     string   `json:"rule_id"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Snippet    string   `json:"snippet,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// FileScore aggregates the findings of a single file.
type FileScore struct {
	Path                 string           `json:"path"`
	LineCount            int              `json:"line_count"`
	FindingsBySeverity   map[Severity]int `json:"findings_by_severity"`
	FindingsByCategory   map[Category]int `json:"findings_by_category"`
	MaintainabilityScore float64          `json:"maintainability_score"`
	AIConfidence         float64          `json:"ai_confidence"`
}

// Summary holds run-level tallies over the full, unfiltered finding set.
// The display severity filter never changes these numbers.
type Summary struct {
	FilesScanned          int              `json:"files_scanned"`
	TotalFindings         int              `json:"total_findings"`
	FindingsBySeverity    map[Severity]int `json:"findings_by_severity"`
	FindingsByCategory    map[Category]int `json:"findings_by_category"`
	SecurityIssues        int              `json:"security_issues"`
	PerformanceIssues     int              `json:"performance_issues"`
	MaintainabilityScore  float64          `json:"maintainability_score"`
	AIGeneratedPercentage float64          `json:"ai_generated_percentage"`
	ExecutionSeconds      float64          `json:"execution_time_seconds"`
}

// LanguageStats summarizes the scanned code by language. Unreadable units
// count toward neither files nor lines.
type LanguageStats struct {
	TotalFiles    int                `json:"total_files"`
	TotalLines    int                `json:"total_lines"`
	LineBreakdown map[string]int     `json:"line_breakdown"`
	LinePercent   map[string]float64 `json:"line_percent"`
}

// ScanResult is the sole object handed to report formatters. For a fixed
// file set and configuration its contents are reproducible run-to-run,
// excluding ExecutionSeconds and Timestamp.
type ScanResult struct {
	Repository string               `json:"repository,omitempty"`
	Branch     string               `json:"branch,omitempty"`
	CommitHash string               `json:"commit_hash,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
	Summary    Summary              `json:"summary"`
	Languages  LanguageStats        `json:"languages"`
	Findings   []Finding            `json:"findings"`
	FileScores map[string]FileScore `json:"file_scores"`
	Incomplete bool                 `json:"incomplete,omitempty"`
	Failing    bool                 `json:"failing"`
	Version    string               `json:"version"`
}
