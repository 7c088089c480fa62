package analyzer

import "github.com/codeguardian/codeguardian/internal/report"

// FilterBySeverity retains findings at or above the threshold. This is a
// display-only filter: summary counts and the failure decision always see
// the unfiltered set.
func FilterBySeverity(findings []report.Finding, threshold report.Severity) []report.Finding {
	filtered := make([]report.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.AtLeast(threshold) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Failing decides the CI pass/fail signal from the unfiltered summary
// counts: the run fails iff at least one finding sits at or above the
// configured fail level. A low display threshold can therefore never mask
// a critical issue.
func Failing(summary report.Summary, failOn report.Severity) bool {
	for severity, count := range summary.FindingsBySeverity {
		if count > 0 && severity.AtLeast(failOn) {
			return true
		}
	}
	return false
}
