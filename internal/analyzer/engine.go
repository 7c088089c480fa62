package analyzer

import (
	"fmt"
	"sort"

	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/rules"
	"github.com/codeguardian/codeguardian/internal/source"
)

const (
	ruleFileReadError   = "internal.file-read-error"
	ruleErrorPrefix     = "internal.rule-error."
	internalFindingNote = " (scanner diagnostic, not a code issue)"
)

// AnalyzeFile applies every active rule to one file unit and returns its
// findings sorted by line, column, then rule id. Faults are converted to
// data: an unreadable file yields a single diagnostic finding, and a rule
// that panics contributes one diagnostic for this file instead of aborting
// the run.
func AnalyzeFile(unit *source.FileUnit, reg *rules.Registry) []report.Finding {
	if unit.ReadErr != nil {
		return []report.Finding{fileReadFinding(unit)}
	}

	idx := source.BuildIndex(unit)

	var findings []report.Finding
	for _, rule := range reg.Active() {
		matches, err := safeMatch(rule, unit, idx)
		if err != nil {
			findings = append(findings, ruleErrorFinding(unit, rule, err))
			continue
		}
		for _, m := range matches {
			findings = append(findings, newFinding(unit, idx, rule, m))
		}
	}

	findings = dedupeFindings(findings)
	sortFindings(findings)
	return findings
}

// safeMatch invokes the rule matcher with panic isolation. A fault in one
// rule must never unwind past the engine.
func safeMatch(rule rules.Rule, unit *source.FileUnit, idx *source.Index) (matches []rules.Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
			err = fmt.Errorf("rule %s panicked: %v", rule.ID, r)
		}
	}()
	return rule.Matcher(unit, idx), nil
}

func newFinding(unit *source.FileUnit, idx *source.Index, rule rules.Rule, m rules.Match) report.Finding {
	line, column := idx.Position(m.Offset)

	message := rule.Message
	if m.Message != "" {
		message = m.Message
	}

	f := report.Finding{
		RuleID:     rule.ID,
		File:       unit.Path,
		Line:       line,
		Column:     column,
		Category:   rule.Category,
		Severity:   rule.Severity,
		Message:    message,
		Suggestion: rule.Suggestion,
		Snippet:    m.Snippet,
	}
	if rule.Category == report.CategoryAIPattern {
		f.Confidence = m.Confidence
	}
	return f
}

func fileReadFinding(unit *source.FileUnit) report.Finding {
	return report.Finding{
		RuleID:   ruleFileReadError,
		File:     unit.Path,
		Line:     1,
		Column:   1,
		Category: report.CategoryMaintainability,
		Severity: report.SeverityLow,
		Message:  fmt.Sprintf("File could not be read: %v%s", unit.ReadErr, internalFindingNote),
	}
}

func ruleErrorFinding(unit *source.FileUnit, rule rules.Rule, err error) report.Finding {
	return report.Finding{
		RuleID:   ruleErrorPrefix + rule.ID,
		File:     unit.Path,
		Line:     1,
		Column:   1,
		Category: report.CategoryMaintainability,
		Severity: report.SeverityLow,
		Message:  fmt.Sprintf("Rule execution failed: %v%s", err, internalFindingNote),
	}
}

// dedupeFindings drops findings sharing rule, file, line and column,
// keeping the first occurrence.
func dedupeFindings(findings []report.Finding) []report.Finding {
	if len(findings) < 2 {
		return findings
	}
	seen := make(map[string]bool, len(findings))
	out := findings[:0]
	for _, f := range findings {
		key := fmt.Sprintf("%s|%d|%d", f.RuleID, f.Line, f.Column)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func sortFindings(findings []report.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		if findings[i].Column != findings[j].Column {
			return findings[i].Column < findings[j].Column
		}
		return findings[i].RuleID < findings[j].RuleID
	})
}
