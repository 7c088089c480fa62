package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

type Formatter interface {
	Format(result *ScanResult) (string, error)
}

type TableFormatter struct {
	colorize bool
}

func NewTableFormatter(colorize bool) *TableFormatter {
	return &TableFormatter{colorize: colorize}
}

func (f *TableFormatter) Format(result *ScanResult) (string, error) {
	var output strings.Builder

	if f.colorize {
		color.Set(color.FgCyan, color.Bold)
	}
	output.WriteString(fmt.Sprintf("Code Guardian Report - %s\n", result.Repository))
	if result.Branch != "" {
		output.WriteString(fmt.Sprintf("Branch: %s | Commit: %s\n", result.Branch, shortHash(result.CommitHash)))
	}
	output.WriteString(fmt.Sprintf("Scan completed at: %s (took %.2fs)\n\n",
		result.Timestamp.Format("2006-01-02 15:04:05"), result.Summary.ExecutionSeconds))
	if f.colorize {
		color.Unset()
	}

	if result.Incomplete {
		if f.colorize {
			color.Set(color.FgYellow, color.Bold)
		}
		output.WriteString("⚠ Scan was cancelled before completion; results are partial.\n\n")
		if f.colorize {
			color.Unset()
		}
	}

	f.writeSummary(&output, &result.Summary)
	f.writeLanguages(&output, &result.Languages)

	if len(result.Findings) > 0 {
		output.WriteString("\nFindings:\n")
		f.writeFindings(&output, result.Findings)
	} else {
		output.WriteString("\n")
		if f.colorize {
			color.Set(color.FgGreen, color.Bold)
		}
		output.WriteString("✅ No findings at the configured severity threshold.\n")
		if f.colorize {
			color.Unset()
		}
	}

	return output.String(), nil
}

func (f *TableFormatter) writeSummary(output *strings.Builder, summary *Summary) {
	if f.colorize {
		color.Set(color.FgYellow, color.Bold)
	}
	output.WriteString("Summary:\n")
	if f.colorize {
		color.Unset()
	}

	output.WriteString(fmt.Sprintf("  Files Scanned: %d\n", summary.FilesScanned))
	output.WriteString(fmt.Sprintf("  Total Findings: %d\n", summary.TotalFindings))
	output.WriteString(fmt.Sprintf("  Security Issues: %d\n", summary.SecurityIssues))
	output.WriteString(fmt.Sprintf("  Performance Issues: %d\n", summary.PerformanceIssues))
	output.WriteString(fmt.Sprintf("  Maintainability Score: %.1f/10\n", summary.MaintainabilityScore))
	output.WriteString(fmt.Sprintf("  AI-Generated: %.1f%%\n", summary.AIGeneratedPercentage))

	if summary.TotalFindings > 0 {
		for _, severity := range []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
			count := summary.FindingsBySeverity[severity]
			if count == 0 {
				continue
			}
			line := fmt.Sprintf("    %s: %d\n", titleCase(string(severity)), count)
			if f.colorize {
				if c := f.getSeverityColor(severity); c != nil {
					line = c.Sprint(line)
				}
			}
			output.WriteString(line)
		}
	}
}

func (f *TableFormatter) writeLanguages(output *strings.Builder, stats *LanguageStats) {
	if len(stats.LineBreakdown) == 0 {
		return
	}

	languages := make([]string, 0, len(stats.LineBreakdown))
	for lang := range stats.LineBreakdown {
		languages = append(languages, lang)
	}
	sort.Slice(languages, func(i, j int) bool {
		if stats.LineBreakdown[languages[i]] != stats.LineBreakdown[languages[j]] {
			return stats.LineBreakdown[languages[i]] > stats.LineBreakdown[languages[j]]
		}
		return languages[i] < languages[j]
	})

	output.WriteString("  Languages:\n")
	for _, lang := range languages {
		output.WriteString(fmt.Sprintf("    %s: %d lines (%.1f%%)\n",
			lang, stats.LineBreakdown[lang], stats.LinePercent[lang]))
	}
}

func (f *TableFormatter) writeFindings(output *strings.Builder, findings []Finding) {
	for i, finding := range findings {
		if i > 0 {
			output.WriteString("\n")
		}

		severity := strings.ToUpper(string(finding.Severity))
		if f.colorize {
			if c := f.getSeverityColor(finding.Severity); c != nil {
				severity = c.Sprint(severity)
			}
		}

		location := fmt.Sprintf("%s:%d:%d", finding.File, finding.Line, finding.Column)

		output.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", severity, location, finding.Category))
		output.WriteString(fmt.Sprintf("    Issue: %s\n", finding.Message))
		if finding.Snippet != "" {
			output.WriteString(fmt.Sprintf("    Code:  %s\n", finding.Snippet))
		}
		if finding.Suggestion != "" {
			output.WriteString(fmt.Sprintf("    Fix:   %s\n", finding.Suggestion))
		}
		if finding.Confidence > 0 {
			output.WriteString(fmt.Sprintf("    Confidence: %.2f\n", finding.Confidence))
		}
	}
}

func (f *TableFormatter) getSeverityColor(severity Severity) *color.Color {
	switch severity {
	case SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case SeverityHigh:
		return color.New(color.FgRed)
	case SeverityMedium:
		return color.New(color.FgYellow)
	case SeverityLow:
		return color.New(color.FgBlue)
	default:
		return nil
	}
}

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(result *ScanResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(data), nil
}

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (f *MarkdownFormatter) Format(result *ScanResult) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Code Guardian Report - %s\n\n", result.Repository))
	if result.Branch != "" {
		output.WriteString(fmt.Sprintf("**Branch:** %s | **Commit:** %s\n\n", result.Branch, shortHash(result.CommitHash)))
	}
	output.WriteString(fmt.Sprintf("**Scan completed:** %s (took %.2fs)\n\n",
		result.Timestamp.Format("2006-01-02 15:04:05"), result.Summary.ExecutionSeconds))

	if result.Incomplete {
		output.WriteString("> ⚠ Scan was cancelled before completion; results are partial.\n\n")
	}

	output.WriteString("## Summary\n\n")
	output.WriteString(fmt.Sprintf("- **Files Scanned:** %d\n", result.Summary.FilesScanned))
	output.WriteString(fmt.Sprintf("- **Total Findings:** %d\n", result.Summary.TotalFindings))
	output.WriteString(fmt.Sprintf("- **Maintainability Score:** %.1f/10\n", result.Summary.MaintainabilityScore))
	output.WriteString(fmt.Sprintf("- **AI-Generated:** %.1f%%\n\n", result.Summary.AIGeneratedPercentage))

	if len(result.Languages.LineBreakdown) > 0 {
		output.WriteString("### Languages\n\n")
		languages := make([]string, 0, len(result.Languages.LineBreakdown))
		for lang := range result.Languages.LineBreakdown {
			languages = append(languages, lang)
		}
		sort.Strings(languages)
		for _, lang := range languages {
			output.WriteString(fmt.Sprintf("- **%s:** %d lines (%.1f%%)\n",
				lang, result.Languages.LineBreakdown[lang], result.Languages.LinePercent[lang]))
		}
		output.WriteString("\n")
	}

	if result.Summary.TotalFindings > 0 {
		output.WriteString("### Findings by Severity\n\n")
		for _, severity := range []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
			if count := result.Summary.FindingsBySeverity[severity]; count > 0 {
				output.WriteString(fmt.Sprintf("- **%s:** %d\n", titleCase(string(severity)), count))
			}
		}
		output.WriteString("\n")
	}

	if len(result.Findings) > 0 {
		output.WriteString("## Findings\n\n")
		f.writeFindingsMarkdown(&output, result.Findings)
	} else {
		output.WriteString("## ✅ No Findings\n\nNo findings at the configured severity threshold.\n")
	}

	return output.String(), nil
}

func (f *MarkdownFormatter) writeFindingsMarkdown(output *strings.Builder, findings []Finding) {
	categorized := make(map[Category][]Finding)
	for _, finding := range findings {
		categorized[finding.Category] = append(categorized[finding.Category], finding)
	}

	categories := make([]Category, 0, len(categorized))
	for category := range categorized {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, category := range categories {
		output.WriteString(fmt.Sprintf("### %s Findings\n\n", titleCase(string(category))))

		for _, finding := range categorized[category] {
			badge := f.getSeverityBadge(finding.Severity)
			output.WriteString(fmt.Sprintf("#### %s %s\n\n", badge, finding.Message))
			output.WriteString(fmt.Sprintf("**Location:** `%s:%d:%d`\n\n", finding.File, finding.Line, finding.Column))
			if finding.Snippet != "" {
				output.WriteString(fmt.Sprintf("```\n%s\n```\n\n", finding.Snippet))
			}
			if finding.Suggestion != "" {
				output.WriteString(fmt.Sprintf("**Suggested Fix:** %s\n\n", finding.Suggestion))
			}
			output.WriteString("---\n\n")
		}
	}
}

func (f *MarkdownFormatter) getSeverityBadge(severity Severity) string {
	switch severity {
	case SeverityCritical:
		return "🔴 **CRITICAL**"
	case SeverityHigh:
		return "🟠 **HIGH**"
	case SeverityMedium:
		return "🟡 **MEDIUM**"
	case SeverityLow:
		return "🔵 **LOW**"
	default:
		return "⚪ **UNKNOWN**"
	}
}

func GetFormatter(format string) Formatter {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONFormatter()
	case "markdown", "md":
		return NewMarkdownFormatter()
	case "sarif":
		return NewSARIFFormatter()
	case "table":
		fallthrough
	default:
		return NewTableFormatter(isTerminal())
	}
}

func titleCase(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return fileInfo.Mode()&os.ModeCharDevice != 0
}
