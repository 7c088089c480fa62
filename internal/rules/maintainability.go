package rules

import (
	"fmt"
	"regexp"

	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/source"
)

var (
	todoPattern        = regexp.MustCompile(`\b(TODO|FIXME|HACK|XXX)\b`)
	magicNumberPattern = regexp.MustCompile(`\b\d{2,}\b`)
	branchPattern      = regexp.MustCompile(`\b(if|else if|elif|for|while|switch|case|select|catch|except|when)\b|&&|\|\|`)
)

// maintainabilityRules builds the maintainability category. Line-level
// smells come from the original pattern set; function-level rules (length,
// parameters, complexity) walk the structural index so comments and string
// literals never count as code.
func maintainabilityRules(cfg *config.MaintainabilityConfig) ([]Rule, error) {
	maxLine := cfg.MaxLineLength
	maxFunc := cfg.MaxFunctionLength
	maxParams := cfg.MaxParameters
	maxComplexity := cfg.MaxComplexity

	return []Rule{
		{
			ID:         "maintainability.line-length",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityLow,
			Message:    "Line is too long",
			Suggestion: "Break long lines into multiple lines for readability",
			Matcher:    lineLengthMatcher(maxLine),
		},
		{
			ID:         "maintainability.todo-comment",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityLow,
			Message:    "TODO/FIXME comment found",
			Suggestion: "Address or track the comment before release",
			Matcher:    commentMatcher(todoPattern),
		},
		{
			ID:         "maintainability.deep-nesting",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityMedium,
			Message:    "Code is too deeply nested",
			Suggestion: "Extract nested blocks into separate functions or use early returns",
			Matcher:    deepNestingMatcher(),
		},
		{
			ID:         "maintainability.magic-number",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityLow,
			Message:    "Magic number detected - consider a named constant",
			Suggestion: "Replace magic numbers with named constants",
			Matcher:    magicNumberMatcher(),
		},
		{
			ID:         "maintainability.long-function",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityMedium,
			Message:    "Function is too long",
			Suggestion: "Break long functions into smaller, focused functions",
			Matcher:    longFunctionMatcher(maxFunc),
		},
		{
			ID:         "maintainability.too-many-params",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityMedium,
			Message:    "Function has too many parameters",
			Suggestion: "Group related parameters into a struct or options object",
			Matcher:    paramCountMatcher(maxParams),
		},
		{
			ID:         "maintainability.high-complexity",
			Category:   report.CategoryMaintainability,
			Severity:   report.SeverityMedium,
			Message:    "Function complexity is too high",
			Suggestion: "Reduce decision points by extracting helpers or using early returns",
			Matcher:    complexityMatcher(maxComplexity),
		},
	}, nil
}

func lineLengthMatcher(maxLen int) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for line := 1; line <= idx.LineCount(); line++ {
			text := idx.LineText(line)
			if len(text) > maxLen {
				matches = append(matches, Match{
					Offset:  idx.LineStartOffset(line) + maxLen,
					Message: fmt.Sprintf("Line is too long (%d characters, max %d)", len(text), maxLen),
					Snippet: truncate(text, maxSnippetLength),
				})
			}
		}
		return matches
	}
}

// deepNestingMatcher flags lines indented past six levels (24 columns,
// counting tabs as four).
func deepNestingMatcher() MatcherFunc {
	const maxIndent = 24
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for line := 1; line <= idx.LineCount(); line++ {
			text := idx.LineText(line)
			indent := 0
		loop:
			for _, c := range text {
				switch c {
				case ' ':
					indent++
				case '\t':
					indent += 4
				default:
					break loop
				}
			}
			if len(text) > 0 && indent > maxIndent {
				offset := idx.LineStartOffset(line)
				if idx.InComment(offset) {
					continue
				}
				matches = append(matches, Match{
					Offset:  offset,
					Snippet: truncate(text, maxSnippetLength),
				})
			}
		}
		return matches
	}
}

// magicNumberMatcher reports multi-digit literals outside comments and
// strings, at most one per line to keep the noise down.
func magicNumberMatcher() MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		lastLine := 0
		for _, loc := range magicNumberPattern.FindAllStringIndex(unit.Content, -1) {
			if idx.InComment(loc[0]) || idx.InString(loc[0]) {
				continue
			}
			line, _ := idx.Position(loc[0])
			if line == lastLine {
				continue
			}
			lastLine = line
			matches = append(matches, Match{
				Offset:  loc[0],
				Snippet: snippetAt(idx, loc[0]),
			})
		}
		return matches
	}
}

func longFunctionMatcher(maxLines int) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, fn := range idx.Functions() {
			length := fn.EndLine - fn.StartLine + 1
			if length > maxLines {
				matches = append(matches, Match{
					Offset:  idx.LineStartOffset(fn.StartLine),
					Message: fmt.Sprintf("Function %q is too long (%d lines, max %d)", fn.Name, length, maxLines),
					Snippet: snippetAt(idx, idx.LineStartOffset(fn.StartLine)),
				})
			}
		}
		return matches
	}
}

func paramCountMatcher(maxParams int) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, fn := range idx.Functions() {
			if fn.Params > maxParams {
				matches = append(matches, Match{
					Offset:  idx.LineStartOffset(fn.StartLine),
					Message: fmt.Sprintf("Function %q has too many parameters (%d, max %d)", fn.Name, fn.Params, maxParams),
					Snippet: snippetAt(idx, idx.LineStartOffset(fn.StartLine)),
				})
			}
		}
		return matches
	}
}

// complexityMatcher computes a cyclomatic complexity proxy per function:
// one plus the branch keywords and boolean operators inside its span,
// excluding comment and string positions.
func complexityMatcher(maxComplexity int) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		functions := idx.Functions()
		if len(functions) == 0 {
			return nil
		}

		branchOffsets := codeOffsets(branchPattern, unit.Content, idx)

		var matches []Match
		for _, fn := range functions {
			complexity := 1
			startOffset := idx.LineStartOffset(fn.StartLine)
			endOffset := len(unit.Content)
			if fn.EndLine < idx.LineCount() {
				endOffset = idx.LineStartOffset(fn.EndLine + 1)
			}
			for _, off := range branchOffsets {
				if off >= startOffset && off < endOffset {
					complexity++
				}
			}
			if complexity > maxComplexity {
				matches = append(matches, Match{
					Offset:  startOffset,
					Message: fmt.Sprintf("Function %q complexity is %d (max %d)", fn.Name, complexity, maxComplexity),
					Snippet: snippetAt(idx, startOffset),
				})
			}
		}
		return matches
	}
}

// codeOffsets returns the offsets of every pattern match that falls outside
// comment and string spans.
func codeOffsets(re *regexp.Regexp, content string, idx *source.Index) []int {
	var offsets []int
	for _, loc := range re.FindAllStringIndex(content, -1) {
		if idx.InComment(loc[0]) || idx.InString(loc[0]) {
			continue
		}
		offsets = append(offsets, loc[0])
	}
	return offsets
}
