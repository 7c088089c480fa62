package rules

import (
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
	"gonum.org/v1/gonum/stat"

	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/source"
)

const suggestAI = "Review for correctness; generated code often needs human verification"

// aiSpec declares one AI-authorship signal: a pattern, where it must occur,
// and the confidence it contributes.
type aiSpec struct {
	id         string
	pattern    string
	confidence float64
	message    string
	where      string // "comment", "string", "code", "any"
}

var aiSpecs = []aiSpec{
	// Comment style.
	{"ai-pattern.comment.explanatory", `(?i)(#|//)\s*(This|Here)\s+is\s+(a|an)\s+`, 0.8, "AI-style explanatory comment", "comment"},
	{"ai-pattern.comment.note", `(?i)(#|//)\s*Note:\s*`, 0.7, "AI-style note comment", "comment"},
	{"ai-pattern.comment.important", `(?i)(#|//)\s*Important:\s*`, 0.7, "AI-style important comment", "comment"},
	{"ai-pattern.comment.example", `(?i)(#|//)\s*Example:\s*`, 0.6, "AI-style example comment", "comment"},
	{"ai-pattern.comment.todo-implement", `(?i)(#|//)\s*TODO:\s*Implement\s+`, 0.5, "Generic TODO comment", "comment"},
	{"ai-pattern.comment.action", `(?i)(#|//)\s*(Initialize|Create|Define)\s+(the|a)\s+`, 0.7, "AI-style action comment", "comment"},

	// Code shape.
	{"ai-pattern.code.verbose-none-check", `if\s+\w+\s+is\s+not\s+None\s*:`, 0.6, "Verbose None check", "code"},
	{"ai-pattern.code.generic-exception", `except\s+Exception\s+as\s+e\s*:`, 0.6, "Generic exception handling", "code"},
	{"ai-pattern.code.generic-main", `def\s+main\s*\(\s*\)\s*:`, 0.5, "Generic main function", "code"},
	{"ai-pattern.code.main-guard", `if\s+__name__\s*==\s*["']__main__["']\s*:`, 0.4, "Standard main guard", "code"},
	{"ai-pattern.code.path-append", `sys\.path\.append`, 0.7, "Manual path manipulation", "code"},

	// Structure naming.
	{"ai-pattern.structure.my-class", `class\s+MyClass\s*[(:]`, 0.9, "Generic MyClass class name", "code"},
	{"ai-pattern.structure.my-function", `def\s+my_function\s*\(`, 0.9, "Generic my_function function name", "code"},
	{"ai-pattern.structure.verb-prefix", `(def|func|function)\s+(calculate|process|handle)_\w+\s*\(`, 0.6, "AI-style verb-prefixed function name", "code"},

	// String literals.
	{"ai-pattern.string.hello-world", `(?i)Hello,?\s+World!?`, 0.8, "Hello World string", "string"},
	{"ai-pattern.string.test-string", `(?i)This\s+is\s+a\s+test`, 0.7, "Placeholder test string", "string"},
	{"ai-pattern.string.input-prompt", `(?i)Enter\s+\w+:`, 0.6, "Generic input prompt string", "string"},
	{"ai-pattern.string.processing", `(?i)Processing\s+\w+\.\.\.`, 0.6, "Generic processing message", "string"},
}

// genericNameConfidence maps a fully generic identifier to the confidence
// it contributes. Identifiers are split into words first, so dataBuffer or
// result_set do not count.
var genericNameConfidence = map[string]float64{
	"data":   0.6,
	"result": 0.5,
	"value":  0.5,
	"item":   0.4,
	"temp":   0.6,
	"foo":    0.7,
	"bar":    0.7,
}

var assignmentPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*:?=[^=]`)

func aiPatternRules() ([]Rule, error) {
	var rs []Rule

	for _, spec := range aiSpecs {
		re, err := regexp.Compile(spec.pattern)
		if err != nil {
			return nil, &config.ValidationError{
				Field:  spec.id,
				Reason: "pattern does not compile: " + err.Error(),
			}
		}
		rs = append(rs, Rule{
			ID:         spec.id,
			Category:   report.CategoryAIPattern,
			Severity:   report.SeverityLow,
			Message:    spec.message,
			Suggestion: suggestAI,
			Matcher:    aiMatcher(re, spec.where, spec.confidence),
		})
	}

	rs = append(rs,
		Rule{
			ID:         "ai-pattern.naming.generic",
			Category:   report.CategoryAIPattern,
			Severity:   report.SeverityLow,
			Message:    "Generic variable name",
			Suggestion: suggestAI,
			Matcher:    genericNameMatcher(),
		},
		Rule{
			ID:         "ai-pattern.style.uniform",
			Category:   report.CategoryAIPattern,
			Severity:   report.SeverityLow,
			Message:    "Uniform formatting with heavy commenting suggests generated code",
			Suggestion: suggestAI,
			Matcher:    styleMatcher(),
		},
	)

	return rs, nil
}

// aiMatcher matches the pattern in the requested region of the file and
// stamps the declared confidence on every match.
func aiMatcher(re *regexp.Regexp, where string, confidence float64) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, loc := range re.FindAllStringIndex(unit.Content, -1) {
			switch where {
			case "comment":
				if !idx.InComment(loc[0]) {
					continue
				}
			case "string":
				if !idx.InString(loc[0]) {
					continue
				}
			case "code":
				if idx.InComment(loc[0]) || idx.InString(loc[0]) {
					continue
				}
			}
			matches = append(matches, Match{
				Offset:     loc[0],
				Snippet:    snippetAt(idx, loc[0]),
				Confidence: confidence,
			})
		}
		return matches
	}
}

// genericNameMatcher finds assignments whose target splits entirely into
// generic words, at most one report per identifier per file.
func genericNameMatcher() MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		seen := make(map[string]bool)
		for _, loc := range assignmentPattern.FindAllStringSubmatchIndex(unit.Content, -1) {
			if idx.InComment(loc[0]) || idx.InString(loc[0]) {
				continue
			}
			name := unit.Content[loc[2]:loc[3]]
			if seen[name] {
				continue
			}
			confidence, generic := genericNameScore(name)
			if !generic {
				continue
			}
			seen[name] = true
			matches = append(matches, Match{
				Offset:     loc[2],
				Message:    "Generic variable name \"" + name + "\"",
				Snippet:    snippetAt(idx, loc[2]),
				Confidence: confidence,
			})
		}
		return matches
	}
}

// genericNameScore splits the identifier into words (camelCase and
// snake_case both) and returns the highest generic-word confidence if every
// word is generic.
func genericNameScore(name string) (float64, bool) {
	if strings.HasPrefix(name, "my_") || strings.HasPrefix(name, "my") && len(name) > 2 && name[2] >= 'A' && name[2] <= 'Z' {
		return 0.7, true
	}

	var words []string
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		for _, word := range camelcase.Split(part) {
			words = append(words, strings.ToLower(word))
		}
	}
	if len(words) == 0 {
		return 0, false
	}

	best := 0.0
	for _, word := range words {
		conf, ok := genericNameConfidence[word]
		if !ok {
			return 0, false
		}
		if conf > best {
			best = conf
		}
	}
	return best, true
}

// styleMatcher computes whole-file style statistics: AI output tends toward
// very uniform line lengths combined with a high comment ratio. Emits at
// most one match, anchored to the top of the file.
func styleMatcher() MatcherFunc {
	const (
		minLines        = 20
		maxVariance     = 100.0
		minCommentRatio = 0.3
	)
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		if idx.LineCount() < minLines {
			return nil
		}

		var lengths []float64
		for line := 1; line <= idx.LineCount(); line++ {
			text := idx.LineText(line)
			if strings.TrimSpace(text) == "" {
				continue
			}
			lengths = append(lengths, float64(len(text)))
		}
		if len(lengths) < minLines {
			return nil
		}

		variance := stat.Variance(lengths, nil)
		commentRatio := float64(idx.CommentLineCount()) / float64(idx.LineCount())

		if variance >= maxVariance || commentRatio <= minCommentRatio {
			return nil
		}
		return []Match{{
			Offset:     0,
			Snippet:    snippetAt(idx, 0),
			Confidence: 0.65,
		}}
	}
}
