package rules

import (
	"regexp"
	"strings"

	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/source"
)

const maxSnippetLength = 120

// Match is one detection site produced by a rule matcher. Offset is a byte
// offset into the file content; the engine converts it to line and column.
// Message, when set, overrides the rule's default message. Confidence is
// meaningful only for ai-pattern rules.
type Match struct {
	Offset     int
	Snippet    string
	Message    string
	Confidence float64
}

// MatcherFunc is a pure function from file content plus structural index to
// zero or more match sites. Matchers must not mutate the unit or the index.
type MatcherFunc func(unit *source.FileUnit, idx *source.Index) []Match

// Rule is a named, categorized detection procedure. IDs are stable across
// versions and unique within a registry.
type Rule struct {
	ID         string
	Category   report.Category
	Severity   report.Severity
	Message    string
	Suggestion string
	Matcher    MatcherFunc
}

// Registry is the authoritative, read-only set of active rules for a run.
// Once built it is never mutated and may be shared across concurrently
// scanned files without synchronization.
type Registry struct {
	rules      []Rule
	byCategory map[report.Category][]Rule
}

// Build assembles the registry from the enabled analyzer configuration.
// It fails fast: an enabled category with zero rules, an invalid pattern,
// or an out-of-bounds tunable aborts before any file is scanned.
func Build(cfg *config.Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := &Registry{byCategory: make(map[report.Category][]Rule)}

	if cfg.Security.Enabled {
		rs, err := securityRules(&cfg.Security)
		if err != nil {
			return nil, err
		}
		if err := reg.add(report.CategorySecurity, rs); err != nil {
			return nil, err
		}
	}
	if cfg.Performance.Enabled {
		rs, err := performanceRules()
		if err != nil {
			return nil, err
		}
		if err := reg.add(report.CategoryPerformance, rs); err != nil {
			return nil, err
		}
	}
	if cfg.Maintainability.Enabled {
		rs, err := maintainabilityRules(&cfg.Maintainability)
		if err != nil {
			return nil, err
		}
		if err := reg.add(report.CategoryMaintainability, rs); err != nil {
			return nil, err
		}
	}
	if cfg.AIDetection.Enabled {
		rs, err := aiPatternRules()
		if err != nil {
			return nil, err
		}
		if err := reg.add(report.CategoryAIPattern, rs); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// NewRegistry builds a registry directly from rules, bypassing
// configuration. Callers embedding the engine use this to supply their
// own rule sets.
func NewRegistry(rs ...Rule) *Registry {
	reg := &Registry{byCategory: make(map[report.Category][]Rule)}
	reg.rules = append(reg.rules, rs...)
	for _, rule := range rs {
		reg.byCategory[rule.Category] = append(reg.byCategory[rule.Category], rule)
	}
	return reg
}

func (r *Registry) add(category report.Category, rs []Rule) error {
	if len(rs) == 0 {
		return &config.ValidationError{
			Field:  string(category),
			Reason: "analyzer is enabled but has no rules",
		}
	}
	r.rules = append(r.rules, rs...)
	r.byCategory[category] = rs
	return nil
}

// Active returns every rule in deterministic order: category registration
// order, then rule declaration order.
func (r *Registry) Active() []Rule {
	return r.rules
}

// Category returns the rules registered for one category.
func (r *Registry) Category(c report.Category) []Rule {
	return r.byCategory[c]
}

func (r *Registry) Len() int {
	return len(r.rules)
}

// patternSpec is the declaration form for regex-driven rules.
type patternSpec struct {
	id         string
	pattern    string
	severity   report.Severity
	message    string
	suggestion string
}

// compilePatternRules turns pattern specs into rules, failing on the first
// pattern that does not compile.
func compilePatternRules(category report.Category, specs []patternSpec, build func(*regexp.Regexp) MatcherFunc) ([]Rule, error) {
	rs := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.pattern)
		if err != nil {
			return nil, &config.ValidationError{
				Field:  spec.id,
				Reason: "pattern does not compile: " + err.Error(),
			}
		}
		rs = append(rs, Rule{
			ID:         spec.id,
			Category:   category,
			Severity:   spec.severity,
			Message:    spec.message,
			Suggestion: spec.suggestion,
			Matcher:    build(re),
		})
	}
	return rs, nil
}

// regexMatcher matches the pattern anywhere in the raw content.
func regexMatcher(re *regexp.Regexp) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, loc := range re.FindAllStringIndex(unit.Content, -1) {
			matches = append(matches, Match{
				Offset:  loc[0],
				Snippet: snippetAt(idx, loc[0]),
			})
		}
		return matches
	}
}

// codeMatcher matches the pattern only outside comment and string spans, for
// rules that would otherwise false-positive on prose.
func codeMatcher(re *regexp.Regexp) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, loc := range re.FindAllStringIndex(unit.Content, -1) {
			if idx.InComment(loc[0]) || idx.InString(loc[0]) {
				continue
			}
			matches = append(matches, Match{
				Offset:  loc[0],
				Snippet: snippetAt(idx, loc[0]),
			})
		}
		return matches
	}
}

// commentMatcher matches the pattern only inside comment spans.
func commentMatcher(re *regexp.Regexp) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, loc := range re.FindAllStringIndex(unit.Content, -1) {
			if !idx.InComment(loc[0]) {
				continue
			}
			matches = append(matches, Match{
				Offset:  loc[0],
				Snippet: snippetAt(idx, loc[0]),
			})
		}
		return matches
	}
}

func snippetAt(idx *source.Index, offset int) string {
	line, _ := idx.Position(offset)
	return truncate(strings.TrimSpace(idx.LineText(line)), maxSnippetLength)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
