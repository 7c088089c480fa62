package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/source"
)

const (
	suggestSQL     = "Use parameterized queries or ORM methods instead of string concatenation"
	suggestXSS     = "Sanitize user input and use safe DOM manipulation methods"
	suggestSecrets = "Move secrets to environment variables or a secret management system"
	suggestDeser   = "Validate input and use safe serialization formats like JSON"
	suggestCommand = "Validate and sanitize inputs before passing them to the shell or loaders"
)

var sqlInjectionSpecs = []patternSpec{
	{
		id:         "security.sql-injection.format-string",
		pattern:    `(?i)execute\s*\(\s*["'].*%.*["']`,
		severity:   report.SeverityHigh,
		message:    "SQL injection via string formatting",
		suggestion: suggestSQL,
	},
	{
		id:         "security.sql-injection.f-string",
		pattern:    `(?i)cursor\.execute\s*\(\s*f["']`,
		severity:   report.SeverityHigh,
		message:    "SQL injection via f-string",
		suggestion: suggestSQL,
	},
	{
		id:         "security.sql-injection.concatenation",
		pattern:    `(?i)query\s*=\s*["'].*["']\s*\+`,
		severity:   report.SeverityHigh,
		message:    "SQL injection via string concatenation",
		suggestion: suggestSQL,
	},
	{
		id:         "security.sql-injection.where-clause",
		pattern:    `(?i)WHERE\s+\w+\s*=\s*["']?\s*\+`,
		severity:   report.SeverityHigh,
		message:    "Potential SQL injection in WHERE clause",
		suggestion: suggestSQL,
	},
}

var xssSpecs = []patternSpec{
	{
		id:         "security.xss.inner-html",
		pattern:    `innerHTML\s*=.*\+`,
		severity:   report.SeverityHigh,
		message:    "XSS via innerHTML concatenation",
		suggestion: suggestXSS,
	},
	{
		id:         "security.xss.document-write",
		pattern:    `document\.write\s*\(.*\+`,
		severity:   report.SeverityHigh,
		message:    "XSS via document.write concatenation",
		suggestion: suggestXSS,
	},
	{
		id:         "security.xss.eval-user-input",
		pattern:    `(?i)eval\s*\(.*user`,
		severity:   report.SeverityHigh,
		message:    "XSS via eval with user input",
		suggestion: suggestXSS,
	},
	{
		id:         "security.xss.template-script",
		pattern:    `<script>.*\$\{`,
		severity:   report.SeverityHigh,
		message:    "XSS via template literal in script tag",
		suggestion: suggestXSS,
	},
}

var deserializationSpecs = []patternSpec{
	{
		id:         "security.deserialization.pickle",
		pattern:    `pickle\.loads?\s*\(`,
		severity:   report.SeverityCritical,
		message:    "Unsafe pickle deserialization",
		suggestion: suggestDeser,
	},
	{
		id:         "security.deserialization.yaml-load",
		pattern:    `yaml\.load\s*\(`,
		severity:   report.SeverityCritical,
		message:    "Unsafe YAML deserialization",
		suggestion: suggestDeser,
	},
	{
		id:         "security.deserialization.eval",
		pattern:    `\beval\s*\(`,
		severity:   report.SeverityCritical,
		message:    "Code injection via eval",
		suggestion: suggestDeser,
	},
	{
		id:         "security.deserialization.exec",
		pattern:    `\bexec\s*\(`,
		severity:   report.SeverityCritical,
		message:    "Code injection via exec",
		suggestion: suggestDeser,
	},
}

var commandInjectionSpecs = []patternSpec{
	{
		id:         "security.command-injection.subprocess",
		pattern:    `subprocess\.(call|run|Popen)\s*\(.*(input|request|user)`,
		severity:   report.SeverityHigh,
		message:    "Command injection via subprocess with user input",
		suggestion: suggestCommand,
	},
	{
		id:         "security.command-injection.os-system",
		pattern:    `os\.system\s*\(.*\+`,
		severity:   report.SeverityHigh,
		message:    "Command injection via os.system",
		suggestion: suggestCommand,
	},
	{
		id:         "security.command-injection.model-load",
		pattern:    `(?i)(model|torch|joblib)\.load\s*\(.*(input|request|user)`,
		severity:   report.SeverityHigh,
		message:    "Unsafe model loading from user input",
		suggestion: suggestCommand,
	},
}

// securityRules builds the security category: the fixed vulnerability
// pattern sets plus the configurable hardcoded-secret patterns.
func securityRules(cfg *config.SecurityConfig) ([]Rule, error) {
	var rs []Rule

	for _, specs := range [][]patternSpec{sqlInjectionSpecs, xssSpecs, deserializationSpecs, commandInjectionSpecs} {
		compiled, err := compilePatternRules(report.CategorySecurity, specs, codeMatcher)
		if err != nil {
			return nil, err
		}
		rs = append(rs, compiled...)
	}

	secretRules, err := hardcodedSecretRules(cfg)
	if err != nil {
		return nil, err
	}
	rs = append(rs, secretRules...)

	return rs, nil
}

// hardcodedSecretRules compiles the configured secret patterns. Secrets
// live inside string literals, so these match raw content, honoring the
// allowlist from configuration.
func hardcodedSecretRules(cfg *config.SecurityConfig) ([]Rule, error) {
	allowed := make([]string, len(cfg.AllowedSecrets))
	for i, s := range cfg.AllowedSecrets {
		allowed[i] = strings.ToLower(s)
	}

	rs := make([]Rule, 0, len(cfg.SecretPatterns))
	for i, pattern := range cfg.SecretPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &config.ValidationError{
				Field:  "security.secret_patterns",
				Reason: fmt.Sprintf("pattern %q does not compile: %v", pattern, err),
			}
		}
		rs = append(rs, Rule{
			ID:         fmt.Sprintf("security.hardcoded-secret.%d", i+1),
			Category:   report.CategorySecurity,
			Severity:   report.SeverityCritical,
			Message:    "Hardcoded secret detected",
			Suggestion: suggestSecrets,
			Matcher:    secretMatcher(re, allowed),
		})
	}
	return rs, nil
}

func secretMatcher(re *regexp.Regexp, allowed []string) MatcherFunc {
	return func(unit *source.FileUnit, idx *source.Index) []Match {
		var matches []Match
		for _, loc := range re.FindAllStringIndex(unit.Content, -1) {
			matched := strings.ToLower(unit.Content[loc[0]:loc[1]])
			if isAllowedSecret(matched, allowed) {
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

func isAllowedSecret(matched string, allowed []string) bool {
	for _, a := range allowed {
		if strings.Contains(matched, a) {
			return true
		}
	}
	return false
}
