package rules

import "github.com/codeguardian/codeguardian/internal/report"

const (
	suggestLoops  = "Restructure the loop to avoid repeated work per iteration"
	suggestMemory = "Preallocate or accumulate once outside the loop to avoid repeated copies"
	suggestIO     = "Batch the operation or hoist it out of the loop"
)

var performanceSpecs = []patternSpec{
	{
		id:         "performance.loop.range-len",
		pattern:    `for\s+\w+\s+in\s+range\s*\(\s*len\s*\(`,
		severity:   report.SeverityMedium,
		message:    "Inefficient loop over range(len(...)) - iterate directly or use enumerate()",
		suggestion: suggestLoops,
	},
	{
		id:         "performance.loop.while-len",
		pattern:    `while\s+.*len\s*\(.*\)\s*>`,
		severity:   report.SeverityMedium,
		message:    "Inefficient while loop re-checking length each iteration",
		suggestion: suggestLoops,
	},
	{
		id:         "performance.loop.nested-filter-map",
		pattern:    `list\s*\(\s*filter\s*\(.*list\s*\(\s*map\s*\(`,
		severity:   report.SeverityMedium,
		message:    "Nested filter/map conversion - a single comprehension is cheaper",
		suggestion: suggestLoops,
	},
	{
		id:         "performance.memory.list-concat",
		pattern:    `\w+\s*\+=\s*\[.*\]`,
		severity:   report.SeverityMedium,
		message:    "List concatenation in place - append or extend avoids intermediate copies",
		suggestion: suggestMemory,
	},
	{
		id:         "performance.memory.concat-in-loop",
		pattern:    `(pd\.concat|np\.concatenate)\s*\(.*for\s+\w+\s+in`,
		severity:   report.SeverityHigh,
		message:    "Dataframe/array concatenation inside a loop",
		suggestion: suggestMemory,
	},
	{
		id:         "performance.io.query-in-loop",
		pattern:    `\.execute\s*\(.*for\s+\w+\s+in`,
		severity:   report.SeverityHigh,
		message:    "Database query inside a loop - consider batch operations",
		suggestion: suggestIO,
	},
	{
		id:         "performance.io.request-in-loop",
		pattern:    `requests\.(get|post)\s*\(.*for\s+\w+\s+in`,
		severity:   report.SeverityHigh,
		message:    "HTTP request inside a loop without session reuse",
		suggestion: suggestIO,
	},
	{
		id:         "performance.io.sleep-in-loop",
		pattern:    `time\.[Ss]leep\s*\(.*for\s+\w+\s+in`,
		severity:   report.SeverityLow,
		message:    "Sleep inside a loop may indicate polling that should be event-driven",
		suggestion: suggestIO,
	},
}

func performanceRules() ([]Rule, error) {
	return compilePatternRules(report.CategoryPerformance, performanceSpecs, codeMatcher)
}
