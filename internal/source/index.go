package source

import (
	"regexp"
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) into the file content.
type Span struct {
	Start int
	End   int
}

func (s Span) contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Function marks one function or method boundary found in the file.
// Boundaries are heuristic: a function ends where the next one begins,
// or at end of file.
type Function struct {
	Name      string
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive
	Params    int
}

// Index is the minimal structural index built once per file and shared
// read-only across all rules analyzing that file: newline positions,
// comment spans, string-literal spans and function boundaries.
type Index struct {
	content    string
	lineStarts []int
	comments   []Span
	strings    []Span
	functions  []Function
}

var functionPatterns = map[Language]*regexp.Regexp{
	LanguageGo:         regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)`),
	LanguagePython:     regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)`),
	LanguageJavaScript: regexp.MustCompile(`^\s*(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([^)]*)`),
	LanguageTypeScript: regexp.MustCompile(`^\s*(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([^)]*)`),
	LanguageJava:       regexp.MustCompile(`^\s*(?:public|private|protected|static|final|\s)+[\w<>\[\]]+\s+(\w+)\s*\(([^)]*)`),
	LanguageRust:       regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:<[^>]*>)?\s*\(([^)]*)`),
	LanguageRuby:       regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_?!]*)\s*\(?([^)\n]*)`),
	LanguagePHP:        regexp.MustCompile(`^\s*(?:public|private|protected|static|\s)*function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)`),
}

// BuildIndex scans the unit content once and records line starts, comment
// spans, string spans and function boundaries. Rules must treat the result
// as read-only.
func BuildIndex(unit *FileUnit) *Index {
	idx := &Index{content: unit.Content}
	idx.scanLines()
	idx.scanSpans(unit.Language)
	idx.scanFunctions(unit.Language)
	return idx
}

func (x *Index) scanLines() {
	x.lineStarts = append(x.lineStarts, 0)
	for i := 0; i < len(x.content); i++ {
		if x.content[i] == '\n' && i+1 < len(x.content) {
			x.lineStarts = append(x.lineStarts, i+1)
		}
	}
}

// scanSpans walks the content byte by byte tracking comment and string
// state. Escape sequences inside quoted strings are honored; backticks and
// Python triple quotes are treated as raw.
func (x *Index) scanSpans(lang Language) {
	content := x.content
	hash := usesHashComments(lang)
	slash := usesSlashComments(lang)

	i := 0
	for i < len(content) {
		c := content[i]

		switch {
		case hash && c == '#':
			end := strings.IndexByte(content[i:], '\n')
			if end < 0 {
				end = len(content) - i
			}
			x.comments = append(x.comments, Span{Start: i, End: i + end})
			i += end + 1
		case slash && c == '/' && i+1 < len(content) && content[i+1] == '/':
			end := strings.IndexByte(content[i:], '\n')
			if end < 0 {
				end = len(content) - i
			}
			x.comments = append(x.comments, Span{Start: i, End: i + end})
			i += end + 1
		case slash && c == '/' && i+1 < len(content) && content[i+1] == '*':
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				x.comments = append(x.comments, Span{Start: i, End: len(content)})
				i = len(content)
			} else {
				x.comments = append(x.comments, Span{Start: i, End: i + 2 + end + 2})
				i += 2 + end + 2
			}
		case lang == LanguagePython && (strings.HasPrefix(content[i:], `"""`) || strings.HasPrefix(content[i:], "'''")):
			quote := content[i : i+3]
			end := strings.Index(content[i+3:], quote)
			if end < 0 {
				x.strings = append(x.strings, Span{Start: i, End: len(content)})
				i = len(content)
			} else {
				x.strings = append(x.strings, Span{Start: i, End: i + 3 + end + 3})
				i += 3 + end + 3
			}
		case c == '"' || c == '\'':
			i = x.scanQuoted(i, c)
		case c == '`' && (lang == LanguageGo || lang == LanguageJavaScript || lang == LanguageTypeScript):
			end := strings.IndexByte(content[i+1:], '`')
			if end < 0 {
				x.strings = append(x.strings, Span{Start: i, End: len(content)})
				i = len(content)
			} else {
				x.strings = append(x.strings, Span{Start: i, End: i + 1 + end + 1})
				i += 1 + end + 1
			}
		default:
			i++
		}
	}
}

// scanQuoted consumes a single- or double-quoted literal starting at
// offset start and returns the offset just past it. Unterminated literals
// end at the line break.
func (x *Index) scanQuoted(start int, quote byte) int {
	content := x.content
	i := start + 1
	for i < len(content) {
		switch content[i] {
		case '\\':
			i += 2
			continue
		case quote:
			x.strings = append(x.strings, Span{Start: start, End: i + 1})
			return i + 1
		case '\n':
			// Unterminated on this line; treat as a plain character.
			return start + 1
		}
		i++
	}
	return i
}

func (x *Index) scanFunctions(lang Language) {
	pattern, ok := functionPatterns[lang]
	if !ok {
		return
	}

	lineCount := len(x.lineStarts)
	var starts []int
	var names []string
	var params []int

	for line := 1; line <= lineCount; line++ {
		offset := x.lineStarts[line-1]
		if x.InComment(offset) || x.InString(offset) {
			continue
		}
		m := pattern.FindStringSubmatch(x.LineText(line))
		if m == nil {
			continue
		}
		starts = append(starts, line)
		names = append(names, m[1])
		params = append(params, countParams(m[2]))
	}

	for i, start := range starts {
		end := lineCount
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}
		x.functions = append(x.functions, Function{
			Name:      names[i],
			StartLine: start,
			EndLine:   end,
			Params:    params[i],
		})
	}
}

func countParams(list string) int {
	list = strings.TrimSpace(list)
	if list == "" {
		return 0
	}
	return strings.Count(list, ",") + 1
}

// Position converts a byte offset into a 1-based line and column.
func (x *Index) Position(offset int) (line, column int) {
	n := sort.Search(len(x.lineStarts), func(i int) bool {
		return x.lineStarts[i] > offset
	})
	line = n // lineStarts[n-1] <= offset < lineStarts[n]
	column = offset - x.lineStarts[line-1] + 1
	return line, column
}

// LineStartOffset returns the byte offset where the 1-based line begins.
func (x *Index) LineStartOffset(line int) int {
	if line < 1 || line > len(x.lineStarts) {
		return 0
	}
	return x.lineStarts[line-1]
}

// LineText returns the text of the given 1-based line without its newline.
func (x *Index) LineText(line int) string {
	if line < 1 || line > len(x.lineStarts) {
		return ""
	}
	start := x.lineStarts[line-1]
	end := len(x.content)
	if line < len(x.lineStarts) {
		end = x.lineStarts[line] - 1
	} else if end > start && x.content[end-1] == '\n' {
		end--
	}
	return x.content[start:end]
}

func (x *Index) LineCount() int {
	if x.content == "" {
		return 0
	}
	return len(x.lineStarts)
}

func (x *Index) InComment(offset int) bool {
	return spanContains(x.comments, offset)
}

func (x *Index) InString(offset int) bool {
	return spanContains(x.strings, offset)
}

func (x *Index) Functions() []Function {
	return x.functions
}

// CommentLineCount returns how many lines contain a comment start.
func (x *Index) CommentLineCount() int {
	seen := make(map[int]bool)
	for _, span := range x.comments {
		line, _ := x.Position(span.Start)
		seen[line] = true
	}
	return len(seen)
}

func spanContains(spans []Span, offset int) bool {
	// Spans are recorded in ascending order by the single scan pass.
	n := sort.Search(len(spans), func(i int) bool {
		return spans[i].End > offset
	})
	return n < len(spans) && spans[n].contains(offset)
}
