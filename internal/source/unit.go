package source

import (
	"path/filepath"
	"strings"
)

type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageRust       Language = "rust"
	LanguageRuby       Language = "ruby"
	LanguagePHP        Language = "php"
	LanguageShell      Language = "shell"
	LanguageUnknown    Language = "unknown"
)

var languageByExtension = map[string]Language{
	".go":   LanguageGo,
	".py":   LanguagePython,
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".tsx":  LanguageTypeScript,
	".java": LanguageJava,
	".c":    LanguageC,
	".h":    LanguageC,
	".cpp":  LanguageCPP,
	".cc":   LanguageCPP,
	".hpp":  LanguageCPP,
	".cs":   LanguageCSharp,
	".rs":   LanguageRust,
	".rb":   LanguageRuby,
	".php":  LanguagePHP,
	".sh":   LanguageShell,
}

// DetectLanguage infers the language from the file extension.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return LanguageUnknown
}

// SupportedExtensions returns the extensions the scanner considers source code.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(languageByExtension))
	for ext := range languageByExtension {
		exts = append(exts, ext)
	}
	return exts
}

// FileUnit is one file as handed to the analyzer engine. It is owned by the
// run for its duration and never mutated after creation. A unit with ReadErr
// set carries no content; the engine reports it and moves on.
type FileUnit struct {
	Path      string
	Language  Language
	Content   string
	LineCount int
	ReadErr   error
}

func NewFileUnit(path, content string) *FileUnit {
	return &FileUnit{
		Path:      path,
		Language:  DetectLanguage(path),
		Content:   content,
		LineCount: countLines(content),
	}
}

// NewUnreadableUnit records a file whose content could not be read or decoded.
func NewUnreadableUnit(path string, err error) *FileUnit {
	return &FileUnit{
		Path:     path,
		Language: DetectLanguage(path),
		ReadErr:  err,
	}
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// usesHashComments reports whether '#' starts a line comment in lang.
func usesHashComments(lang Language) bool {
	switch lang {
	case LanguagePython, LanguageRuby, LanguageShell, LanguageUnknown:
		return true
	}
	return false
}

// usesSlashComments reports whether '//' and '/* */' are comments in lang.
func usesSlashComments(lang Language) bool {
	switch lang {
	case LanguagePython, LanguageRuby, LanguageShell:
		return false
	}
	return true
}
