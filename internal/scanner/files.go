package scanner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/codeguardian/codeguardian/internal/source"
)

// FileScanner walks a directory tree and yields the file units for a scan.
// It applies .gitignore entries and configured exclude patterns, keeps only
// supported source extensions, and skips binaries. It implements the
// analyzer Provider interface.
type FileScanner struct {
	rootPath   string
	gitIgnores []string
	excludes   []string
	extensions map[string]bool
}

func NewFileScanner(rootPath string, excludePatterns []string) (*FileScanner, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	extensions := make(map[string]bool)
	for _, ext := range source.SupportedExtensions() {
		extensions[ext] = true
	}

	fs := &FileScanner{
		rootPath:   absPath,
		excludes:   excludePatterns,
		extensions: extensions,
	}

	if err := fs.loadGitIgnores(); err != nil {
		return nil, fmt.Errorf("failed to load .gitignore: %w", err)
	}

	return fs, nil
}

func (fs *FileScanner) loadGitIgnores() error {
	gitIgnorePath := filepath.Join(fs.rootPath, ".gitignore")
	file, err := os.Open(gitIgnorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			fmt.Printf("Error closing .gitignore file: %v\n", err)
		}
	}(file)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			fs.gitIgnores = append(fs.gitIgnores, line)
		}
	}

	return scanner.Err()
}

// Units walks the tree and returns one unit per analyzable file, sorted by
// the walk order (lexicographic within each directory). A file that exists
// but cannot be read or decoded is returned as an unreadable unit rather
// than failing the walk.
func (fs *FileScanner) Units(ctx context.Context) ([]*source.FileUnit, error) {
	var units []*source.FileUnit

	err := filepath.Walk(fs.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if fs.shouldSkipPath(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(fs.rootPath, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if !fs.shouldAnalyze(relPath) {
			return nil
		}

		units = append(units, fs.readUnit(path, relPath))
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}

	return units, nil
}

func (fs *FileScanner) readUnit(path, relPath string) *source.FileUnit {
	data, err := os.ReadFile(path)
	if err != nil {
		return source.NewUnreadableUnit(relPath, err)
	}
	if !utf8.Valid(data) {
		return source.NewUnreadableUnit(relPath, fmt.Errorf("content is not valid UTF-8"))
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return source.NewUnreadableUnit(relPath, fmt.Errorf("content appears to be binary"))
	}
	return source.NewFileUnit(relPath, string(data))
}

func (fs *FileScanner) shouldSkipPath(path string) bool {
	base := filepath.Base(path)
	switch base {
	case ".git", "node_modules", "vendor", "__pycache__":
		return true
	}
	return false
}

func (fs *FileScanner) shouldAnalyze(relPath string) bool {
	ext := strings.ToLower(filepath.Ext(relPath))
	if !fs.extensions[ext] {
		return false
	}
	if fs.matchesAny(fs.gitIgnores, relPath) {
		return false
	}
	return !fs.matchesAny(fs.excludes, relPath)
}

func (fs *FileScanner) matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		// Directory patterns ending with / match any path beneath them.
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			if strings.HasPrefix(relPath, dirPattern+"/") {
				return true
			}
			continue
		}
		// Patterns containing a separator match against path prefixes too.
		if strings.Contains(pattern, "/") {
			prefix := strings.TrimSuffix(pattern, "/*")
			if prefix != pattern && strings.HasPrefix(relPath, prefix+"/") {
				return true
			}
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(relPath)); matched {
			return true
		}
	}
	return false
}
