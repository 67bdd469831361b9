// Package ignore decides which scanned paths are left out: boilerplate files
// by exact name and gitignore-style patterns from a .docweaveignore file.
package ignore

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FileName is the optional pattern file read from the scan root.
const FileName = ".docweaveignore"

// Reason explains why a path was ignored.
type Reason string

const (
	NotIgnored Reason = ""
	ByName     Reason = "name"
	ByPattern  Reason = "pattern"
)

// Pattern is one compiled ignore line.
type Pattern struct {
	Regexp  *regexp.Regexp // Compiled regular expression for the pattern.
	Negate  bool           // Line started with '!'.
	DirOnly bool           // Line ended with '/'.
	Line    string         // Original pattern line.
	LineNo  int            // Line number in the source (1-based).
}

// Matcher holds the exact-name list and the compiled patterns.
type Matcher struct {
	names    map[string]bool
	patterns []*Pattern
	logger   *zap.Logger
}

// New returns a Matcher that ignores the given base names, compared
// case-insensitively.
func New(names []string, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{names: make(map[string]bool, len(names)), logger: logger}
	for _, name := range names {
		m.names[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return m
}

// Load builds a Matcher from the name list, the root's .docweaveignore (if
// present) and extra pattern lines, in that order.
func Load(root string, names, extra []string, logger *zap.Logger) (*Matcher, error) {
	m := New(names, logger)
	if err := m.CompileFile(filepath.Join(root, FileName)); err != nil {
		return nil, err
	}
	m.CompileLines(extra...)
	return m, nil
}

// CompileFile adds the patterns of an ignore file. A missing file is not an error.
func (m *Matcher) CompileFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Debug("Ignore file not present", zap.String("filePath", filePath))
			return nil
		}
		m.logger.Error("Failed to read ignore file", zap.String("filePath", filePath), zap.Error(err))
		return err
	}

	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	m.CompileLines(lines...)
	m.logger.Debug("Compiled ignore file", zap.String("filePath", filePath), zap.Int("patterns", len(m.patterns)))
	return nil
}

// CompileLines adds pattern lines. Blank lines and comments are skipped.
func (m *Matcher) CompileLines(lines ...string) {
	for i, line := range lines {
		p, err := parseLine(line)
		if err != nil {
			m.logger.Warn("Invalid ignore pattern", zap.String("pattern", line), zap.Int("lineNo", i+1), zap.Error(err))
			continue
		}
		if p == nil {
			continue
		}
		p.LineNo = i + 1
		m.patterns = append(m.patterns, p)
	}
}

// Patterns returns the number of compiled patterns.
func (m *Matcher) Patterns() int {
	return len(m.patterns)
}

// IgnoredName reports whether base is on the exact-name list.
func (m *Matcher) IgnoredName(base string) bool {
	return m.names[strings.ToLower(base)]
}

// Match reports whether the slash separated path relative to the scan root
// should be skipped, and why. The last matching pattern wins.
func (m *Matcher) Match(relPath string, isDir bool) (bool, Reason) {
	relPath = filepath.ToSlash(relPath)
	if !isDir && m.IgnoredName(path.Base(relPath)) {
		return true, ByName
	}

	ignored := false
	for _, p := range m.patterns {
		if p.DirOnly && !isDir {
			continue
		}
		if p.Regexp.MatchString(relPath) {
			ignored = !p.Negate
		}
	}
	if ignored {
		return true, ByPattern
	}
	return false, NotIgnored
}
