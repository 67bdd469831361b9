// File: pkg/combine/helpers.go
package combine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"go.uber.org/zap"
)

// languages maps file extensions to code fence tags.
var languages = map[string]string{
	".json":  "json",
	".ipynb": "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".ts":    "typescript",
	".js":    "javascript",
	".txt":   "text",
	".md":    "markdown",
	".mdx":   "markdown",
	".jsx":   "jsx",
	".tsx":   "tsx",
	".css":   "css",
	".scss":  "scss",
	".sql":   "sql",
	".sh":    "bash",
	".py":    "python",
}

// proseExtensions are embedded as-is instead of inside a code fence.
var proseExtensions = map[string]bool{
	".md":  true,
	".mdx": true,
}

const defaultLanguage = "text"

// Language returns the content-type tag for a file name. With detect set,
// extensions missing from the fixed table are looked up in chroma's lexer
// registry before falling back to "text".
func Language(name string, detect bool) string {
	ext := strings.ToLower(filepath.Ext(name))
	if lang, ok := languages[ext]; ok {
		return lang
	}
	if detect {
		if lexer := lexers.Match(filepath.Base(name)); lexer != nil {
			cfg := lexer.Config()
			if len(cfg.Aliases) > 0 {
				return cfg.Aliases[0]
			}
			return strings.ToLower(cfg.Name)
		}
	}
	return defaultLanguage
}

// IsProse reports whether a file is embedded without a code fence.
func IsProse(name string) bool {
	return proseExtensions[strings.ToLower(filepath.Ext(name))]
}

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	inlineSpace    = regexp.MustCompile(`[\t\v\f\r\p{Z}\x{FEFF}]+`)
)

// Normalize unifies line endings, collapses three or more newlines to two,
// collapses other whitespace runs (Unicode spaces included) to one space and
// trims the result.
func Normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = excessNewlines.ReplaceAllString(content, "\n\n")
	content = inlineSpace.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// formatContent wraps non-prose content in a fence tagged with its language.
func formatContent(name, language, content string) string {
	if IsProse(name) {
		return content
	}
	return fmt.Sprintf("```%s\n%s\n```", language, content)
}

// WriteCombinedFile writes the document to outputPath, creating parent
// directories as needed.
func WriteCombinedFile(outputPath, content string, logger *zap.Logger) error {
	logger.Debug("Writing combined content to output file", zap.String("combinedFile", outputPath))

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		logger.Error("Failed to create output directory", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			logger.Error("Failed to close output file", zap.String("file", outputPath), zap.Error(err))
		}
	}()

	writer := bufio.NewWriter(outFile)
	if _, err := writer.WriteString(content); err != nil {
		logger.Error("Failed to write combined file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := writer.Flush(); err != nil {
		logger.Error("Failed to flush output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
