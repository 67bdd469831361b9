// Package project derives artifact names and locations.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CombinedSuffix is appended to the structure base name for the combined document.
const CombinedSuffix = "_combined.md"

var separatorRuns = regexp.MustCompile(`[_-]+`)

// Name derives a project identifier from root: empty and ignored segments are
// dropped, the last maxSegments remaining segments are kept, runs of '_' and
// '-' collapse to '_', and the parts are joined with '_'.
func Name(root string, ignored []string, maxSegments int) string {
	skip := make(map[string]bool, len(ignored))
	for _, seg := range ignored {
		skip[seg] = true
	}

	var parts []string
	for _, seg := range strings.Split(filepath.ToSlash(filepath.Clean(root)), "/") {
		if seg == "" || seg == "." || seg == ".." || skip[seg] || strings.HasSuffix(seg, ":") {
			continue
		}
		parts = append(parts, separatorRuns.ReplaceAllString(seg, "_"))
	}
	if maxSegments > 0 && len(parts) > maxSegments {
		parts = parts[len(parts)-maxSegments:]
	}
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, "_")
}

// StructurePath returns where the scan artifact for name is written.
func StructurePath(resultsDir, name string) string {
	return filepath.Join(resultsDir, name+".json")
}

// CombinedPath returns where the combined document for a structure file is written.
func CombinedPath(resultsDir, structurePath string) string {
	base := strings.TrimSuffix(filepath.Base(structurePath), filepath.Ext(structurePath))
	return filepath.Join(resultsDir, base+CombinedSuffix)
}

// EnsureDir creates the results directory if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create results directory %s: %w", dir, err)
	}
	return nil
}
