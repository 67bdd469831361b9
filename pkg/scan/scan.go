// File: pkg/scan/scan.go
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"docweave/pkg/config"
	"docweave/pkg/ignore"
	"docweave/pkg/metrics"
	"docweave/pkg/structure"

	"go.uber.org/zap"
)

// ErrInvalidRoot is returned when the scan root is missing or not a directory.
var ErrInvalidRoot = errors.New("invalid scan root")

// Report counts what happened to the files matched by extension.
type Report struct {
	Matched   int // Files whose name carries an allowed extension
	Embedded  int // Files placed in the tree body
	Oversized int // Files listed as too large
	Ignored   int // Files dropped by name or pattern
	Binary    int // Files dropped because their content looks binary
	Failed    int // Files that could not be inspected
	Hidden    int // Dot files with an allowed extension, skipped unless hidden entries are included
}

// Result is the outcome of a scan.
type Result struct {
	Root      string // Absolute scan root
	Structure *structure.Structure
	Report    Report
	Elapsed   time.Duration
}

// Scanner walks a directory and records matching text files.
type Scanner struct {
	cfg         *config.Config
	matcher     *ignore.Matcher
	excludeDirs []string
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithMatcher replaces the matcher that would be loaded from the scan root.
func WithMatcher(m *ignore.Matcher) Option {
	return func(s *Scanner) { s.matcher = m }
}

// WithMetrics records scan outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithExcludedDirs keeps the walk out of the given directories, typically the
// results directory when it lives inside the scanned tree.
func WithExcludedDirs(dirs ...string) Option {
	return func(s *Scanner) {
		for _, dir := range dirs {
			if abs, err := filepath.Abs(dir); err == nil {
				s.excludeDirs = append(s.excludeDirs, abs)
			}
		}
	}
}

// New creates a Scanner. A nil cfg uses the defaults.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scanner{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Scan walks root and builds the structure. Per-file problems are logged and
// skipped; only an unusable root is an error.
func (s *Scanner) Scan(root string) (*Result, error) {
	startTime := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", ErrInvalidRoot, root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, absRoot)
	}

	matcher := s.matcher
	if matcher == nil {
		matcher, err = ignore.Load(absRoot, s.cfg.IgnoredFiles, s.cfg.IgnorePatterns, s.logger)
		if err != nil {
			return nil, fmt.Errorf("load ignore patterns: %w", err)
		}
	}

	s.logger.Info("Starting scan", zap.String("root", absRoot), zap.Strings("extensions", s.cfg.Extensions))

	var report Report
	candidates, err := s.collect(absRoot, matcher, &report)
	if err != nil {
		return nil, err
	}

	st := s.cfg.NewStructure()
	for _, rel := range candidates {
		s.place(absRoot, rel, st, &report)
	}

	elapsed := time.Since(startTime)
	s.metrics.PassDuration.WithLabelValues("scan").Observe(elapsed.Seconds())
	s.logger.Info("Scan completed",
		zap.String("root", absRoot),
		zap.Int("matched", report.Matched),
		zap.Int("embedded", report.Embedded),
		zap.Int("oversized", report.Oversized),
		zap.Int("ignored", report.Ignored),
		zap.Int("hidden", report.Hidden),
		zap.Duration("elapsed", elapsed))

	return &Result{Root: absRoot, Structure: st, Report: report, Elapsed: elapsed}, nil
}

// collect walks the tree and returns the sorted relative paths of files that
// carry an allowed extension and are not ignored.
func (s *Scanner) collect(absRoot string, matcher *ignore.Matcher, report *Report) ([]string, error) {
	var candidates []string

	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			s.logger.Warn("Error accessing path during scan", zap.String("path", path), zap.Error(err))
			return nil
		}
		if path == absRoot {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			s.logger.Warn("Unable to determine relative path", zap.String("path", path), zap.Error(err))
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.skipDir(path, d.Name(), relPath, matcher) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.cfg.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if s.matchesExtension(d.Name()) {
				report.Hidden++
				s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeHidden).Inc()
				s.logger.Debug("Skipping hidden file", zap.String("file", relPath))
			}
			return nil
		}
		if !s.matchesExtension(d.Name()) {
			return nil
		}
		report.Matched++

		if ignored, reason := matcher.Match(relPath, false); ignored {
			report.Ignored++
			s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeIgnored).Inc()
			s.logger.Debug("Skipping ignored file", zap.String("file", relPath), zap.String("reason", string(reason)))
			return nil
		}

		candidates = append(candidates, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrInvalidRoot, absRoot, err)
	}

	slices.Sort(candidates)
	return candidates, nil
}

// skipDir decides whether the walk descends into a directory.
func (s *Scanner) skipDir(path, name, relPath string, matcher *ignore.Matcher) bool {
	if !s.cfg.IncludeHidden && strings.HasPrefix(name, ".") {
		s.logger.Debug("Skipping hidden directory", zap.String("directory", relPath))
		return true
	}
	if slices.Contains(s.excludeDirs, path) {
		s.logger.Debug("Skipping excluded directory", zap.String("directory", relPath))
		return true
	}
	if ignored, _ := matcher.Match(relPath, true); ignored {
		s.logger.Debug("Skipping ignored directory", zap.String("directory", relPath))
		return true
	}
	return false
}

// matchesExtension reports whether name ends with one of the allowed extensions.
func (s *Scanner) matchesExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// place stats one candidate and records it in the tree or the oversized list.
func (s *Scanner) place(absRoot, relPath string, st *structure.Structure, report *Report) {
	absPath := filepath.Join(absRoot, filepath.FromSlash(relPath))

	info, err := os.Stat(absPath)
	if err != nil {
		report.Failed++
		s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Warn("Cannot stat file, skipping", zap.String("file", relPath), zap.Error(err))
		return
	}

	if info.Size() > s.cfg.LargeFileThreshold {
		report.Oversized++
		st.Oversized = append(st.Oversized, relPath)
		s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeOversized).Inc()
		s.logger.Warn("File exceeds size limit, listing without content",
			zap.String("file", relPath),
			zap.Int64("sizeBytes", info.Size()),
			zap.Int64("thresholdBytes", s.cfg.LargeFileThreshold))
		return
	}

	if s.cfg.SkipBinary {
		isBinary, err := isBinaryFile(absPath)
		if err != nil {
			report.Failed++
			s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.logger.Warn("Failed to check if file is binary", zap.String("file", relPath), zap.Error(err))
			return
		}
		if isBinary {
			report.Binary++
			s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeBinary).Inc()
			s.logger.Warn("File content looks binary, skipping", zap.String("file", relPath))
			return
		}
	}

	if err := st.Root.Insert(strings.Split(relPath, "/"), absPath); err != nil {
		report.Failed++
		s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Warn("Cannot place file in structure, skipping", zap.String("file", relPath), zap.Error(err))
		return
	}
	report.Embedded++
	s.metrics.FilesScanned.WithLabelValues(metrics.OutcomeEmbedded).Inc()
}
