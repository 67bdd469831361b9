package combine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"docweave/pkg/chunk"
	"docweave/pkg/config"
	"docweave/pkg/metrics"
	"docweave/pkg/structure"

	"go.uber.org/zap"
)

// Combiner turns a structure into one combined document.
type Combiner struct {
	cfg     *config.Config
	chunker *chunk.Chunker
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes a Combiner.
type Option func(*Combiner)

// WithClock sets the clock used for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Combiner) { c.now = now }
}

// WithMetrics records combine outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Combiner) { c.metrics = m }
}

// New creates a Combiner. A nil cfg uses the defaults.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Combiner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	chunker, err := cfg.Chunker()
	if err != nil {
		return nil, err
	}
	c := &Combiner{cfg: cfg, chunker: chunker, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	return c, nil
}

// Combine assembles the document for st: header, table of contents, the
// oversized file list and one block per file. Unreadable files are logged
// and contribute nothing.
func (c *Combiner) Combine(st *structure.Structure) *Document {
	startTime := time.Now()
	root := st.Root
	if root == nil {
		root = structure.NewFolder()
	}

	var b strings.Builder
	b.WriteString("# Combined Documentation\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", c.now().UTC().Format(time.RFC3339))

	if st.TableOfContents {
		b.WriteString("# Table of Contents\n\n")
		b.WriteString(GenerateTableOfContents(root))
		b.WriteString("\n\n")
	}

	// The artifact does not record the scan threshold; the configured one is stated.
	if len(st.Oversized) > 0 {
		b.WriteString("## Large Files (Skipped)\n\n")
		fmt.Fprintf(&b, "The following files exceeded the size limit (%sKB) and were skipped:\n\n", kilobytes(c.cfg.LargeFileThreshold))
		for _, rel := range st.Oversized {
			b.WriteString("- " + rel + "\n")
		}
		b.WriteString("\n\n")
	}

	doc := &Document{Skipped: append([]string(nil), st.Oversized...)}
	for _, fc := range c.ProcessFiles(st, root.Entries(), c.cfg.Workers) {
		if fc.Err != nil {
			doc.Failed = append(doc.Failed, fc.DisplayPath)
			c.metrics.FilesCombined.WithLabelValues("failed").Inc()
			c.logger.Warn("Could not read file, leaving it out", zap.String("file", fc.DisplayPath), zap.Error(fc.Err))
			continue
		}
		doc.Files++
		c.metrics.FilesCombined.WithLabelValues("embedded").Inc()
		b.WriteString(fc.Content)
	}

	doc.Content = b.String()
	doc.Stats = c.chunker.Stats(doc.Content)
	c.metrics.DocumentBytes.Set(float64(doc.Stats.TotalBytes))
	c.metrics.DocumentChunks.Set(float64(doc.Stats.Chunks))
	c.metrics.PassDuration.WithLabelValues("combine").Observe(time.Since(startTime).Seconds())
	return doc
}

// CombineFile loads the structure artifact at structurePath, combines it and
// writes the document to outputPath.
func (c *Combiner) CombineFile(structurePath, outputPath string) (*Document, error) {
	c.logger.Info("Starting combination process", zap.String("structure", structurePath))

	st, err := structure.Load(structurePath)
	if err != nil {
		c.logger.Error("Failed to load structure file", zap.String("structure", structurePath), zap.Error(err))
		return nil, err
	}

	doc := c.Combine(st)
	if err := WriteCombinedFile(outputPath, doc.Content, c.logger); err != nil {
		return nil, err
	}
	doc.Output = outputPath

	c.logger.Info("Successfully combined files",
		zap.String("outputFile", outputPath),
		zap.Int("totalFiles", doc.Files),
		zap.Int("failedFiles", len(doc.Failed)),
		zap.Int("totalBytes", doc.Stats.TotalBytes),
		zap.Int("chunks", doc.Stats.Chunks))
	return doc, nil
}

// kilobytes formats a byte count as KB without trailing zeros.
func kilobytes(n int64) string {
	return strconv.FormatFloat(float64(n)/1024, 'f', -1, 64)
}
