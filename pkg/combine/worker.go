// File: pkg/combine/worker.go
package combine

import (
	"docweave/pkg/structure"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProcessFiles renders every entry with at most workers files in flight.
// Results keep the order of entries whatever the worker count.
func (c *Combiner) ProcessFiles(st *structure.Structure, entries []structure.Entry, workers int) []FileContent {
	results := make([]FileContent, len(entries))
	if workers <= 1 {
		for i, entry := range entries {
			results[i] = c.ProcessSingleFile(st, entry)
		}
		return results
	}

	c.logger.Debug("Initializing worker pool", zap.Int("workers", workers), zap.Int("files", len(entries)))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, entry := range entries {
		g.Go(func() error {
			results[i] = c.ProcessSingleFile(st, entry)
			return nil
		})
	}
	_ = g.Wait()
	c.logger.Debug("All files processed", zap.Int("processedFiles", len(results)))
	return results
}
