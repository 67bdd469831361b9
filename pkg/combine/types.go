package combine

import (
	"docweave/pkg/chunk"
)

// FileContent holds the rendered block of one file.
type FileContent struct {
	DisplayPath string // Relative path with '/' separators
	Content     string // Separator, metadata and formatted content, or "" on failure
	Err         error  // Read failure, if any
}

// Document is the combined output of one run.
type Document struct {
	Content string
	Stats   chunk.Stats
	Files   int      // Files whose content was embedded
	Failed  []string // Display paths that could not be read
	Skipped []string // Oversized files listed in the document
	Output  string   // Path the document was written to, if any
}

// metadata is the per-file header block.
type metadata struct {
	Source   string
	Path     string
	Type     string
	Modified string
	Size     int64
	Checksum uint64
}
