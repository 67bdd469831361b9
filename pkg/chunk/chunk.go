// Package chunk splits text into overlapping, boundary-snapped windows.
package chunk

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Default chunking parameters, measured in bytes.
const (
	DefaultSize           = 1000
	DefaultOverlap        = 200
	DefaultBoundaryWindow = 50
)

// ErrInvalidParams is returned when the chunker parameters cannot guarantee progress.
var ErrInvalidParams = errors.New("invalid chunk parameters")

// Chunker holds the window configuration.
type Chunker struct {
	Size           int // Target chunk size
	Overlap        int // Bytes shared between consecutive chunks
	BoundaryWindow int // How far past the naive end to look for a newline or period
}

// Stats summarizes a chunked document.
type Stats struct {
	TotalBytes       int
	Chunks           int
	AverageChunkSize int
}

// New returns a Chunker after validating its parameters.
func New(size, overlap, window int) (*Chunker, error) {
	c := &Chunker{Size: size, Overlap: overlap, BoundaryWindow: window}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a Chunker with the default 1000/200/50 parameters.
func Default() *Chunker {
	return &Chunker{Size: DefaultSize, Overlap: DefaultOverlap, BoundaryWindow: DefaultBoundaryWindow}
}

// Validate checks that overlap < size so every iteration moves forward.
func (c *Chunker) Validate() error {
	switch {
	case c.Size <= 0:
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidParams, c.Size)
	case c.Overlap < 0:
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidParams, c.Overlap)
	case c.Overlap >= c.Size:
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidParams, c.Overlap, c.Size)
	case c.BoundaryWindow < 0:
		return fmt.Errorf("%w: boundary window must not be negative, got %d", ErrInvalidParams, c.BoundaryWindow)
	}
	return nil
}

// Chunks yields the chunks of text lazily. The sequence can be ranged over
// any number of times.
func (c *Chunker) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for start < len(text) {
			end := c.boundary(text, start)
			if !yield(text[start:end]) {
				return
			}
			if end >= len(text) {
				return
			}
			start = end - c.Overlap
		}
	}
}

// boundary picks the end offset of the chunk beginning at start.
func (c *Chunker) boundary(text string, start int) int {
	end := min(start+c.Size, len(text))
	if end >= len(text) {
		return end
	}

	window := text[end:min(end+c.BoundaryWindow, len(text))]
	if i := strings.IndexByte(window, '\n'); i >= 0 {
		return end + i + 1
	}
	if i := strings.IndexByte(window, '.'); i >= 0 {
		return end + i + 1
	}
	return end
}

// Split collects all chunks of text into a slice.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	for chunk := range c.Chunks(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Count returns the number of chunks text would produce.
func (c *Chunker) Count(text string) int {
	n := 0
	for range c.Chunks(text) {
		n++
	}
	return n
}

// Stats computes the size and chunk statistics for text.
func (c *Chunker) Stats(text string) Stats {
	s := Stats{TotalBytes: len(text), Chunks: c.Count(text)}
	if s.Chunks > 0 {
		s.AverageChunkSize = s.TotalBytes / s.Chunks
	}
	return s
}

// Join reverses Split: it drops the overlap from every chunk after the first.
func (c *Chunker) Join(chunks []string) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			chunk = chunk[c.Overlap:]
		}
		b.WriteString(chunk)
	}
	return b.String()
}
