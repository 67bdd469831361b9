package combine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"docweave/pkg/structure"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// readBufferSize bounds the buffer used when streaming a file.
const readBufferSize = 32 * 1024

// readResult is the raw content of a file plus what the metadata block needs.
type readResult struct {
	content  string
	modified time.Time
	size     int64
	checksum uint64
}

// readFile loads a whole file into memory.
func readFile(path string) (readResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return readResult{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return readResult{}, err
	}
	return readResult{
		content:  string(data),
		modified: info.ModTime(),
		size:     int64(len(data)),
		checksum: xxh3.Hash(data),
	}, nil
}

// streamFile reads a file line by line through a bounded read buffer. Lines
// keep their terminators, so the content is byte-identical to readFile.
func streamFile(path string) (readResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return readResult{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return readResult{}, err
	}

	hasher := xxh3.New()
	reader := bufio.NewReaderSize(file, readBufferSize)

	var (
		b    strings.Builder
		size int64
	)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			b.WriteString(line)
			_, _ = hasher.WriteString(line)
			size += int64(len(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return readResult{}, err
		}
	}

	return readResult{
		content:  b.String(),
		modified: info.ModTime(),
		size:     size,
		checksum: hasher.Sum64(),
	}, nil
}

// ProcessSingleFile renders the block for one file: separator, metadata and
// formatted content. A read failure is returned in FileContent.Err with empty
// Content.
func (c *Combiner) ProcessSingleFile(st *structure.Structure, entry structure.Entry) FileContent {
	c.logger.Debug("Processing file", zap.String("file", entry.DisplayPath), zap.String("path", entry.Path))

	var (
		res readResult
		err error
	)
	if c.cfg.StreamReads {
		res, err = streamFile(entry.Path)
	} else {
		res, err = readFile(entry.Path)
	}
	if err != nil {
		return FileContent{DisplayPath: entry.DisplayPath, Err: fmt.Errorf("read %s: %w", entry.Path, err)}
	}

	language := Language(entry.Name, c.cfg.DetectLanguage)
	meta := metadata{
		Source:   entry.DisplayPath,
		Path:     entry.Path,
		Type:     language,
		Modified: res.modified.UTC().Format(time.RFC3339),
		Size:     res.size,
		Checksum: res.checksum,
	}

	var b strings.Builder
	b.WriteString(st.SeparatorFor(entry.DisplayPath))
	b.WriteString("\n\n")
	writeMetadata(&b, meta)
	b.WriteString(formatContent(entry.Name, language, Normalize(res.content)))
	b.WriteString("\n\n")

	c.logger.Debug("Rendered file", zap.String("file", entry.DisplayPath), zap.Int64("sizeBytes", res.size))
	return FileContent{DisplayPath: entry.DisplayPath, Content: b.String()}
}

func writeMetadata(b *strings.Builder, m metadata) {
	b.WriteString("---\n")
	fmt.Fprintf(b, "source: %s\n", m.Source)
	fmt.Fprintf(b, "path: %s\n", m.Path)
	fmt.Fprintf(b, "type: %s\n", m.Type)
	fmt.Fprintf(b, "modified: %s\n", m.Modified)
	fmt.Fprintf(b, "size: %d\n", m.Size)
	fmt.Fprintf(b, "checksum: xxh3:%016x\n", m.Checksum)
	b.WriteString("---\n")
}
