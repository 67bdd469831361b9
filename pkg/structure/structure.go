package structure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults written into a freshly scanned structure.
const (
	DefaultSeparator    = "------------------- {fileName} -------------------"
	DefaultOutputFormat = "markdown"
	// FallbackSeparator is used when a loaded artifact carries no separator.
	FallbackSeparator = "-------------------"
	// Placeholder is replaced by the display path of each file.
	Placeholder = "{fileName}"
)

// ErrMalformed is returned when a structure artifact cannot be decoded.
var ErrMalformed = errors.New("malformed structure artifact")

// Structure is the root of a scanned tree together with its settings.
type Structure struct {
	Root            *Folder
	Separator       string
	TableOfContents bool
	OutputFormat    string
	Oversized       []string // Relative paths of files above the size threshold
}

// New returns an empty structure with the default root settings.
func New() *Structure {
	return &Structure{
		Root:            NewFolder(),
		Separator:       DefaultSeparator,
		TableOfContents: true,
		OutputFormat:    DefaultOutputFormat,
	}
}

// SeparatorFor renders the separator line for a file.
func (s *Structure) SeparatorFor(displayPath string) string {
	sep := s.Separator
	if sep == "" {
		sep = FallbackSeparator
	}
	return strings.Replace(sep, Placeholder, displayPath, 1)
}

// MarshalJSON writes the artifact with a stable key order: root settings,
// files sorted by name, then folders sorted by name.
func (s *Structure) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := &objectWriter{buf: &buf}
	w.open()
	if err := w.field(KeySeparator, s.Separator); err != nil {
		return nil, err
	}
	if err := w.field(KeyTableOfContents, s.TableOfContents); err != nil {
		return nil, err
	}
	if err := w.field(KeyOutputFormat, s.OutputFormat); err != nil {
		return nil, err
	}
	if len(s.Oversized) > 0 {
		if err := w.field(KeyLargeFiles, s.Oversized); err != nil {
			return nil, err
		}
	}
	root := s.Root
	if root == nil {
		root = NewFolder()
	}
	if err := root.writeBody(w); err != nil {
		return nil, err
	}
	w.close()
	return buf.Bytes(), nil
}

// Marshal returns the indented, deterministic JSON form of s.
func (s *Structure) Marshal() ([]byte, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent structure: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeBody emits the file keys and the folders object of f into an open object.
func (f *Folder) writeBody(w *objectWriter) error {
	for _, name := range f.Files() {
		file, _ := f.File(name)
		if err := w.field(name, file.Path); err != nil {
			return err
		}
	}
	folders := f.Folders()
	if len(folders) == 0 {
		return nil
	}
	w.key(KeyFolders)
	w.open()
	for _, name := range folders {
		child, _ := f.Folder(name)
		w.key(name)
		w.open()
		if err := child.writeBody(w); err != nil {
			return err
		}
		w.close()
	}
	w.close()
	return nil
}

// objectWriter emits nested JSON objects whose keys keep insertion order.
type objectWriter struct {
	buf   *bytes.Buffer
	first []bool
}

func (w *objectWriter) open() {
	w.buf.WriteByte('{')
	w.first = append(w.first, true)
}

func (w *objectWriter) close() {
	w.buf.WriteByte('}')
	w.first = w.first[:len(w.first)-1]
}

func (w *objectWriter) key(k string) {
	top := len(w.first) - 1
	if !w.first[top] {
		w.buf.WriteByte(',')
	}
	w.first[top] = false
	encoded, _ := json.Marshal(k)
	w.buf.Write(encoded)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(k string, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", k, err)
	}
	w.key(k)
	w.buf.Write(encoded)
	return nil
}

// UnmarshalJSON rebuilds the structure from its artifact form.
func (s *Structure) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	decoded := Structure{Root: NewFolder()}
	if v, ok := raw[KeySeparator]; ok {
		if err := json.Unmarshal(v, &decoded.Separator); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, KeySeparator, err)
		}
	}
	if v, ok := raw[KeyTableOfContents]; ok {
		if err := json.Unmarshal(v, &decoded.TableOfContents); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, KeyTableOfContents, err)
		}
	}
	if v, ok := raw[KeyOutputFormat]; ok {
		if err := json.Unmarshal(v, &decoded.OutputFormat); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, KeyOutputFormat, err)
		}
	}
	if v, ok := raw[KeyLargeFiles]; ok {
		if err := json.Unmarshal(v, &decoded.Oversized); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, KeyLargeFiles, err)
		}
	}
	if err := decodeFolder(raw, decoded.Root, ""); err != nil {
		return err
	}

	*s = decoded
	return nil
}

// decodeFolder fills folder from one object level of the artifact.
func decodeFolder(raw map[string]json.RawMessage, folder *Folder, at string) error {
	for key, value := range raw {
		if IsReserved(key) && key != KeyFolders {
			continue
		}
		if strings.HasPrefix(key, "_") && !isRecordedPath(value) {
			continue
		}
		if key == KeyFolders {
			var children map[string]map[string]json.RawMessage
			if err := json.Unmarshal(value, &children); err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrMalformed, at, KeyFolders, err)
			}
			for name, childRaw := range children {
				child, err := folder.ensureFolder(name)
				if err != nil {
					return fmt.Errorf("%w: %s%s: %v", ErrMalformed, at, name, err)
				}
				if err := decodeFolder(childRaw, child, at+name+"/"); err != nil {
					return err
				}
			}
			continue
		}

		var absPath string
		if err := json.Unmarshal(value, &absPath); err != nil {
			return fmt.Errorf("%w: %s%s: expected a file path string", ErrMalformed, at, key)
		}
		if _, isFolder := folder.Folder(key); isFolder {
			return fmt.Errorf("%w: %s%s: %v", ErrMalformed, at, key, ErrNameConflict)
		}
		folder.children[key] = &File{Path: absPath}
	}
	return nil
}

// Unmarshal decodes an artifact.
func Unmarshal(data []byte) (*Structure, error) {
	s := &Structure{}
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and decodes the artifact at path.
func Load(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structure file %s: %w", path, err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode structure file %s: %w", path, err)
	}
	return s, nil
}

// Save writes the artifact to path.
func (s *Structure) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write structure file %s: %w", path, err)
	}
	return nil
}

// isRecordedPath reports whether value is a string holding an absolute path.
// Underscore keys are annotations unless they carry one, since the scanner
// records every file by absolute path.
func isRecordedPath(value json.RawMessage) bool {
	var path string
	if err := json.Unmarshal(value, &path); err != nil {
		return false
	}
	return filepath.IsAbs(path)
}
