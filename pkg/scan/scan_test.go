package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docweave/pkg/config"
	"docweave/pkg/ignore"
	"docweave/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "a.md", "Hello")
	writeFile(t, root, "sub/b.json", `{"x":1}`)
	writeFile(t, root, "sub/deep/c.txt", "deep text")
	writeFile(t, root, "NOTES.MD", "upper case extension")
	writeFile(t, root, "LICENSE.md", "license text")
	writeFile(t, root, "docs/Contributing.md", "how to contribute")
	writeFile(t, root, "big.md", strings.Repeat("x", 300))
	writeFile(t, root, "image.png", "not text")
	writeFile(t, root, ".hidden/secret.md", "hidden")
	writeFile(t, root, ".dotfile.md", "hidden file")
	return root
}

func smallThreshold() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LargeFileThreshold = 100
	return cfg
}

func TestScan_BuildsTree(t *testing.T) {
	root := fixture(t)

	res, err := New(smallThreshold(), zap.NewNop()).Scan(root)
	require.NoError(t, err)

	st := res.Structure
	assert.Equal(t, []string{"NOTES.MD", "a.md"}, st.Root.Files())
	assert.Equal(t, []string{"sub"}, st.Root.Folders())
	assert.Equal(t, []string{"big.md"}, st.Oversized)

	file, ok := st.Root.Lookup("sub/deep/c.txt")
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(file.Path))
	assert.Equal(t, filepath.Join(res.Root, "sub", "deep", "c.txt"), file.Path)

	_, ok = st.Root.Lookup("LICENSE.md")
	assert.False(t, ok, "ignored boilerplate must not be scanned")
	_, ok = st.Root.Lookup("big.md")
	assert.False(t, ok, "oversized files stay out of the tree body")

	assert.Equal(t, Report{Matched: 7, Embedded: 4, Oversized: 1, Ignored: 2, Hidden: 1}, res.Report)
}

func TestScan_EveryMatchedFileAppearsExactlyOnce(t *testing.T) {
	root := fixture(t)
	res, err := New(smallThreshold(), zap.NewNop()).Scan(root)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, e := range res.Structure.Root.Entries() {
		seen[e.DisplayPath]++
	}
	for _, rel := range res.Structure.Oversized {
		seen[rel]++
	}
	for _, rel := range []string{"a.md", "NOTES.MD", "sub/b.json", "sub/deep/c.txt", "big.md"} {
		assert.Equal(t, 1, seen[rel], rel)
	}
	assert.Len(t, seen, 5)
}

func TestScan_IsDeterministic(t *testing.T) {
	root := fixture(t)
	scanner := New(smallThreshold(), zap.NewNop())

	first, err := scanner.Scan(root)
	require.NoError(t, err)
	second, err := scanner.Scan(root)
	require.NoError(t, err)

	a, err := first.Structure.Marshal()
	require.NoError(t, err)
	b, err := second.Structure.Marshal()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScan_WarnsAboutOversizedFiles(t *testing.T) {
	root := fixture(t)
	core, logs := observer.New(zap.WarnLevel)
	m := metrics.New()

	_, err := New(smallThreshold(), zap.New(core), WithMetrics(m)).Scan(root)
	require.NoError(t, err)

	warnings := logs.FilterMessage("File exceeds size limit, listing without content").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "big.md", warnings[0].ContextMap()["file"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesScanned.WithLabelValues(metrics.OutcomeOversized)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FilesScanned.WithLabelValues(metrics.OutcomeEmbedded)))
}

func TestScan_IncludeHidden(t *testing.T) {
	root := fixture(t)
	cfg := smallThreshold()
	cfg.IncludeHidden = true

	res, err := New(cfg, zap.NewNop()).Scan(root)
	require.NoError(t, err)
	_, ok := res.Structure.Root.Lookup(".hidden/secret.md")
	assert.True(t, ok)
	_, ok = res.Structure.Root.Lookup(".dotfile.md")
	assert.True(t, ok)
}

func TestScan_IgnorePatternsAndExcludedDirs(t *testing.T) {
	root := fixture(t)
	writeFile(t, root, ignore.FileName, "sub/deep/\n")
	writeFile(t, root, "result/old.json", `{}`)

	cfg := smallThreshold()
	cfg.IgnorePatterns = []string{"NOTES.MD"}

	res, err := New(cfg, zap.NewNop(), WithExcludedDirs(filepath.Join(root, "result"))).Scan(root)
	require.NoError(t, err)

	var paths []string
	for _, e := range res.Structure.Root.Entries() {
		paths = append(paths, e.DisplayPath)
	}
	assert.Equal(t, []string{"a.md", "sub/b.json"}, paths)
}

func TestScan_WithMatcherOverridesRootIgnoreFile(t *testing.T) {
	root := fixture(t)
	writeFile(t, root, ignore.FileName, "*.md\n")

	res, err := New(smallThreshold(), zap.NewNop(), WithMatcher(ignore.New(nil, nil))).Scan(root)
	require.NoError(t, err)
	_, ok := res.Structure.Root.Lookup("LICENSE.md")
	assert.True(t, ok)
}

func TestScan_SkipBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "text.txt", "plain")
	writeFile(t, root, "blob.txt", "ab\x00cd")

	cfg := config.DefaultConfig()
	res, err := New(cfg, zap.NewNop()).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Structure.Root.Count())

	cfg.SkipBinary = true
	res, err = New(cfg, zap.NewNop()).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"text.txt"}, res.Structure.Root.Files())
	assert.Equal(t, 1, res.Report.Binary)
}

func TestScan_ExtensionsWithoutDot(t *testing.T) {
	root := fixture(t)
	cfg := smallThreshold()
	cfg.Extensions = []string{"json", " TXT "}

	res, err := New(cfg, zap.NewNop()).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Structure.Root.Count())
	assert.Empty(t, res.Structure.Oversized)
}

func TestScan_InvalidRoot(t *testing.T) {
	_, err := New(nil, nil).Scan(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrInvalidRoot)

	file := writeFile(t, t.TempDir(), "file.md", "x")
	_, err = New(nil, nil).Scan(file)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestScan_CarriesConfiguredRootSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Separator = "=== {fileName} ==="
	cfg.TableOfContents = false

	res, err := New(cfg, nil).Scan(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "=== {fileName} ===", res.Structure.Separator)
	assert.False(t, res.Structure.TableOfContents)
	assert.True(t, res.Structure.Root.Empty())
}

func TestLooksBinary(t *testing.T) {
	assert.False(t, looksBinary(nil))
	assert.False(t, looksBinary([]byte("hello\nworld\t")))
	assert.False(t, looksBinary([]byte("héllo wörld")))
	assert.True(t, looksBinary([]byte{'a', 0, 'b'}))
	assert.True(t, looksBinary([]byte{1, 2, 3, 4, 'a'}))
}

func TestScan_ReportsHiddenEntries(t *testing.T) {
	root := fixture(t)
	core, logs := observer.New(zap.DebugLevel)
	m := metrics.New()

	res, err := New(smallThreshold(), zap.New(core), WithMetrics(m)).Scan(root)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Report.Hidden)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesScanned.WithLabelValues(metrics.OutcomeHidden)))

	files := logs.FilterMessage("Skipping hidden file").All()
	require.Len(t, files, 1)
	assert.Equal(t, ".dotfile.md", files[0].ContextMap()["file"])

	dirs := logs.FilterMessage("Skipping hidden directory").All()
	require.Len(t, dirs, 1)
	assert.Equal(t, ".hidden", dirs[0].ContextMap()["directory"])
}
