package structure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStructure(t *testing.T) *Structure {
	t.Helper()
	s := New()
	require.NoError(t, s.Root.Insert([]string{"b.md"}, "/docs/b.md"))
	require.NoError(t, s.Root.Insert([]string{"a.md"}, "/docs/a.md"))
	require.NoError(t, s.Root.Insert([]string{"guide", "intro.md"}, "/docs/guide/intro.md"))
	require.NoError(t, s.Root.Insert([]string{"guide", "deep", "x.json"}, "/docs/guide/deep/x.json"))
	require.NoError(t, s.Root.Insert([]string{"api", "ref.yaml"}, "/docs/api/ref.yaml"))
	s.Oversized = []string{"big/huge.txt"}
	return s
}

func TestInsert_BuildsNestedFolders(t *testing.T) {
	s := sampleStructure(t)

	assert.Equal(t, []string{"a.md", "b.md"}, s.Root.Files())
	assert.Equal(t, []string{"api", "guide"}, s.Root.Folders())
	assert.Equal(t, 5, s.Root.Count())

	file, ok := s.Root.Lookup("guide/deep/x.json")
	require.True(t, ok)
	assert.Equal(t, "/docs/guide/deep/x.json", file.Path)

	_, ok = s.Root.Lookup("guide/missing.md")
	assert.False(t, ok)
}

func TestInsert_RejectsReservedAndConflictingNames(t *testing.T) {
	root := NewFolder()
	for key := range reservedKeys {
		err := root.Insert([]string{key}, "/x/"+key)
		assert.ErrorIs(t, err, ErrReservedName)
	}

	require.NoError(t, root.Insert([]string{"dir", "f.md"}, "/x/dir/f.md"))
	assert.ErrorIs(t, root.Insert([]string{"dir"}, "/x/dir"), ErrNameConflict)

	require.NoError(t, root.Insert([]string{"file.md"}, "/x/file.md"))
	assert.ErrorIs(t, root.Insert([]string{"file.md", "inner.md"}, "/x/file.md/inner.md"), ErrNameConflict)

	assert.Error(t, root.Insert(nil, "/x"))
}

func TestWalk_OrdersFilesBeforeFoldersDepthFirst(t *testing.T) {
	s := sampleStructure(t)

	var paths []string
	for _, e := range s.Root.Entries() {
		paths = append(paths, e.DisplayPath)
	}
	assert.Equal(t, []string{
		"a.md",
		"b.md",
		"api/ref.yaml",
		"guide/intro.md",
		"guide/deep/x.json",
	}, paths)

	visited := 0
	s.Root.Walk(func(Entry) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestMarshal_IsDeterministicAndOrdered(t *testing.T) {
	s := sampleStructure(t)

	first, err := s.Marshal()
	require.NoError(t, err)
	second, err := s.Marshal()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	want := `{
  "separator": "------------------- {fileName} -------------------",
  "generateTableOfContent": true,
  "outputFormat": "markdown",
  "largeTextContentFiles": [
    "big/huge.txt"
  ],
  "a.md": "/docs/a.md",
  "b.md": "/docs/b.md",
  "folders": {
    "api": {
      "ref.yaml": "/docs/api/ref.yaml"
    },
    "guide": {
      "intro.md": "/docs/guide/intro.md",
      "folders": {
        "deep": {
          "x.json": "/docs/guide/deep/x.json"
        }
      }
    }
  }
}
`
	assert.Equal(t, want, string(first))
}

func TestMarshal_OmitsEmptyOptionalKeys(t *testing.T) {
	data, err := New().Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), KeyLargeFiles)
	assert.NotContains(t, string(data), KeyFolders)
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	s := sampleStructure(t)
	data, err := s.Marshal()
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s.Separator, loaded.Separator)
	assert.Equal(t, s.TableOfContents, loaded.TableOfContents)
	assert.Equal(t, s.OutputFormat, loaded.OutputFormat)
	assert.Equal(t, s.Oversized, loaded.Oversized)
	assert.Equal(t, s.Root.Entries(), loaded.Root.Entries())

	again, err := loaded.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestUnmarshal_AcceptsOriginalArtifactShape(t *testing.T) {
	data := []byte(`{
  "separator": "== {fileName} ==",
  "generateTableOfContent": false,
  "outputFormat": "markdown",
  "_comment": "ignored",
  "readme.md": "/repo/readme.md",
  "folders": {
    "docs": {
      "folders": {},
      "setup.md": "/repo/docs/setup.md"
    }
  }
}`)
	s, err := Unmarshal(data)
	require.NoError(t, err)
	assert.False(t, s.TableOfContents)
	assert.Equal(t, "== docs/setup.md ==", s.SeparatorFor("docs/setup.md"))
	assert.Equal(t, []string{"readme.md"}, s.Root.Files())
	_, ok := s.Root.Lookup("docs/setup.md")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Root.Count())
}

func TestUnmarshal_KeepsUnderscoreFiles(t *testing.T) {
	root := t.TempDir()
	s := New()
	require.NoError(t, s.Root.Insert([]string{"_sidebar.md"}, filepath.Join(root, "_sidebar.md")))
	require.NoError(t, s.Root.Insert([]string{"docs", "_config.yml"}, filepath.Join(root, "docs", "_config.yml")))
	require.NoError(t, s.Root.Insert([]string{"docs", "index.md"}, filepath.Join(root, "docs", "index.md")))

	data, err := s.Marshal()
	require.NoError(t, err)
	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, 3, loaded.Root.Count())
	file, ok := loaded.Root.Lookup("docs/_config.yml")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "docs", "_config.yml"), file.Path)
	assert.Equal(t, []string{"_sidebar.md"}, loaded.Root.Files())
}

func TestUnmarshal_SkipsUnderscoreAnnotations(t *testing.T) {
	data := []byte(`{
  "_comment": "ignored",
  "_relative": "not/absolute.md",
  "_meta": {"generator": "docweave"},
  "_count": 3
}`)
	s, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, s.Root.Empty())
}

func TestUnmarshal_RejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"separator": `,
		"file not a string": `{"a.md": 42}`,
		"folders not map":   `{"folders": "oops"}`,
		"bad toc flag":      `{"generateTableOfContent": "yes"}`,
		"name conflict":     `{"x": "/r/x", "folders": {"x": {"y.md": "/r/x/y.md"}}}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal([]byte(input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestSeparatorFor_FallsBackWhenEmpty(t *testing.T) {
	s := &Structure{Root: NewFolder()}
	assert.Equal(t, FallbackSeparator, s.SeparatorFor("a.md"))
}

func TestSaveAndLoad(t *testing.T) {
	s := sampleStructure(t)
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Root.Entries(), loaded.Root.Entries())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
