// File: pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"docweave/pkg/chunk"
	"docweave/pkg/structure"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid is returned when a configuration value is unusable.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the options shared by the scan and combine passes.
type Config struct {
	Extensions         []string `mapstructure:"extensions"`           // File suffixes to include (case-insensitive)
	LargeFileThreshold int64    `mapstructure:"large_file_threshold"` // Files above this many bytes are listed, not embedded
	ChunkSize          int      `mapstructure:"chunk_size"`           // Target chunk size for statistics
	ChunkOverlap       int      `mapstructure:"chunk_overlap"`        // Overlap between chunks
	BoundaryWindow     int      `mapstructure:"boundary_window"`      // Search window for chunk boundaries
	IgnoredFiles       []string `mapstructure:"ignored_files"`        // Boilerplate file names excluded from scans
	IgnorePatterns     []string `mapstructure:"ignore_patterns"`      // Extra gitignore-style patterns
	IgnoredSegments    []string `mapstructure:"ignored_segments"`     // Path segments dropped when naming a project
	NameSegments       int      `mapstructure:"name_segments"`        // Number of path segments kept in a project name
	ResultsDir         string   `mapstructure:"results_dir"`          // Where artifacts are written
	IncludeHidden      bool     `mapstructure:"include_hidden"`       // Scan dot files and dot directories
	SkipBinary         bool     `mapstructure:"skip_binary"`          // Drop files whose content looks binary
	StreamReads        bool     `mapstructure:"stream_reads"`         // Read files line by line with a bounded buffer
	Workers            int      `mapstructure:"workers"`              // Files rendered concurrently during combine
	DetectLanguage     bool     `mapstructure:"detect_language"`      // Resolve unmapped extensions through chroma
	Separator          string   `mapstructure:"separator"`            // Separator template written by scan
	TableOfContents    bool     `mapstructure:"table_of_contents"`    // Whether scan asks for a table of contents
	OutputFormat       string   `mapstructure:"output_format"`        // Informational output tag
	MetricsFile        string   `mapstructure:"metrics_file"`         // Optional Prometheus textfile output
	Debug              bool     `mapstructure:"debug"`                // Development logging
}

// DefaultExtensions lists the text formats scanned by default.
var DefaultExtensions = []string{".md", ".txt", ".yaml", ".yml", ".json", ".ts", ".js", ".ipynb", ".mdx"}

// DefaultIgnoredFiles lists repository boilerplate excluded by name.
var DefaultIgnoredFiles = []string{
	"contributing.md",
	"license.md",
	"code_of_conduct.md",
	"changelog.md",
	"security.md",
	"support.md",
	"authors.md",
	".gitignore.md",
}

// DefaultIgnoredSegments lists path segments that carry no project meaning.
var DefaultIgnoredSegments = []string{"Users", "user", "home", "Documents", "github"}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Extensions:         append([]string(nil), DefaultExtensions...),
		LargeFileThreshold: 102400,
		ChunkSize:          chunk.DefaultSize,
		ChunkOverlap:       chunk.DefaultOverlap,
		BoundaryWindow:     chunk.DefaultBoundaryWindow,
		IgnoredFiles:       append([]string(nil), DefaultIgnoredFiles...),
		IgnoredSegments:    append([]string(nil), DefaultIgnoredSegments...),
		NameSegments:       3,
		ResultsDir:         "result",
		Workers:            1,
		Separator:          structure.DefaultSeparator,
		TableOfContents:    true,
		OutputFormat:       structure.DefaultOutputFormat,
	}
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: at least one extension is required", ErrInvalid)
	}
	if c.LargeFileThreshold <= 0 {
		return fmt.Errorf("%w: large_file_threshold must be positive, got %d", ErrInvalid, c.LargeFileThreshold)
	}
	if _, err := chunk.New(c.ChunkSize, c.ChunkOverlap, c.BoundaryWindow); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.NameSegments <= 0 {
		return fmt.Errorf("%w: name_segments must be positive, got %d", ErrInvalid, c.NameSegments)
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		return fmt.Errorf("%w: results_dir must not be empty", ErrInvalid)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	}
	if !strings.Contains(c.Separator, structure.Placeholder) {
		return fmt.Errorf("%w: separator must contain %s", ErrInvalid, structure.Placeholder)
	}
	return nil
}

// Chunker builds the statistics chunker described by the configuration.
func (c *Config) Chunker() (*chunk.Chunker, error) {
	return chunk.New(c.ChunkSize, c.ChunkOverlap, c.BoundaryWindow)
}

// NewStructure returns an empty structure carrying the configured root settings.
func (c *Config) NewStructure() *structure.Structure {
	s := structure.New()
	s.Separator = c.Separator
	s.TableOfContents = c.TableOfContents
	s.OutputFormat = c.OutputFormat
	return s
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// Load builds the configuration from defaults, an optional config file,
// DOCWEAVE_* environment variables and the command's flags, in increasing
// priority.
func Load(cmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("docweave")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config file %s: %v", ErrInvalid, cfgFile, err)
		}
	} else {
		v.SetConfigName("docweave")
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: read config: %v", ErrInvalid, err)
			}
		}
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile returns the config file path given on the command line, if any.
func ConfigFile() string {
	return cfgFile
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("large_file_threshold", d.LargeFileThreshold)
	v.SetDefault("chunk_size", d.ChunkSize)
	v.SetDefault("chunk_overlap", d.ChunkOverlap)
	v.SetDefault("boundary_window", d.BoundaryWindow)
	v.SetDefault("ignored_files", d.IgnoredFiles)
	v.SetDefault("ignore_patterns", []string{})
	v.SetDefault("ignored_segments", d.IgnoredSegments)
	v.SetDefault("name_segments", d.NameSegments)
	v.SetDefault("results_dir", d.ResultsDir)
	v.SetDefault("include_hidden", d.IncludeHidden)
	v.SetDefault("skip_binary", d.SkipBinary)
	v.SetDefault("stream_reads", d.StreamReads)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("detect_language", d.DetectLanguage)
	v.SetDefault("separator", d.Separator)
	v.SetDefault("table_of_contents", d.TableOfContents)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("debug", d.Debug)
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"extensions":      "extensions",
	"threshold":       "large_file_threshold",
	"chunk-size":      "chunk_size",
	"chunk-overlap":   "chunk_overlap",
	"ignore":          "ignore_patterns",
	"results-dir":     "results_dir",
	"include-hidden":  "include_hidden",
	"skip-binary":     "skip_binary",
	"stream":          "stream_reads",
	"workers":         "workers",
	"detect-language": "detect_language",
	"metrics-file":    "metrics_file",
	"debug":           "debug",
}

// bindFlags binds the CLI flags that exist on cmd to configuration values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := lookupFlag(cmd, name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("%w: bind flag --%s: %v", ErrInvalid, name, err)
		}
	}
	if flag := lookupFlag(cmd, "no-toc"); flag != nil && flag.Changed {
		v.Set("table_of_contents", false)
	}
	return nil
}

// lookupFlag finds a local or inherited flag.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.InheritedFlags().Lookup(name)
}

// InitFlags registers the persistent flags on the root command.
func InitFlags(rootCmd *cobra.Command) {
	d := DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Path to a docweave config file (YAML or JSON)")
	pf.String("results-dir", d.ResultsDir, "Directory where structure and combined files are written")
	pf.Int64("threshold", d.LargeFileThreshold, "Files larger than this many bytes are listed but not embedded")
	pf.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	pf.Bool("debug", false, "Enable development logging")
}

// InitScanFlags registers the flags used by commands that scan a directory.
func InitScanFlags(cmd *cobra.Command) {
	d := DefaultConfig()
	f := cmd.Flags()
	f.StringSlice("extensions", d.Extensions, "File extensions to include")
	f.StringSlice("ignore", nil, "Additional gitignore-style patterns to skip")
	f.Bool("include-hidden", false, "Include dot files and dot directories")
	f.Bool("skip-binary", false, "Skip matched files whose content looks binary")
	f.Bool("no-toc", false, "Do not request a table of contents in the combined document")
}

// InitCombineFlags registers the flags used by commands that combine files.
func InitCombineFlags(cmd *cobra.Command) {
	d := DefaultConfig()
	f := cmd.Flags()
	f.Int("chunk-size", d.ChunkSize, "Chunk size used for statistics")
	f.Int("chunk-overlap", d.ChunkOverlap, "Chunk overlap used for statistics")
	f.Bool("stream", false, "Read files line by line instead of loading them whole")
	f.Int("workers", d.Workers, "Number of files rendered concurrently")
	f.Bool("detect-language", false, "Detect code fence languages for unmapped extensions")
}
