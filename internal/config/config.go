// Package config holds the tunables of the text storage core.
//
// A Config starts from Default, is overlaid with a TOML or YAML file and
// then with TEXTCORE_ environment variables, and is validated before use:
//
//	cfg, err := config.Load("textcore.toml")
//	if err != nil {
//	    return err
//	}
//	e, err := engine.Open(path, cfg.EngineOptions()...)
package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textcore/internal/config/loader"
	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/engine/storage"
	"github.com/dshills/textcore/internal/logging"
)

// Delete policy names accepted in configuration.
const (
	DeletePolicyClamp  = "clamp"
	DeletePolicyRemove = "remove"
)

// Config is the complete textcore configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Buffer  BufferConfig  `toml:"buffer" yaml:"buffer"`
	Search  SearchConfig  `toml:"search" yaml:"search"`
	Markers MarkersConfig `toml:"markers" yaml:"markers"`
	History HistoryConfig `toml:"history" yaml:"history"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"`
	Format     string `toml:"format" yaml:"format"`
	Timestamps bool   `toml:"timestamps" yaml:"timestamps"`
}

// Options converts the settings to logger options.
func (l LoggingConfig) Options() logging.Options {
	return logging.Options{Level: l.Level, Format: l.Format, Timestamps: l.Timestamps}
}

// BufferConfig configures lazy loading and position estimation.
type BufferConfig struct {
	LargeFileThreshold int64 `toml:"large_file_threshold" yaml:"large_file_threshold"`
	LoadChunkSize      int64 `toml:"load_chunk_size" yaml:"load_chunk_size"`
	ChunkAlignment     int64 `toml:"chunk_alignment" yaml:"chunk_alignment"`
	AnchorScanLines    int64 `toml:"anchor_scan_lines" yaml:"anchor_scan_lines"`
	AnchorScanBytes    int64 `toml:"anchor_scan_bytes" yaml:"anchor_scan_bytes"`
	AverageLineLength  int64 `toml:"average_line_length" yaml:"average_line_length"`
	MaxAnchors         int   `toml:"max_anchors" yaml:"max_anchors"`
	LoadConcurrency    int   `toml:"load_concurrency" yaml:"load_concurrency"`
	AddCapacity        int64 `toml:"add_capacity" yaml:"add_capacity"`
	Watch              bool  `toml:"watch" yaml:"watch"`
}

// SearchConfig overrides search window geometry. ChunkSize 0 and
// Overlap -1 keep the per-pattern defaults.
type SearchConfig struct {
	ChunkSize int `toml:"chunk_size" yaml:"chunk_size"`
	Overlap   int `toml:"overlap" yaml:"overlap"`
}

// MarkersConfig configures the marker index.
type MarkersConfig struct {
	DeletePolicy string `toml:"delete_policy" yaml:"delete_policy"`
}

// HistoryConfig configures undo history.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Buffer: BufferConfig{
			LargeFileThreshold: buffer.DefaultLargeFileThreshold,
			LoadChunkSize:      buffer.DefaultLoadChunkSize,
			ChunkAlignment:     buffer.DefaultChunkAlignment,
			AnchorScanLines:    buffer.DefaultAnchorScanLines,
			AnchorScanBytes:    buffer.DefaultAnchorScanBytes,
			AverageLineLength:  buffer.DefaultAverageLineLength,
			MaxAnchors:         buffer.DefaultMaxAnchors,
			LoadConcurrency:    buffer.DefaultLoadConcurrency,
			AddCapacity:        storage.DefaultAddCapacity,
		},
		Search:  SearchConfig{Overlap: -1},
		Markers: MarkersConfig{DeletePolicy: DeletePolicyClamp},
		History: HistoryConfig{MaxEntries: engine.DefaultMaxUndoEntries},
	}
}

// Load builds a configuration from the defaults, the file at path (skipped
// when path is empty or the file does not exist) and TEXTCORE_ environment
// variables, in that order, and validates the result.
func Load(path string) (*Config, error) {
	var sources []loader.Source
	if path != "" {
		sources = append(sources, loader.NewFileLoader(path))
	}
	sources = append(sources, loader.NewEnvLoader(loader.DefaultEnvPrefix))

	settings, err := loader.LoadAll(sources...)
	if err != nil {
		return nil, err
	}
	cfg, err := FromMaps(settings)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMaps overlays the given setting maps onto Default. Later maps win.
// The result is not validated.
func FromMaps(layers ...map[string]any) (*Config, error) {
	merged := make(map[string]any)
	for _, m := range layers {
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if len(merged) == 0 {
		return cfg, nil
	}
	// Round-trip through TOML so map values decode with the struct tags.
	data, err := toml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return cfg, nil
}

// Logger returns a logger on standard error with the logging settings.
func (c *Config) Logger() *log.Logger {
	return logging.New(os.Stderr, c.Logging.Options())
}

// BufferOptions converts the buffer settings to buffer options.
func (c *Config) BufferOptions() []buffer.Option {
	b := c.Buffer
	return []buffer.Option{
		buffer.WithLargeFileThreshold(b.LargeFileThreshold),
		buffer.WithLoadChunk(b.LoadChunkSize, b.ChunkAlignment),
		buffer.WithAnchorScan(b.AnchorScanLines, b.AnchorScanBytes),
		buffer.WithAverageLineLength(b.AverageLineLength),
		buffer.WithMaxAnchors(b.MaxAnchors),
		buffer.WithLoadConcurrency(b.LoadConcurrency),
		buffer.WithAddCapacity(b.AddCapacity),
		buffer.WithWatch(b.Watch),
	}
}

// SearchOptions converts the search settings to search options.
func (c *Config) SearchOptions() []search.Option {
	var opts []search.Option
	if c.Search.ChunkSize > 0 {
		opts = append(opts, search.WithChunkSize(c.Search.ChunkSize))
	}
	if c.Search.Overlap >= 0 {
		opts = append(opts, search.WithOverlap(c.Search.Overlap))
	}
	return opts
}

// DeletePolicy returns the marker deletion policy.
func (c *Config) DeletePolicy() marker.DeletePolicy {
	if c.Markers.DeletePolicy == DeletePolicyRemove {
		return marker.DeleteRemove
	}
	return marker.DeleteClamp
}

// EngineOptions converts the whole configuration to engine options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLogger(c.Logger()),
		engine.WithBufferOptions(c.BufferOptions()...),
		engine.WithSearchOptions(c.SearchOptions()...),
		engine.WithDeletePolicy(c.DeletePolicy()),
		engine.WithMaxUndoEntries(c.History.MaxEntries),
	}
}
