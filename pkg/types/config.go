// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ValidationMode selects how strictly the PDF library validates input files.
type ValidationMode string

const (
	ValidationRelaxed ValidationMode = "relaxed"
	ValidationStrict  ValidationMode = "strict"
)

// PDFConfig holds settings shared by the metadata reader and the merger.
type PDFConfig struct {
	// Validation selects relaxed (default) or strict validation.
	Validation ValidationMode `json:"validation" yaml:"validation"`

	// SecretsDir holds pdf-password files for encrypted documents.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// MergeConfig holds settings for the merge operation.
type MergeConfig struct {
	// OutputDir is the default directory for merged output. Empty means
	// ~/Desktop when it exists, otherwise the home directory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Overwrite allows replacing an existing output file. When false a
	// timestamped sibling name is chosen instead.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// DividerPage inserts a blank page between merged documents.
	DividerPage bool `json:"divider_page" yaml:"divider_page"`
}

// UIConfig holds settings for the browser UI shell.
type UIConfig struct {
	// Addr is the listen address (default 127.0.0.1:8765).
	Addr string `json:"addr" yaml:"addr"`

	// OpenBrowser launches the system browser on start.
	OpenBrowser bool `json:"open_browser" yaml:"open_browser"`

	// StartDir is the directory the file picker opens in (default: home).
	StartDir string `json:"start_dir" yaml:"start_dir"`
}

// HistoryConfig holds settings for the merge history store.
type HistoryConfig struct {
	// Enabled turns merge history recording on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir contains history.db and exports.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default number of entries listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// CacheConfig holds settings for the page-count cache.
type CacheConfig struct {
	// Path is the bbolt file. Empty disables the cache.
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups all settings for the application.
type Config struct {
	PDF     PDFConfig     `json:"pdf" yaml:"pdf"`
	Merge   MergeConfig   `json:"merge" yaml:"merge"`
	UI      UIConfig      `json:"ui" yaml:"ui"`
	History HistoryConfig `json:"history" yaml:"history"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
