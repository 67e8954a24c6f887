package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DirName is the per-user and per-vault state directory name.
const DirName = ".inklings"

// EnvPrefix prefixes environment overrides, e.g. INKLINGS_DAILY_COUNT.
const EnvPrefix = "INKLINGS"

// Config holds application configuration.
type Config struct {
	// Folder is the vault folder whose direct children are dealt.
	Folder string `json:"folder" mapstructure:"folder" validate:"required"`

	// SnoozeDays is the default snooze length.
	SnoozeDays int `json:"snooze_days" mapstructure:"snooze_days" validate:"gte=0"`

	// DailyCount is the deck quota.
	DailyCount int `json:"daily_count" mapstructure:"daily_count" validate:"gte=0"`

	// HeaderMarker prefixes dated section headers, e.g. "######".
	HeaderMarker string `json:"header_marker" mapstructure:"header_marker" validate:"required"`

	// NoteGlob selects note files, relative to the vault root.
	NoteGlob string `json:"note_glob" mapstructure:"note_glob" validate:"required"`

	LogLevel string `json:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// HTTPAddr is the listen address for `inklings serve`.
	HTTPAddr string `json:"http_addr" mapstructure:"http_addr" validate:"required"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Global and vault lists are merged. Unknown names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" mapstructure:"disabled_tools"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Folder:       "Inklings",
		SnoozeDays:   3,
		DailyCount:   10,
		HeaderMarker: "######",
		NoteGlob:     "**/*.md",
		LogLevel:     "info",
		HTTPAddr:     "127.0.0.1:7878",
	}
}

var validate = validator.New()

// Validate checks field constraints and the header marker shape.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := ValidateMarker(c.HeaderMarker); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// reservedMarkerSymbols open list items, block quotes, fences, tables or the
// frontmatter sentinel, so a single one would be mistaken for a title heading.
const reservedMarkerSymbols = "-*+>`~|"

// ValidateMarker requires 2 to 6 repetitions of one non-space symbol that
// does not already mean something at the start of a markdown line.
func ValidateMarker(marker string) error {
	n := utf8.RuneCountInString(marker)
	if n < 2 || n > 6 {
		return fmt.Errorf("header_marker %q must be 2 to 6 repeated symbols", marker)
	}
	first, _ := utf8.DecodeRuneInString(marker)
	if unicode.IsSpace(first) || unicode.IsLetter(first) || unicode.IsDigit(first) {
		return fmt.Errorf("header_marker %q must use a symbol", marker)
	}
	if strings.ContainsRune(reservedMarkerSymbols, first) {
		return fmt.Errorf("header_marker %q must not use %q, it starts other markdown blocks", marker, first)
	}
	for _, r := range marker {
		if r != first {
			return fmt.Errorf("header_marker %q must repeat a single symbol", marker)
		}
	}
	return nil
}

// GlobalDir returns ~/.inklings.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// StateDir returns the vault's state directory.
func StateDir(vault string) string {
	return filepath.Join(vault, DirName)
}

// Load layers defaults, globalDir/config.json, vault/.inklings/config.json and
// INKLINGS_* environment variables, then validates the result. Either file may
// be missing. Scalars from later layers win; disabled_tools lists are merged.
func Load(globalDir, vault string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v, DefaultConfig())

	var globalTools []string
	if globalDir != "" {
		path := filepath.Join(globalDir, "config.json")
		if fileExists(path) {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			globalTools = v.GetStringSlice("disabled_tools")
		}
	}

	if vault != "" {
		path := filepath.Join(StateDir(vault), "config.json")
		if fileExists(path) {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.DisabledTools = mergeStringSlice(globalTools, cfg.DisabledTools)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("folder", d.Folder)
	v.SetDefault("snooze_days", d.SnoozeDays)
	v.SetDefault("daily_count", d.DailyCount)
	v.SetDefault("header_marker", d.HeaderMarker)
	v.SetDefault("note_glob", d.NoteGlob)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("http_addr", d.HTTPAddr)
	v.SetDefault("disabled_tools", []string{})
}

// FindVault walks upward from startDir to the nearest directory holding a
// .inklings state directory. Returns startDir when none is found.
func FindVault(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			// Skip the global state dir when walking through $HOME.
			if global, err := GlobalDir(); err != nil || filepath.Join(dir, DirName) != global {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !stderrors.Is(err, os.ErrNotExist)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
