// Package config loads the optional waybar-updates configuration file.
// Command-line flags override file values; the file overrides built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMalformedConfig is returned when the config file exists but cannot
// be parsed.
var ErrMalformedConfig = errors.New("malformed config file")

// Settings is the fully resolved configuration the rest of the program
// consumes. Immutable after startup.
type Settings struct {
	// Interval is the local tick period.
	Interval time.Duration
	// NetworkInterval is the network tick period; never below Interval.
	NetworkInterval time.Duration
	// Timeout bounds a single external tool invocation.
	Timeout time.Duration

	// NoZeroOutput blanks the text instead of showing "0".
	NoZeroOutput bool
	// NoAUR disables the AUR-origin queries.
	NoAUR bool

	// TooltipAlign pads the tooltip into fixed-width columns.
	TooltipAlign bool
	// TooltipAlignWidth is the minimum name column width when aligning.
	TooltipAlignWidth int
	// TooltipFont is the Pango font family for the aligned tooltip.
	TooltipFont string

	// ColorUpdates wraps tooltip lines in severity color spans.
	ColorUpdates bool
	// Colors is the comma-separated major,minor,patch,pre,other color
	// list; empty means built-in defaults.
	Colors string
	// Theme is the path of a TOML color theme file.
	Theme string

	// LogFile enables rotating file logging when non-empty.
	LogFile string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Interval:        5 * time.Second,
		NetworkInterval: 5 * time.Minute,
		Timeout:         30 * time.Second,
		TooltipFont:     "monospace",
		LogLevel:        "info",
	}
}

// File mirrors the YAML config file. All fields are optional; nil means
// "not set" so file values only override what they actually mention.
type File struct {
	Interval        *Duration `yaml:"interval"`
	NetworkInterval *Duration `yaml:"network_interval"`
	Timeout         *Duration `yaml:"timeout"`

	NoZeroOutput *bool `yaml:"no_zero_output"`
	NoAUR        *bool `yaml:"no_aur"`

	TooltipAlign      *bool   `yaml:"tooltip_align"`
	TooltipAlignWidth *int    `yaml:"tooltip_align_width"`
	TooltipFont       *string `yaml:"tooltip_font"`

	ColorUpdates *bool   `yaml:"color_updates"`
	Colors       *string `yaml:"colors"`
	Theme        *string `yaml:"theme"`

	LogFile  *string `yaml:"log_file"`
	LogLevel *string `yaml:"log_level"`
}

// Duration wraps time.Duration with YAML parsing of strings like "5s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// ConfigPaths returns the possible config file paths in priority order:
// the XDG location first, then the legacy dotfile location.
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "waybar-updates", "config.yaml"),
		filepath.Join(home, ".waybar-updates.yaml"),
	}, nil
}

// FindConfigPath returns the first existing config file path, or empty
// when no config file exists.
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Load reads the first available config file and applies it on top of the
// defaults. A missing file is not an error; the defaults stand.
func Load() (Settings, error) {
	path, err := FindConfigPath()
	if err != nil {
		return Defaults(), err
	}
	if path == "" {
		return Defaults(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a specific config file and applies it on top of the
// defaults.
func LoadFrom(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return settings, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}

	settings.apply(&file)
	return settings, nil
}

// apply overrides the settings with every field the file sets.
func (s *Settings) apply(f *File) {
	if f.Interval != nil {
		s.Interval = time.Duration(*f.Interval)
	}
	if f.NetworkInterval != nil {
		s.NetworkInterval = time.Duration(*f.NetworkInterval)
	}
	if f.Timeout != nil {
		s.Timeout = time.Duration(*f.Timeout)
	}
	if f.NoZeroOutput != nil {
		s.NoZeroOutput = *f.NoZeroOutput
	}
	if f.NoAUR != nil {
		s.NoAUR = *f.NoAUR
	}
	if f.TooltipAlign != nil {
		s.TooltipAlign = *f.TooltipAlign
	}
	if f.TooltipAlignWidth != nil {
		s.TooltipAlignWidth = *f.TooltipAlignWidth
	}
	if f.TooltipFont != nil {
		s.TooltipFont = *f.TooltipFont
	}
	if f.ColorUpdates != nil {
		s.ColorUpdates = *f.ColorUpdates
	}
	if f.Colors != nil {
		s.Colors = *f.Colors
	}
	if f.Theme != nil {
		s.Theme = *f.Theme
	}
	if f.LogFile != nil {
		s.LogFile = *f.LogFile
	}
	if f.LogLevel != nil {
		s.LogLevel = *f.LogLevel
	}
}
