package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/obentoo/waybar-updates/internal/pkgver"
)

// ErrThemeNotFound is returned when the theme file does not exist.
var ErrThemeNotFound = errors.New("theme file not found")

// Default severity colors: major red, minor green, patch blue, pre
// magenta, other white.
const (
	defaultMajorColor = "ff0000"
	defaultMinorColor = "00ff00"
	defaultPatchColor = "0000ff"
	defaultPreColor   = "ff00ff"
	defaultOtherColor = "ffffff"
)

// ColorScheme maps update severities to hex colors (no leading '#').
// Empty fields fall back to the defaults at render time.
type ColorScheme struct {
	Major string `toml:"major"`
	Minor string `toml:"minor"`
	Patch string `toml:"patch"`
	Pre   string `toml:"pre"`
	Other string `toml:"other"`
}

// DefaultColors returns the built-in scheme.
func DefaultColors() ColorScheme {
	return ColorScheme{
		Major: defaultMajorColor,
		Minor: defaultMinorColor,
		Patch: defaultPatchColor,
		Pre:   defaultPreColor,
		Other: defaultOtherColor,
	}
}

// withDefaults fills empty slots with the built-in colors.
func (c ColorScheme) withDefaults() ColorScheme {
	d := DefaultColors()
	if c.Major == "" {
		c.Major = d.Major
	}
	if c.Minor == "" {
		c.Minor = d.Minor
	}
	if c.Patch == "" {
		c.Patch = d.Patch
	}
	if c.Pre == "" {
		c.Pre = d.Pre
	}
	if c.Other == "" {
		c.Other = d.Other
	}
	return c
}

func (c ColorScheme) forSeverity(sev pkgver.Severity) string {
	switch sev {
	case pkgver.SeverityMajor:
		return c.Major
	case pkgver.SeverityMinor:
		return c.Minor
	case pkgver.SeverityPatch:
		return c.Patch
	case pkgver.SeverityPre:
		return c.Pre
	default:
		return c.Other
	}
}

// LoadTheme reads a severity-to-color scheme from a TOML file. Missing
// keys keep their defaults; unknown keys are ignored; invalid color
// values are an error.
func LoadTheme(path string) (ColorScheme, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ColorScheme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, path)
	}

	var scheme ColorScheme
	if _, err := toml.DecodeFile(path, &scheme); err != nil {
		return ColorScheme{}, fmt.Errorf("failed to parse theme %s: %w", path, err)
	}

	for _, field := range []*string{&scheme.Major, &scheme.Minor, &scheme.Patch, &scheme.Pre, &scheme.Other} {
		if *field == "" {
			continue
		}
		normalized, err := normalizeHexColor(*field)
		if err != nil {
			return ColorScheme{}, fmt.Errorf("invalid color in theme %s: %w", path, err)
		}
		*field = normalized
	}
	return scheme, nil
}

// ParseColorList parses the comma-separated major,minor,patch,pre,other
// color list accepted on the command line and layers it over base slot by
// slot. Malformed or empty entries keep base's color for that slot; the
// returned warnings describe each skipped entry.
func ParseColorList(list string, base ColorScheme) (ColorScheme, []string) {
	scheme := base.withDefaults()
	parts := strings.Split(list, ",")
	if len(parts) != 5 {
		return scheme, []string{fmt.Sprintf("expected 5 colors (major,minor,patch,pre,other), got %d; keeping current colors", len(parts))}
	}

	targets := []*string{&scheme.Major, &scheme.Minor, &scheme.Patch, &scheme.Pre, &scheme.Other}
	var warnings []string
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			warnings = append(warnings, fmt.Sprintf("empty color in slot %d; keeping current color", i+1))
			continue
		}
		normalized, err := normalizeHexColor(part)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid color %q; keeping current color", part))
			continue
		}
		*targets[i] = normalized
	}
	return scheme, warnings
}

// normalizeHexColor validates an RGB hex color with optional leading '#'
// and returns it lowercased without the hash.
func normalizeHexColor(s string) (string, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 3 {
		return "", fmt.Errorf("color %q must be 3 or 6 hex digits", s)
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", fmt.Errorf("color %q contains non-hex characters", s)
		}
	}
	return strings.ToLower(s), nil
}
