// Package render turns an update snapshot into the record a waybar custom
// module consumes on stdout.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/obentoo/waybar-updates/internal/updates"
)

// Waybar custom-module state tags.
const (
	ClassUpdated    = "updated"
	ClassHasUpdates = "has-updates"
)

// Record is one line-delimited status record in waybar's custom-module
// format. Percentage is part of the contract but unused here.
type Record struct {
	Text    string `json:"text"`
	Alt     string `json:"alt"`
	Class   string `json:"class"`
	Tooltip string `json:"tooltip"`
}

// Options controls how a snapshot is rendered. Immutable after startup.
type Options struct {
	// SuppressZero blanks the text instead of showing "0" when no
	// updates are pending.
	SuppressZero bool
	// AlignColumns pads package names and old versions so the version
	// columns line up as a fixed-width table.
	AlignColumns bool
	// MinNameWidth is the minimum name column width when aligning;
	// the column grows further to fit the longest name.
	MinNameWidth int
	// Font names the Pango font family the tooltip is wrapped in when
	// aligning. Alignment is pointless without a monospaced font.
	Font string
	// Colorize wraps each tooltip line in a color span by severity.
	Colorize bool
	// Colors maps severities to hex colors; zero value means defaults.
	Colors ColorScheme
}

// Render produces the display record for a snapshot. Rendering is pure:
// the same snapshot and options always yield an identical record.
func Render(snap updates.Snapshot, opts Options) Record {
	entries := snap.Entries()

	text := strconv.Itoa(len(entries))
	class := ClassHasUpdates
	if len(entries) == 0 {
		class = ClassUpdated
		if opts.SuppressZero {
			text = ""
		}
	}

	return Record{
		Text:    text,
		Alt:     class,
		Class:   class,
		Tooltip: tooltip(entries, opts),
	}
}

func tooltip(entries []updates.Update, opts Options) string {
	if len(entries) == 0 {
		return ""
	}

	nameWidth, oldWidth := 0, 0
	if opts.AlignColumns {
		nameWidth = opts.MinNameWidth
		for _, u := range entries {
			if len(u.Name) > nameWidth {
				nameWidth = len(u.Name)
			}
			if len(u.OldVersion) > oldWidth {
				oldWidth = len(u.OldVersion)
			}
		}
	}

	colors := opts.Colors.withDefaults()

	lines := make([]string, 0, len(entries))
	for _, u := range entries {
		var line string
		if opts.AlignColumns {
			line = fmt.Sprintf("%-*s %-*s -> %s", nameWidth, u.Name, oldWidth, u.OldVersion, u.NewVersion)
		} else {
			line = fmt.Sprintf("%s %s -> %s", u.Name, u.OldVersion, u.NewVersion)
		}
		if opts.Colorize {
			line = fmt.Sprintf("<span color='#%s'>%s</span>", colors.forSeverity(u.Severity), line)
		}
		lines = append(lines, line)
	}

	body := strings.Join(lines, "\n")
	if opts.AlignColumns && opts.Font != "" {
		body = fmt.Sprintf("<span font-family='%s'>%s</span>", opts.Font, body)
	}
	return body
}
