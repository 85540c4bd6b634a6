package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/obentoo/waybar-updates/internal/updates"
)

func snapshotWith(official, aur []updates.Update) updates.Snapshot {
	var snap updates.Snapshot
	snap = snap.ReplaceOrigin(updates.OriginOfficial, official)
	snap = snap.ReplaceOrigin(updates.OriginAUR, aur)
	return snap
}

func TestRenderEmptySnapshot(t *testing.T) {
	rec := Render(updates.Snapshot{}, Options{})
	if rec.Text != "0" {
		t.Errorf("text = %q, want \"0\"", rec.Text)
	}
	if rec.Class != ClassUpdated || rec.Alt != ClassUpdated {
		t.Errorf("class/alt = %q/%q, want updated", rec.Class, rec.Alt)
	}
	if rec.Tooltip != "" {
		t.Errorf("tooltip = %q, want empty", rec.Tooltip)
	}
}

func TestRenderSuppressZero(t *testing.T) {
	rec := Render(updates.Snapshot{}, Options{SuppressZero: true})
	if rec.Text != "" {
		t.Errorf("text = %q, want empty", rec.Text)
	}
	if rec.Class != ClassUpdated {
		t.Errorf("class = %q, want updated", rec.Class)
	}

	// Suppression only applies to the zero count.
	snap := snapshotWith([]updates.Update{
		updates.New("linux", "6.10.2-1", "6.10.3-1", updates.OriginOfficial),
	}, nil)
	rec = Render(snap, Options{SuppressZero: true})
	if rec.Text != "1" {
		t.Errorf("text = %q, want \"1\"", rec.Text)
	}
}

func TestRenderStateMatchesEntries(t *testing.T) {
	snap := snapshotWith([]updates.Update{
		updates.New("linux", "6.10.2-1", "6.10.3-1", updates.OriginOfficial),
		updates.New("bash", "5.2-1", "5.3-1", updates.OriginOfficial),
	}, []updates.Update{
		updates.New("yay", "12.3.5-1", "12.3.6-1", updates.OriginAUR),
	})

	rec := Render(snap, Options{})
	if rec.Text != "3" {
		t.Errorf("text = %q, want \"3\"", rec.Text)
	}
	if rec.Class != ClassHasUpdates {
		t.Errorf("class = %q, want has-updates", rec.Class)
	}

	lines := strings.Split(rec.Tooltip, "\n")
	if len(lines) != 3 {
		t.Fatalf("tooltip has %d lines, want 3:\n%s", len(lines), rec.Tooltip)
	}
	// Official entries precede the AUR entry.
	if !strings.HasPrefix(lines[0], "linux ") || !strings.HasPrefix(lines[1], "bash ") || !strings.HasPrefix(lines[2], "yay ") {
		t.Errorf("unexpected tooltip order:\n%s", rec.Tooltip)
	}
}

func TestRenderIdempotent(t *testing.T) {
	snap := snapshotWith([]updates.Update{
		updates.New("linux", "6.10.2-1", "6.10.3-1", updates.OriginOfficial),
	}, []updates.Update{
		updates.New("yay", "12.3.5-1", "12.3.6-1", updates.OriginAUR),
	})
	opts := Options{AlignColumns: true, Font: "monospace", Colorize: true}

	first := Render(snap, opts)
	second := Render(snap, opts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("render not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestRenderColumnAlignment(t *testing.T) {
	snap := snapshotWith([]updates.Update{
		updates.New("gcc", "14.1.1-1", "14.2.0-1", updates.OriginOfficial),
		updates.New("linux-firmware", "20240610-1", "20240710-1", updates.OriginOfficial),
	}, nil)

	rec := Render(snap, Options{AlignColumns: true, MinNameWidth: 20})
	lines := strings.Split(rec.Tooltip, "\n")
	if len(lines) != 2 {
		t.Fatalf("tooltip has %d lines, want 2", len(lines))
	}

	// The old-version column starts at the same offset on every line,
	// regardless of package name length.
	offsets := make([]int, len(lines))
	for i, line := range lines {
		idx := strings.Index(line, " 2")
		if idx < 0 {
			idx = strings.Index(line, " 1")
		}
		offsets[i] = idx
	}
	if offsets[0] != offsets[1] {
		t.Errorf("version columns misaligned (%d vs %d):\n%s", offsets[0], offsets[1], rec.Tooltip)
	}
	// Width 20 floors the name column even for short names.
	if got := strings.Index(lines[0], "14.1.1-1"); got != 21 {
		t.Errorf("version column offset = %d, want 21:\n%q", got, lines[0])
	}
}

func TestRenderColorBySeverity(t *testing.T) {
	snap := snapshotWith([]updates.Update{
		updates.New("pacman", "6.1.0-1", "7.0.0-1", updates.OriginOfficial),  // major
		updates.New("bash", "5.2-1", "5.3-1", updates.OriginOfficial),        // minor
		updates.New("linux", "6.10.2-1", "6.10.3-1", updates.OriginOfficial), // patch
	}, nil)

	rec := Render(snap, Options{Colorize: true})
	lines := strings.Split(rec.Tooltip, "\n")
	wantColors := []string{"ff0000", "00ff00", "0000ff"}
	for i, want := range wantColors {
		if !strings.Contains(lines[i], "<span color='#"+want+"'>") {
			t.Errorf("line %d missing color %s: %q", i, want, lines[i])
		}
		if !strings.HasSuffix(lines[i], "</span>") {
			t.Errorf("line %d not closed: %q", i, lines[i])
		}
	}
}

func TestRenderCustomColors(t *testing.T) {
	snap := snapshotWith([]updates.Update{
		updates.New("pacman", "6.1.0-1", "7.0.0-1", updates.OriginOfficial),
	}, nil)

	rec := Render(snap, Options{Colorize: true, Colors: ColorScheme{Major: "123abc"}})
	if !strings.Contains(rec.Tooltip, "#123abc") {
		t.Errorf("custom major color not applied: %q", rec.Tooltip)
	}
}

func TestRenderFontSpan(t *testing.T) {
	snap := snapshotWith([]updates.Update{
		updates.New("bash", "5.2-1", "5.3-1", updates.OriginOfficial),
	}, nil)

	rec := Render(snap, Options{AlignColumns: true, Font: "monospace"})
	if !strings.HasPrefix(rec.Tooltip, "<span font-family='monospace'>") || !strings.HasSuffix(rec.Tooltip, "</span>") {
		t.Errorf("tooltip not wrapped in font span: %q", rec.Tooltip)
	}

	// Without alignment the font span is omitted.
	rec = Render(snap, Options{Font: "monospace"})
	if strings.Contains(rec.Tooltip, "font-family") {
		t.Errorf("font span present without alignment: %q", rec.Tooltip)
	}
}
