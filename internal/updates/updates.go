// Package updates defines the pending-update model shared by the query
// adapter, the scheduler, and the renderer.
package updates

import (
	"time"

	"github.com/obentoo/waybar-updates/internal/pkgver"
)

// Origin identifies where a pending update comes from.
type Origin int

const (
	// OriginOfficial marks updates from the configured pacman repositories.
	OriginOfficial Origin = iota
	// OriginAUR marks updates of foreign packages tracked against the AUR.
	OriginAUR
)

func (o Origin) String() string {
	if o == OriginAUR {
		return "aur"
	}
	return "official"
}

// Update is one pending package update. Immutable once constructed.
type Update struct {
	Name       string
	OldVersion string
	NewVersion string
	Origin     Origin
	Severity   pkgver.Severity
}

// New builds an Update and derives its severity from the version pair.
func New(name, oldVersion, newVersion string, origin Origin) Update {
	return Update{
		Name:       name,
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Origin:     origin,
		Severity:   pkgver.Classify(oldVersion, newVersion),
	}
}

// Snapshot is the merged view of all pending updates from both origins.
// It is a value type: Replace and Stamp methods return a new Snapshot and
// never mutate the receiver, so a half-applied merge is never observable.
type Snapshot struct {
	official []Update
	aur      []Update

	// LocalCheckedAt is the time of the last successful local-only check.
	LocalCheckedAt time.Time
	// NetworkCheckedAt is the time of the last successful network check.
	NetworkCheckedAt time.Time
}

// ReplaceOrigin returns a copy of the snapshot with one origin's entries
// swapped out wholesale. The other origin is untouched.
func (s Snapshot) ReplaceOrigin(origin Origin, entries []Update) Snapshot {
	kept := make([]Update, 0, len(entries))
	for _, u := range entries {
		if u.Origin == origin {
			kept = append(kept, u)
		}
	}
	if origin == OriginAUR {
		s.aur = kept
	} else {
		s.official = kept
	}
	return s
}

// StampLocal returns a copy with the local check time set.
func (s Snapshot) StampLocal(at time.Time) Snapshot {
	s.LocalCheckedAt = at
	return s
}

// StampNetwork returns a copy with the network check time set.
func (s Snapshot) StampNetwork(at time.Time) Snapshot {
	s.NetworkCheckedAt = at
	return s
}

// Entries returns all pending updates, official first, then AUR, each group
// in discovery order. The slice is a fresh copy.
func (s Snapshot) Entries() []Update {
	out := make([]Update, 0, len(s.official)+len(s.aur))
	out = append(out, s.official...)
	out = append(out, s.aur...)
	return out
}

// Count returns the total number of pending updates.
func (s Snapshot) Count() int {
	return len(s.official) + len(s.aur)
}

// UpToDate reports whether no updates are pending from either origin.
func (s Snapshot) UpToDate() bool {
	return s.Count() == 0
}
