package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/obentoo/waybar-updates/internal/pacman"
	"github.com/obentoo/waybar-updates/internal/render"
	"github.com/obentoo/waybar-updates/internal/updates"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource returns canned query results.
type fakeSource struct {
	official    []updates.Update
	officialErr error
	aur         []updates.Update
	aurErr      error

	officialCalls []bool // allowNetwork per call
	aurCalls      int
}

func (f *fakeSource) OfficialUpdates(ctx context.Context, allowNetwork bool) ([]updates.Update, error) {
	f.officialCalls = append(f.officialCalls, allowNetwork)
	return f.official, f.officialErr
}

func (f *fakeSource) AURUpdates(ctx context.Context) ([]updates.Update, error) {
	f.aurCalls++
	return f.aur, f.aurErr
}

// recordingEmitter collects emitted records. Safe for use from the Run
// goroutine.
type recordingEmitter struct {
	mu      sync.Mutex
	records []render.Record
}

func (r *recordingEmitter) Emit(rec render.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingEmitter) all() []render.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]render.Record(nil), r.records...)
}

func newTestScheduler(cfg Config, source Source) (*Scheduler, *recordingEmitter) {
	emitter := &recordingEmitter{}
	s := New(cfg, source, emitter, testLogger())
	return s, emitter
}

func official(n int) []updates.Update {
	out := make([]updates.Update, n)
	for i := range out {
		out[i] = updates.New(fmt.Sprintf("pkg%d", i), "1.0.0-1", "1.0.1-1", updates.OriginOfficial)
	}
	return out
}

func TestLocalPassReplacesOfficialOnly(t *testing.T) {
	src := &fakeSource{official: official(2)}
	s, _ := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute}, src)

	s.snap = s.snap.ReplaceOrigin(updates.OriginAUR, []updates.Update{
		updates.New("yay", "1-1", "2-1", updates.OriginAUR),
	})

	if err := s.localPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.snap.Count() != 3 {
		t.Errorf("count = %d, want 3 (2 official + 1 aur kept)", s.snap.Count())
	}
	if len(src.officialCalls) != 1 || src.officialCalls[0] {
		t.Errorf("local pass must query with allowNetwork=false, got %v", src.officialCalls)
	}
	if s.snap.LocalCheckedAt.IsZero() {
		t.Error("local check time not stamped")
	}
}

func TestNetworkPassFailureRetainsOfficialEntries(t *testing.T) {
	src := &fakeSource{official: official(2)}
	s, _ := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute, CheckAUR: true}, src)

	// A successful local pass populates the official origin.
	if err := s.localPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Then the network goes away entirely.
	src.officialErr = pacman.ErrNoNetwork
	src.aurErr = pacman.ErrNoNetwork
	if err := s.networkPass(context.Background()); err != nil {
		t.Fatalf("recoverable failure must be absorbed, got %v", err)
	}

	if s.snap.Count() != 2 {
		t.Errorf("count = %d, want 2 (previous entries retained)", s.snap.Count())
	}
	if !s.snap.NetworkCheckedAt.IsZero() {
		t.Error("network check time stamped despite failure")
	}
}

func TestNetworkPassOriginFailuresAreIndependent(t *testing.T) {
	// Official query fails but the AUR query still lands.
	src := &fakeSource{
		officialErr: pacman.ErrToolFailed,
		aur: []updates.Update{
			updates.New("yay", "12.3.5-1", "12.3.6-1", updates.OriginAUR),
		},
	}
	s, _ := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute, CheckAUR: true}, src)

	if err := s.networkPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.snap.Count() != 1 {
		t.Errorf("count = %d, want 1 (aur merge independent of official failure)", s.snap.Count())
	}
	if src.aurCalls != 1 {
		t.Errorf("aur calls = %d, want 1", src.aurCalls)
	}
}

func TestNetworkPassSkipsAURWhenDisabled(t *testing.T) {
	src := &fakeSource{official: official(1)}
	s, _ := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute, CheckAUR: false}, src)

	if err := s.networkPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.aurCalls != 0 {
		t.Errorf("aur calls = %d, want 0 when disabled", src.aurCalls)
	}
}

func TestMissingToolIsFatal(t *testing.T) {
	src := &fakeSource{officialErr: pacman.ErrToolUnavailable}
	s, _ := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute}, src)

	if err := s.localPass(context.Background()); !errors.Is(err, pacman.ErrToolUnavailable) {
		t.Errorf("err = %v, want ErrToolUnavailable", err)
	}
}

func TestCombinedScenario(t *testing.T) {
	// Local check finds 2 official updates, network check adds 1 AUR
	// update: the record shows 3, official entries first.
	src := &fakeSource{
		official: official(2),
		aur: []updates.Update{
			updates.New("yay", "12.3.5-1", "12.3.6-1", updates.OriginAUR),
		},
	}
	s, emitter := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute, CheckAUR: true}, src)

	if err := s.localPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.networkPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.emit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(emitter.records) != 1 {
		t.Fatalf("records = %d, want 1", len(emitter.records))
	}
	rec := emitter.records[0]
	if rec.Text != "3" || rec.Class != render.ClassHasUpdates {
		t.Errorf("record = %+v, want text 3 / has-updates", rec)
	}

	entries := s.Snapshot().Entries()
	if entries[len(entries)-1].Origin != updates.OriginAUR {
		t.Error("aur entry must come last")
	}
}

func TestAllUpdatesApplied(t *testing.T) {
	src := &fakeSource{official: official(2)}
	s, emitter := newTestScheduler(Config{LocalInterval: time.Second, NetworkInterval: time.Minute, CheckAUR: true}, src)

	if err := s.localPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Everything gets upgraded between ticks; both queries come back empty.
	src.official = nil
	src.aur = nil
	if err := s.networkPass(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.emit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := emitter.records[len(emitter.records)-1]
	if rec.Text != "0" || rec.Class != render.ClassUpdated {
		t.Errorf("record = %+v, want text 0 / updated", rec)
	}
}

func TestRunEmitsImmediatelyAndStops(t *testing.T) {
	src := &fakeSource{official: official(1)}
	s, emitter := newTestScheduler(Config{LocalInterval: time.Hour, NetworkInterval: time.Hour}, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Both first ticks fire immediately: the startup paint plus the
	// first combined cycle.
	deadline := time.After(2 * time.Second)
	for len(emitter.all()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for emissions, got %d", len(emitter.all()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil on shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}

	// Startup paint shows the empty snapshot; the first cycle shows the
	// merged result, local pass before network pass.
	records := emitter.all()
	if records[0].Text != "0" {
		t.Errorf("first record text = %q, want 0", records[0].Text)
	}
	if records[1].Text != "1" {
		t.Errorf("second record text = %q, want 1", records[1].Text)
	}
	if len(src.officialCalls) < 2 || src.officialCalls[0] || !src.officialCalls[1] {
		t.Errorf("first cycle must run local then network, got %v", src.officialCalls)
	}
}

func TestNetworkIntervalFloor(t *testing.T) {
	s, _ := newTestScheduler(Config{LocalInterval: time.Minute, NetworkInterval: time.Second}, &fakeSource{})
	if s.cfg.NetworkInterval != time.Minute {
		t.Errorf("network interval = %v, want floored to %v", s.cfg.NetworkInterval, time.Minute)
	}
}
