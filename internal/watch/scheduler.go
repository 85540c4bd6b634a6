// Package watch drives the dual-cadence check loop: a cheap local tick and
// a slower network tick feeding one merged snapshot, with one status record
// emitted per completed cycle.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/obentoo/waybar-updates/internal/pacman"
	"github.com/obentoo/waybar-updates/internal/render"
	"github.com/obentoo/waybar-updates/internal/updates"
)

// Source answers update queries. *pacman.Client is the production
// implementation.
type Source interface {
	OfficialUpdates(ctx context.Context, allowNetwork bool) ([]updates.Update, error)
	AURUpdates(ctx context.Context) ([]updates.Update, error)
}

// Emitter writes one display record per cycle.
type Emitter interface {
	Emit(rec render.Record) error
}

// Config is the immutable polling configuration.
type Config struct {
	// LocalInterval is the period of the cheap local-only check.
	LocalInterval time.Duration
	// NetworkInterval is the period of the network check. Never runs
	// more often than LocalInterval.
	NetworkInterval time.Duration
	// CheckAUR enables the AUR query on network ticks.
	CheckAUR bool
	// Render controls record formatting.
	Render render.Options
}

// Scheduler owns the current snapshot and runs both check cadences on one
// sequential loop, so snapshot updates never interleave.
type Scheduler struct {
	cfg     Config
	source  Source
	emitter Emitter
	logger  *slog.Logger

	snap updates.Snapshot
	now  func() time.Time
}

// New creates a scheduler. The network interval is floored to the local
// interval.
func New(cfg Config, source Source, emitter Emitter, logger *slog.Logger) *Scheduler {
	if cfg.NetworkInterval < cfg.LocalInterval {
		logger.Warn("network interval below local interval, flooring",
			"network_interval", cfg.NetworkInterval,
			"local_interval", cfg.LocalInterval)
		cfg.NetworkInterval = cfg.LocalInterval
	}
	return &Scheduler{
		cfg:     cfg,
		source:  source,
		emitter: emitter,
		logger:  logger,
		now:     time.Now,
	}
}

// Run emits records until ctx is cancelled. Both check kinds fire
// immediately at start, then recur at their configured periods. The only
// error that ends the loop early is a missing tool, which makes the whole
// module non-functional.
func (s *Scheduler) Run(ctx context.Context) error {
	// Paint the bar before the first (possibly slow) queries finish.
	if err := s.emit(); err != nil {
		return err
	}

	now := s.now()
	nextLocal, nextNetwork := now, now

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		now = s.now()
		ran := false

		// When both cadences are due in the same wakeup the local pass
		// runs first and the network pass second, with a single record
		// reflecting both merges.
		if !now.Before(nextLocal) {
			if err := s.localPass(ctx); err != nil {
				return err
			}
			nextLocal = now.Add(s.cfg.LocalInterval)
			ran = true
		}
		if !now.Before(nextNetwork) {
			if err := s.networkPass(ctx); err != nil {
				return err
			}
			now = s.now()
			nextNetwork = now.Add(s.cfg.NetworkInterval)
			// The network pass just refreshed the official list;
			// push the local check back a full period.
			nextLocal = now.Add(s.cfg.LocalInterval)
			ran = true
		}

		if ran && ctx.Err() == nil {
			if err := s.emit(); err != nil {
				return err
			}
		}

		next := nextLocal
		if nextNetwork.Before(next) {
			next = nextNetwork
		}
		timer.Reset(next.Sub(s.now()))
	}
}

// localPass refreshes the official entries from cached database state.
func (s *Scheduler) localPass(ctx context.Context) error {
	entries, err := s.source.OfficialUpdates(ctx, false)
	if err != nil {
		return s.absorb(err, "local official check failed")
	}
	s.snap = s.snap.ReplaceOrigin(updates.OriginOfficial, entries).StampLocal(s.now())
	return nil
}

// networkPass refreshes both origins over the network. A failure in one
// origin's query does not block the other's update.
func (s *Scheduler) networkPass(ctx context.Context) error {
	entries, err := s.source.OfficialUpdates(ctx, true)
	if err != nil {
		if aerr := s.absorb(err, "network official check failed"); aerr != nil {
			return aerr
		}
	} else {
		s.snap = s.snap.ReplaceOrigin(updates.OriginOfficial, entries).StampNetwork(s.now())
	}

	if !s.cfg.CheckAUR {
		return nil
	}

	entries, err = s.source.AURUpdates(ctx)
	if err != nil {
		return s.absorb(err, "aur check failed")
	}
	s.snap = s.snap.ReplaceOrigin(updates.OriginAUR, entries).StampNetwork(s.now())
	return nil
}

// absorb downgrades recoverable query failures to a log line, keeping the
// previous entries for that origin. A missing tool stays fatal. No retry
// is scheduled: the failed check simply waits for its next period, so a
// flaky network cannot cause tight retry loops.
func (s *Scheduler) absorb(err error, msg string) error {
	if errors.Is(err, pacman.ErrToolUnavailable) {
		return err
	}
	s.logger.Warn(msg, "err", err)
	return nil
}

// emit renders the current snapshot and writes one record.
func (s *Scheduler) emit() error {
	rec := render.Render(s.snap, s.cfg.Render)
	return s.emitter.Emit(rec)
}

// Snapshot returns the current merged snapshot.
func (s *Scheduler) Snapshot() updates.Snapshot {
	return s.snap
}
