package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/rotor/internal/core/domain"
	"github.com/vietddude/rotor/internal/health"
	"github.com/vietddude/rotor/internal/metrics"
)

// Mode selects the retry policy.
type Mode string

const (
	// ModeBounded stops and fails after a fixed attempt ceiling.
	ModeBounded Mode = "bounded"
	// ModeUnattended loops forever, with periodic blocklist amnesty, and
	// rotates on every failure regardless of classification.
	ModeUnattended Mode = "unattended"
)

// Config drives the retry loop.
type Config struct {
	Mode             Mode
	MaxAttempts      int           // bounded-mode ceiling
	BlockedBackoff   time.Duration // after a successful rotation
	TransientBackoff time.Duration // after a transient failure
	AmnestyInterval  int           // unattended: clear blocklist every N attempts
}

// Defaults applied by New when fields are unset.
const (
	DefaultMaxAttempts     = 10
	DefaultAmnestyInterval = 50
)

// ErrAttemptsExhausted reports a bounded run that never succeeded.
var ErrAttemptsExhausted = errors.New("attempt limit reached without success")

// Rotator is what the scheduler asks for a fresh egress identity.
type Rotator interface {
	Rotate(ctx context.Context) error
}

// BlocklistClearer is the amnesty hook into the blocklist store.
type BlocklistClearer interface {
	Clear(ctx context.Context) error
}

type journalRecorder interface {
	RecordAttempt(ctx context.Context, rec domain.AttemptRecord) error
}

// Scheduler drives the outer retry loop: run worker, classify, rotate or
// back off, repeat.
type Scheduler struct {
	cfg       Config
	worker    Worker
	rotator   Rotator
	blocklist BlocklistClearer
	journal   journalRecorder
	monitor   *health.Monitor
	runID     string
	log       *slog.Logger
}

func New(cfg Config, worker Worker, rotator Rotator, blocklist BlocklistClearer, log *slog.Logger) *Scheduler {
	if cfg.Mode == "" {
		cfg.Mode = ModeBounded
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AmnestyInterval <= 0 {
		cfg.AmnestyInterval = DefaultAmnestyInterval
	}
	return &Scheduler{
		cfg:       cfg,
		worker:    worker,
		rotator:   rotator,
		blocklist: blocklist,
		log:       log,
	}
}

// SetJournal attaches the optional run journal.
func (s *Scheduler) SetJournal(j journalRecorder, runID string) {
	s.journal = j
	s.runID = runID
}

// SetMonitor attaches the optional health monitor.
func (s *Scheduler) SetMonitor(m *health.Monitor) {
	s.monitor = m
}

// Run loops until the worker succeeds, the bounded-mode ceiling is reached,
// or rotation fails fatally. Context cancellation ends the loop between
// steps; there is no finer-grained cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.setPhase(health.PhaseRunning)
		start := time.Now()
		code, err := s.worker.Run(ctx)
		duration := time.Since(start)
		if err != nil {
			// Could not even start the worker; flows through
			// classification as any other non-zero exit.
			s.log.Warn("Worker did not start", "error", err)
		}

		outcome := domain.ClassifyExitCode(code)
		metrics.WorkerRuns.WithLabelValues(outcome.String()).Inc()
		metrics.WorkerDuration.Observe(duration.Seconds())
		s.recordAttempt(ctx, attempt, code, outcome, duration)
		s.log.Info("Worker finished",
			"attempt", attempt,
			"exit_code", code,
			"outcome", outcome.String(),
			"duration", duration.Round(time.Millisecond))

		if outcome == domain.OutcomeSuccess {
			s.setPhase(health.PhaseStopped)
			s.log.Info("Run complete", "attempts", attempt)
			return nil
		}

		// Amnesty: transient misclassification must not grow the blocklist
		// without bound across an indefinite run.
		if s.cfg.Mode == ModeUnattended && attempt%s.cfg.AmnestyInterval == 0 {
			s.log.Info("Blocklist amnesty", "interval", s.cfg.AmnestyInterval)
			if err := s.blocklist.Clear(ctx); err != nil {
				s.log.Warn("Amnesty clear failed", "error", err)
			}
			metrics.BlocklistSize.Set(0)
			if s.monitor != nil {
				s.monitor.SetBlocklistSize(0)
			}
		}

		switch {
		case outcome == domain.OutcomeBlocked || s.cfg.Mode == ModeUnattended:
			// Unattended runs rotate on every failure: forward progress
			// over precise diagnosis when nobody is watching.
			s.setPhase(health.PhaseRotating)
			if err := s.rotator.Rotate(ctx); err != nil {
				s.setUnhealthy()
				return fmt.Errorf("rotation failed: %w", err)
			}
			s.backoff(ctx, s.cfg.BlockedBackoff)
		default:
			s.backoff(ctx, s.cfg.TransientBackoff)
		}

		if s.cfg.Mode == ModeBounded && attempt >= s.cfg.MaxAttempts {
			s.setUnhealthy()
			return fmt.Errorf("%w: %d attempts", ErrAttemptsExhausted, attempt)
		}
	}
}

func (s *Scheduler) backoff(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	s.setPhase(health.PhaseBackoff)
	s.log.Debug("Backing off", "duration", d)
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (s *Scheduler) recordAttempt(ctx context.Context, attempt, code int, outcome domain.Outcome, duration time.Duration) {
	if s.monitor != nil {
		s.monitor.RecordAttempt(outcome.String())
	}
	if s.journal == nil {
		return
	}
	rec := domain.AttemptRecord{
		RunID:    s.runID,
		Attempt:  attempt,
		ExitCode: code,
		Outcome:  outcome,
		Duration: duration,
		At:       time.Now(),
	}
	if err := s.journal.RecordAttempt(ctx, rec); err != nil {
		s.log.Warn("Failed to journal attempt", "error", err)
	}
}

func (s *Scheduler) setPhase(p health.Phase) {
	if s.monitor != nil {
		s.monitor.SetPhase(p)
	}
}

func (s *Scheduler) setUnhealthy() {
	if s.monitor != nil {
		s.monitor.SetUnhealthy()
	}
}
