package rotation

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/rotor/internal/core/domain"
	"github.com/vietddude/rotor/internal/health"
	"github.com/vietddude/rotor/internal/infra/storage"
	"github.com/vietddude/rotor/internal/infra/vpn"
	"github.com/vietddude/rotor/internal/metrics"
)

// Config bounds a single rotation.
type Config struct {
	MaxAttempts  int           // connect attempts before escalating
	SettleDelay  time.Duration // wait after disconnect
	AttemptDelay time.Duration // wait between failed connect attempts
}

// DefaultMaxAttempts is applied when the config leaves the bound unset.
const DefaultMaxAttempts = 20

type journalRecorder interface {
	RecordRotation(ctx context.Context, rec domain.RotationRecord) error
}

// Controller owns the disconnect → select → connect → verify cycle and the
// escalation ladder behind it. Strictly sequential; the control plane is a
// per-host singleton and only one command may be in flight.
type Controller struct {
	cfg       Config
	plane     vpn.ControlPlane
	blocklist storage.BlockList
	locations *LocationCache
	resolver  *vpn.Resolver
	journal   journalRecorder
	runID     string
	monitor   *health.Monitor
	log       *slog.Logger
}

// NewController wires a rotation controller. The blocklist and location
// cache are borrowed, not owned.
func NewController(
	cfg Config,
	plane vpn.ControlPlane,
	blocklist storage.BlockList,
	locations *LocationCache,
	resolver *vpn.Resolver,
	log *slog.Logger,
) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Controller{
		cfg:       cfg,
		plane:     plane,
		blocklist: blocklist,
		locations: locations,
		resolver:  resolver,
		log:       log,
	}
}

// SetJournal attaches the optional run journal.
func (c *Controller) SetJournal(j journalRecorder, runID string) {
	c.journal = j
	c.runID = runID
}

// SetMonitor attaches the optional health monitor. The controller is the
// only component that knows the accepted hostname and the blocklist size.
func (c *Controller) SetMonitor(m *health.Monitor) {
	c.monitor = m
}

// Rotate establishes a new egress identity, never knowingly reconnecting to
// a blocked node. A nil return means the controller is connected again; a
// fatal error means the control plane itself is broken and the run is over.
func (c *Controller) Rotate(ctx context.Context) error {
	oldHost := c.recordCurrent(ctx)

	if err := c.plane.Disconnect(ctx); err != nil {
		c.log.Debug("Disconnect before rotation failed", "error", err)
	}
	sleep(ctx, c.cfg.SettleDelay)

	if c.locations.Len() == 0 {
		if err := c.locations.Refresh(ctx); err != nil {
			metrics.Rotations.WithLabelValues("fatal").Inc()
			return err
		}
	}

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		loc, err := c.locations.Sample(ctx)
		if err != nil {
			metrics.Rotations.WithLabelValues("fatal").Inc()
			return err
		}

		out, err := c.plane.Connect(ctx, loc)
		if err != nil || !vpn.ConnectSucceeded(out) {
			metrics.RotationAttempts.WithLabelValues("connect-failed").Inc()
			c.log.Warn("Connect attempt failed",
				"attempt", attempt,
				"location", loc,
				"class", vpn.ConnectFailureClass(out),
				"error", err)
			sleep(ctx, c.cfg.AttemptDelay)
			continue
		}

		id := c.resolve(ctx, out)
		if id.Resolved() {
			blocked, berr := c.blocklist.Contains(ctx, id.Hostname)
			if berr != nil {
				c.log.Warn("Blocklist lookup failed", "error", berr)
			}
			if blocked {
				metrics.RotationAttempts.WithLabelValues("blocklisted").Inc()
				c.log.Info("Landed on a blocked node, retrying",
					"hostname", id.Hostname, "attempt", attempt)
				if derr := c.plane.Disconnect(ctx); derr != nil {
					c.log.Debug("Disconnect from blocked node failed", "error", derr)
				}
				sleep(ctx, c.cfg.AttemptDelay)
				continue
			}
		} else {
			// Unverifiable, but the run must make progress; reusing a
			// blocked node here is a known, accepted risk.
			c.log.Warn("Connected but node identity unresolved", "location", loc)
		}

		metrics.RotationAttempts.WithLabelValues("connected").Inc()
		metrics.Rotations.WithLabelValues("rotated").Inc()
		if c.monitor != nil {
			c.monitor.RecordRotation(id.Hostname)
		}
		c.log.Info("Rotation complete",
			"location", loc, "hostname", id.Hostname, "attempts", attempt)
		c.recordRotation(ctx, domain.RotationRecord{
			OldHostname: oldHost,
			NewHostname: id.Hostname,
			Location:    loc,
			Attempts:    attempt,
		})
		return nil
	}

	// A cancelled context makes every command fail fast; that is the
	// operator stopping the run, not the control plane breaking.
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.escalate(ctx, oldHost)
}

// recordCurrent notes the identity being abandoned into the blocklist.
// Best-effort: an unresolvable identity is skipped, not an error.
func (c *Controller) recordCurrent(ctx context.Context) string {
	out, err := c.plane.Status(ctx)
	if err != nil {
		c.log.Debug("Status before rotation failed", "error", err)
		return ""
	}
	id := c.resolver.Resolve(out)
	if !id.Resolved() {
		return ""
	}
	if err := c.blocklist.Add(ctx, id.Hostname); err != nil {
		c.log.Warn("Failed to record blocked hostname", "hostname", id.Hostname, "error", err)
		return id.Hostname
	}
	c.syncBlocklistGauge(ctx)
	c.log.Info("Recorded blocked egress node", "hostname", id.Hostname)
	return id.Hostname
}

// resolve extracts the node identity from connect output, falling back to
// one status query, which carries the labeled server field.
func (c *Controller) resolve(ctx context.Context, connectOut string) domain.EgressIdentity {
	if id := c.resolver.Resolve(connectOut); id.Resolved() {
		return id
	}
	st, err := c.plane.Status(ctx)
	if err != nil {
		return domain.EgressIdentity{Raw: connectOut}
	}
	return c.resolver.Resolve(st)
}

// escalate widens the search after the attempt bound is spent: forget every
// blocked node and take whatever the provider picks. If even that fails,
// cycle the daemon and try once more before declaring the control plane
// dead.
func (c *Controller) escalate(ctx context.Context, oldHost string) error {
	c.log.Warn("Rotation attempts exhausted, clearing blocklist",
		"max_attempts", c.cfg.MaxAttempts)
	metrics.EscalationSteps.WithLabelValues("clear-blocklist").Inc()
	if err := c.blocklist.Clear(ctx); err != nil {
		c.log.Warn("Failed to clear blocklist", "error", err)
	}
	c.syncBlocklistGauge(ctx)

	metrics.EscalationSteps.WithLabelValues("auto-connect").Inc()
	if c.autoConnect(ctx) {
		metrics.Rotations.WithLabelValues("escalated").Inc()
		c.noteEscalatedRotation(ctx)
		c.recordRotation(ctx, domain.RotationRecord{
			OldHostname: oldHost,
			Attempts:    c.cfg.MaxAttempts,
			Escalated:   true,
		})
		return nil
	}

	c.log.Warn("Auto-connect failed, restarting control-plane daemon")
	metrics.EscalationSteps.WithLabelValues("daemon-restart").Inc()
	if err := c.plane.RestartDaemon(ctx); err != nil {
		c.log.Error("Daemon restart failed", "error", err)
	}

	metrics.EscalationSteps.WithLabelValues("auto-connect").Inc()
	if c.autoConnect(ctx) {
		metrics.Rotations.WithLabelValues("escalated").Inc()
		c.noteEscalatedRotation(ctx)
		c.recordRotation(ctx, domain.RotationRecord{
			OldHostname: oldHost,
			Attempts:    c.cfg.MaxAttempts,
			Escalated:   true,
		})
		return nil
	}

	metrics.Rotations.WithLabelValues("fatal").Inc()
	return domain.Fatalf("auto-connect failed after daemon restart")
}

func (c *Controller) autoConnect(ctx context.Context) bool {
	out, err := c.plane.Connect(ctx, "")
	if err != nil {
		c.log.Warn("Auto-connect command failed", "error", err)
		return false
	}
	return vpn.ConnectSucceeded(out)
}

func (c *Controller) syncBlocklistGauge(ctx context.Context) {
	if n, err := c.blocklist.Size(ctx); err == nil {
		metrics.BlocklistSize.Set(float64(n))
		if c.monitor != nil {
			c.monitor.SetBlocklistSize(n)
		}
	}
}

// noteEscalatedRotation reports an auto-connected rotation to the monitor.
// The provider picked the node, so the hostname comes from a status lookup.
func (c *Controller) noteEscalatedRotation(ctx context.Context) {
	if c.monitor == nil {
		return
	}
	host := ""
	if out, err := c.plane.Status(ctx); err == nil {
		host = c.resolver.Resolve(out).Hostname
	}
	c.monitor.RecordRotation(host)
}

func (c *Controller) recordRotation(ctx context.Context, rec domain.RotationRecord) {
	if c.journal == nil {
		return
	}
	rec.RunID = c.runID
	rec.At = time.Now()
	if err := c.journal.RecordRotation(ctx, rec); err != nil {
		c.log.Warn("Failed to journal rotation", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
