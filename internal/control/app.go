package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vietddude/rotor/internal/core/config"
	"github.com/vietddude/rotor/internal/health"
	"github.com/vietddude/rotor/internal/infra/journal"
	"github.com/vietddude/rotor/internal/infra/storage"
	filestore "github.com/vietddude/rotor/internal/infra/storage/file"
	"github.com/vietddude/rotor/internal/infra/storage/memory"
	redisstore "github.com/vietddude/rotor/internal/infra/storage/redis"
	"github.com/vietddude/rotor/internal/infra/vpn"
	"github.com/vietddude/rotor/internal/rotation"
	"github.com/vietddude/rotor/internal/scheduler"
)

// App owns the full controller lifecycle: VPN control plane, blocklist,
// rotation controller, retry scheduler and the health server.
type App struct {
	cfg          *config.AppConfig
	runID        string
	blocklist    storage.BlockList
	journal      *journal.Journal
	sched        *scheduler.Scheduler
	healthMon    *health.Monitor
	healthServer *health.Server
	log          *slog.Logger
}

// NewApp creates an App with all dependencies initialized.
func NewApp(cfg *config.AppConfig) (*App, error) {
	if cfg.Worker.Command == "" {
		return nil, fmt.Errorf("worker.command is required")
	}

	log := slog.Default()
	runID := uuid.NewString()

	// 1. Blocklist storage
	blocklist, err := OpenBlockList(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init blocklist: %w", err)
	}

	// 2. Run journal (best effort; the controller runs without it)
	var jnl *journal.Journal
	if cfg.State.Dir != "" {
		if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state dir: %w", err)
		}
		jnl, err = journal.Open(filepath.Join(cfg.State.Dir, "journal.db"))
		if err != nil {
			log.Warn("Failed to open run journal, continuing without", "error", err)
			jnl = nil
		}
	}

	// 3. VPN control plane and rotation controller
	ctrl := buildController(cfg, blocklist, log)
	if jnl != nil {
		ctrl.SetJournal(jnl, runID)
	}

	// 4. Worker and retry scheduler
	worker := &scheduler.CommandWorker{
		Command: cfg.Worker.Command,
		Args:    cfg.Worker.Args,
		Dir:     cfg.Worker.Dir,
		Timeout: cfg.Worker.Timeout.Std(),
	}
	sched := scheduler.New(scheduler.Config{
		Mode:             scheduler.Mode(cfg.Retry.Mode),
		MaxAttempts:      cfg.Retry.MaxAttempts,
		BlockedBackoff:   cfg.Retry.BlockedBackoff.Std(),
		TransientBackoff: cfg.Retry.TransientBackoff.Std(),
		AmnestyInterval:  cfg.Retry.AmnestyInterval,
	}, worker, ctrl, blocklist, log)
	if jnl != nil {
		sched.SetJournal(jnl, runID)
	}

	// 5. Health monitoring
	healthMon := health.NewMonitor()
	healthMon.SetRunID(runID)
	sched.SetMonitor(healthMon)
	ctrl.SetMonitor(healthMon)

	return &App{
		cfg:          cfg,
		runID:        runID,
		blocklist:    blocklist,
		journal:      jnl,
		sched:        sched,
		healthMon:    healthMon,
		healthServer: health.NewServer(healthMon, cfg.Server.Port),
		log:          log,
	}, nil
}

// RunID identifies this run in the journal and health output.
func (a *App) RunID() string { return a.runID }

// Run starts the health server and drives the retry loop until it finishes
// or ctx is cancelled. It owns shutdown of everything NewApp opened.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	runErr := a.sched.Run(ctx)

	if err := a.healthServer.Stop(context.Background()); err != nil {
		a.log.Warn("Failed to stop health server", "error", err)
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("Failed to close journal", "error", err)
		}
	}
	return runErr
}

// OpenBlockList selects the blocklist backend: Redis when a URL is
// configured, a file under the state dir when one is set, memory otherwise.
func OpenBlockList(cfg *config.AppConfig) (storage.BlockList, error) {
	if cfg.Redis.URL != "" {
		bl, err := redisstore.NewBlockList(cfg.Redis)
		if err != nil {
			return nil, err
		}
		slog.Info("Using Redis blocklist", "key", cfg.Redis.Key)
		return bl, nil
	}
	if cfg.State.Dir != "" {
		if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
			return nil, err
		}
		bl, err := filestore.NewBlockList(filepath.Join(cfg.State.Dir, "blocklist.txt"))
		if err != nil {
			return nil, err
		}
		slog.Info("Using file blocklist", "dir", cfg.State.Dir)
		return bl, nil
	}
	slog.Info("Using memory blocklist")
	return memory.NewBlockList(), nil
}

// NewRotationController builds a standalone rotation controller around the
// configured control plane. Used by the one-shot rotate command.
func NewRotationController(cfg *config.AppConfig, blocklist storage.BlockList) *rotation.Controller {
	return buildController(cfg, blocklist, slog.Default())
}

// NewControlPlane builds the configured VPN control plane.
func NewControlPlane(cfg *config.AppConfig) vpn.ControlPlane {
	return vpn.NewCLIControlPlane(vpn.Config{
		Binary:         cfg.VPN.Binary,
		DaemonService:  cfg.VPN.DaemonService,
		CommandTimeout: cfg.VPN.CommandTimeout.Std(),
		RestartDelay:   cfg.VPN.RestartDelay.Std(),
	})
}

func buildController(cfg *config.AppConfig, blocklist storage.BlockList, log *slog.Logger) *rotation.Controller {
	plane := NewControlPlane(cfg)
	resolver := vpn.NewResolver(cfg.VPN.DomainSuffix)
	locations := rotation.NewLocationCache(plane, locationsPath(cfg), log)
	return rotation.NewController(rotation.Config{
		MaxAttempts:  cfg.Rotation.MaxAttempts,
		SettleDelay:  cfg.Rotation.SettleDelay.Std(),
		AttemptDelay: cfg.Rotation.AttemptDelay.Std(),
	}, plane, blocklist, locations, resolver, log)
}

func locationsPath(cfg *config.AppConfig) string {
	if cfg.State.Dir == "" {
		return ""
	}
	return filepath.Join(cfg.State.Dir, "locations.txt")
}
