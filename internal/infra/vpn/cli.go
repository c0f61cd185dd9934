package vpn

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Config holds the command-line adapter settings.
type Config struct {
	Binary         string        // control CLI, e.g. "nordvpn"
	DaemonService  string        // systemd unit behind the CLI
	CommandTimeout time.Duration // per-command deadline
	RestartDelay   time.Duration // wait after daemon stop and after start
}

// connectSuccessPhrase is what the CLI prints on an established connection.
const connectSuccessPhrase = "You are connected"

// ConnectSucceeded reports whether connect output confirms an established
// connection.
func ConnectSucceeded(output string) bool {
	return strings.Contains(output, connectSuccessPhrase)
}

// ConnectFailureClass extracts a coarse failure class from connect output.
// Diagnostics only; the rotation loop treats every class the same way.
func ConnectFailureClass(output string) string {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "already connected"):
		return "already-connected"
	case strings.Contains(lower, "no internet") || strings.Contains(lower, "no connectivity"):
		return "no-connectivity"
	case strings.Contains(lower, "no servers"):
		return "no-servers"
	default:
		return "unknown"
	}
}

// CommandRunner executes one command and returns its combined output.
// Substituted with a fake in tests.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	// The CLI reports operational failures in its output at least as often
	// as through its exit code, so output is returned either way.
	return buf.String(), err
}

// CLIControlPlane drives the provider CLI through subprocess calls.
type CLIControlPlane struct {
	cfg Config
	run CommandRunner
}

// NewCLIControlPlane creates the adapter, defaulting unset fields to the
// NordVPN tooling the controller ships against.
func NewCLIControlPlane(cfg Config) *CLIControlPlane {
	if cfg.Binary == "" {
		cfg.Binary = "nordvpn"
	}
	if cfg.DaemonService == "" {
		cfg.DaemonService = "nordvpnd"
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = 60 * time.Second
	}
	if cfg.RestartDelay == 0 {
		cfg.RestartDelay = 5 * time.Second
	}
	return &CLIControlPlane{cfg: cfg, run: runCommand}
}

func (p *CLIControlPlane) command(ctx context.Context, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, p.cfg.CommandTimeout)
	defer cancel()
	return p.run(cctx, p.cfg.Binary, args...)
}

func (p *CLIControlPlane) Status(ctx context.Context) (string, error) {
	out, err := p.command(ctx, "status")
	if err != nil {
		return out, fmt.Errorf("status command failed: %w", err)
	}
	return out, nil
}

func (p *CLIControlPlane) Connect(ctx context.Context, location string) (string, error) {
	args := []string{"connect"}
	if location != "" {
		args = append(args, location)
	}
	out, err := p.command(ctx, args...)
	if err != nil {
		// Output still carries the failure class.
		return out, fmt.Errorf("connect command failed: %w", err)
	}
	return out, nil
}

func (p *CLIControlPlane) Disconnect(ctx context.Context) error {
	if _, err := p.command(ctx, "disconnect"); err != nil {
		return fmt.Errorf("disconnect command failed: %w", err)
	}
	return nil
}

func (p *CLIControlPlane) ListLocations(ctx context.Context) (string, error) {
	out, err := p.command(ctx, "countries")
	if err != nil {
		return out, fmt.Errorf("countries command failed: %w", err)
	}
	return out, nil
}

// RestartDaemon stops the service, waits, starts it, and waits again so the
// daemon is settled before the next connect.
func (p *CLIControlPlane) RestartDaemon(ctx context.Context) error {
	if _, err := p.run(ctx, "systemctl", "stop", p.cfg.DaemonService); err != nil {
		return fmt.Errorf("daemon stop failed: %w", err)
	}
	sleep(ctx, p.cfg.RestartDelay)
	if _, err := p.run(ctx, "systemctl", "start", p.cfg.DaemonService); err != nil {
		return fmt.Errorf("daemon start failed: %w", err)
	}
	sleep(ctx, p.cfg.RestartDelay)
	return nil
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
