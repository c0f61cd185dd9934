package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/rotor/internal/control"
	"github.com/vietddude/rotor/internal/core/domain"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate the egress identity once and exit",
	Run:   runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	blocklist, err := control.OpenBlockList(cfg)
	if err != nil {
		slog.Error("Failed to init blocklist", "error", err)
		os.Exit(1)
	}

	ctrl := control.NewRotationController(cfg, blocklist)
	if err := ctrl.Rotate(context.Background()); err != nil {
		if domain.IsFatal(err) {
			slog.Error("Fatal infrastructure failure", "error", err)
		} else {
			slog.Error("Rotation failed", "error", err)
		}
		os.Exit(1)
	}
}
