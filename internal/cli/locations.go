package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/rotor/internal/control"
	"github.com/vietddude/rotor/internal/infra/vpn"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the locations offered by the VPN control plane",
	Run:   runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	plane := control.NewControlPlane(cfg)
	raw, err := plane.ListLocations(context.Background())
	if err != nil {
		slog.Error("Failed to list locations", "error", err)
		os.Exit(1)
	}

	tokens := vpn.ParseLocations(raw)
	if len(tokens) == 0 {
		fmt.Println("No locations available")
		os.Exit(1)
	}
	for _, tok := range tokens {
		fmt.Println(tok)
	}
}
