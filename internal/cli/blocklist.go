package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/rotor/internal/control"
)

var blocklistCmd = &cobra.Command{
	Use:   "blocklist",
	Short: "Show the hosts blocked in the current run",
	Run:   runBlocklist,
}

var blocklistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the blocklist",
	Run:   runBlocklistClear,
}

func init() {
	blocklistCmd.AddCommand(blocklistClearCmd)
	rootCmd.AddCommand(blocklistCmd)
}

func runBlocklist(cmd *cobra.Command, args []string) {
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

	ctx := context.Background()
	hosts, err := blocklist.All(ctx)
	if err != nil {
		slog.Error("Failed to read blocklist", "error", err)
		os.Exit(1)
	}

	if len(hosts) == 0 {
		fmt.Println("Blocklist is empty")
		return
	}
	for _, h := range hosts {
		fmt.Println(h)
	}
}

func runBlocklistClear(cmd *cobra.Command, args []string) {
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

	ctx := context.Background()
	size, err := blocklist.Size(ctx)
	if err != nil {
		slog.Error("Failed to read blocklist", "error", err)
		os.Exit(1)
	}
	if err := blocklist.Clear(ctx); err != nil {
		slog.Error("Failed to clear blocklist", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Cleared %d blocked hosts\n", size)
}
