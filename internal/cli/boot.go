package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talgya/aethersync/internal/gb"
)

func init() {
	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Run the boot choreography and report the player position",
		Run:   runBoot,
	}
	RootCmd.AddCommand(cmd)
}

func runBoot(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	device := gb.NewDevice(cfg.Emu.SpawnX, cfg.Emu.SpawnY, cfg.Emu.SpawnM)
	defer device.Stop()

	if err := gb.Boot(device); err != nil {
		exitErr("boot", err)
	}

	pos := gb.NewBridge(device).Position()
	slog.Info("overworld reached", "x", pos.X, "y", pos.Y, "map", pos.Map)
}
