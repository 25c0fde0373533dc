package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/aethersync/internal/gb"
	"github.com/talgya/aethersync/internal/rpc"
)

var skipBoot bool

func init() {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Serve the JSON request protocol over stdin/stdout",
		Long: "bridge attaches the emulator, boots it into the overworld, and " +
			"answers line-delimited JSON requests (initialize, register_agent, " +
			"move, observe, save, load, list_saves) on stdin/stdout.",
		Run: runBridge,
	}
	cmd.Flags().BoolVar(&skipBoot, "skip-boot", false, "Skip the boot choreography")
	RootCmd.AddCommand(cmd)
}

func runBridge(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	device := gb.NewDevice(cfg.Emu.SpawnX, cfg.Emu.SpawnY, cfg.Emu.SpawnM)
	defer device.Stop()

	if !skipBoot {
		if err := gb.Boot(device); err != nil {
			exitErr("boot", err)
		}
	}
	bridge := gb.NewBridge(device)

	if err := os.MkdirAll(cfg.Emu.SaveDir, 0o755); err != nil {
		exitErr("create save dir", err)
	}

	w := buildWorld(cfg)
	dispatcher, err := rpc.NewDispatcher(w, bridge, cfg.Emu.SaveDir)
	if err != nil {
		exitErr("build dispatcher", err)
	}

	slog.Info("bridge ready", "position", bridge.Position())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := bufio.NewWriter(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		out.Write(dispatcher.HandleRaw(line))
		out.WriteByte('\n')
		out.Flush()
	}
	if err := scanner.Err(); err != nil {
		exitErr("reading stdin", err)
	}
	fmt.Fprintln(os.Stderr, "bridge closed")
}
