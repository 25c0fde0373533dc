package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/aethersync/internal/persistence"
)

func init() {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage compressed world snapshots",
	}

	snapshotCmd.AddCommand(&cobra.Command{
		Use:   "take",
		Short: "Export the persisted world to a compressed snapshot",
		Run:   runSnapshotTake,
	})
	snapshotCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshots, oldest first",
		Run:   runSnapshotList,
	})
	snapshotCmd.AddCommand(&cobra.Command{
		Use:   "restore <path>",
		Short: "Restore a snapshot into the database",
		Args:  cobra.ExactArgs(1),
		Run:   runSnapshotRestore,
	})

	RootCmd.AddCommand(snapshotCmd)
}

func runSnapshotTake(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		exitErr("open database", err)
	}
	defer db.Close()

	w := buildWorld(cfg)
	if err := db.LoadWorldState(w); err != nil {
		exitErr("load world state", err)
	}

	path, err := persistence.WriteSnapshot(cfg.Storage.SnapshotDir, persistence.TakeSnapshot(w))
	if err != nil {
		exitErr("write snapshot", err)
	}
	fmt.Println(path)
}

func runSnapshotList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	paths, err := persistence.ListSnapshots(cfg.Storage.SnapshotDir)
	if err != nil {
		exitErr("list snapshots", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func runSnapshotRestore(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	s, err := persistence.ReadSnapshot(args[0])
	if err != nil {
		exitErr("read snapshot", err)
	}

	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		exitErr("open database", err)
	}
	defer db.Close()

	w := buildWorld(cfg)
	s.Apply(w)
	if err := db.SaveWorldState(w, "snapshot-restore"); err != nil {
		exitErr("save restored state", err)
	}

	summary, _ := json.Marshal(map[string]any{
		"tick":        s.Tick,
		"agents":      len(s.Agents),
		"territories": len(s.Territories),
	})
	fmt.Println(string(summary))
}
