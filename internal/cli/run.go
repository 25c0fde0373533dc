package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/api"
	"github.com/talgya/aethersync/internal/chat"
	"github.com/talgya/aethersync/internal/config"
	"github.com/talgya/aethersync/internal/engine"
	"github.com/talgya/aethersync/internal/persistence"
	"github.com/talgya/aethersync/internal/sim"
	"github.com/talgya/aethersync/internal/world"
)

var renderOverlay bool

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the world simulation with the HTTP API",
		Run:   runWorld,
	}
	cmd.Flags().BoolVar(&renderOverlay, "render", true, "Render the chat overlay to stdout")
	RootCmd.AddCommand(cmd)
}

func runWorld(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	runID := uuid.NewString()
	slog.Info("Aether-Sync / Kanto-Prime world starting", "run_id", runID)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755)
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		exitErr("open database", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.DBPath)

	// ── World ─────────────────────────────────────────────────────────
	w := buildWorld(cfg)

	if db.HasWorldState() {
		slog.Info("found saved world state, loading...")
		if err := db.LoadWorldState(w); err != nil {
			exitErr("load world state", err)
		}
	} else {
		registerRoster(w, cfg)
	}

	// ── Overlay renderer ──────────────────────────────────────────────
	if renderOverlay {
		renderer := chat.NewRenderer(os.Stdout)
		entries, cancel := w.Chat().Subscribe(256)
		defer cancel()
		go func() {
			for e := range entries {
				renderer.Render(e)
			}
		}()
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.SetTick(w.CurrentTick())
	eng.SetSpeed(cfg.Engine.Speed)
	eng.Interval = cfg.TickInterval()
	eng.AutosavePeriod = cfg.Engine.AutosaveTicks
	eng.StatusPeriod = cfg.Engine.StatusTicks
	eng.OnTick = func(uint64) { w.Tick() }
	eng.OnStatus = func(tick uint64) {
		stats := w.Stats()
		views := w.AgentViews()
		total := 0
		for _, a := range views {
			total += a.Wallet
		}
		slog.Info("world status", "tick", tick,
			"agents", len(views), "total_gold", total,
			"trades", stats.Trades, "battles", stats.Battles,
			"land_claims", stats.LandClaims)
	}
	eng.OnAutosave = func(tick uint64) {
		if err := db.SaveWorldState(w, runID); err != nil {
			slog.Error("autosave failed", "tick", tick, "error", err)
		}
	}

	// ── API ───────────────────────────────────────────────────────────
	server := &api.Server{
		World:          w,
		Eng:            eng,
		DB:             db,
		Addr:           cfg.Server.Addr,
		AdminKey:       cfg.Server.AdminToken,
		ScreenshotPath: cfg.Server.ScreenshotPath,
	}
	server.Start()

	// ── Signals ───────────────────────────────────────────────────────
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		slog.Info("shutting down", "signal", sig.String())
		eng.Stop()
	}()

	eng.Run()

	if err := db.SaveWorldState(w, runID); err != nil {
		exitErr("final save", err)
	}
	slog.Info("world stopped", "tick", w.CurrentTick())
}

func buildWorld(cfg config.Config) *sim.World {
	simCfg := sim.DefaultConfig()
	simCfg.Seed = cfg.Sim.Seed
	simCfg.Bounds = rectFromConfig(cfg.Sim.Bounds)
	simCfg.SpawnBox = rectFromConfig(cfg.Sim.SpawnBox)
	simCfg.LandPrice = cfg.Sim.LandPrice
	simCfg.TaxRate = cfg.Sim.TaxRate
	simCfg.LevelBonus = cfg.Sim.LevelBonus
	simCfg.ChatCapacity = cfg.Sim.ChatCapacity
	simCfg.EventChance = cfg.Sim.EventChance
	simCfg.MarketPeriod = cfg.Sim.MarketPeriod
	return sim.NewWorld(simCfg)
}

func rectFromConfig(r config.RectConfig) world.Rect {
	return world.Rect{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY}
}

func registerRoster(w *sim.World, cfg config.Config) {
	for _, spec := range cfg.Sim.Agents {
		p, ok := agents.ParsePersonality(spec.Personality)
		if !ok {
			slog.Warn("unknown personality, defaulting to explorer",
				"agent", spec.Name, "personality", spec.Personality)
			p = agents.PersonalityExplorer
		}
		w.Register(spec.Name, p)
	}
}
