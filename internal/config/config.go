// Package config loads the run configuration from YAML with sane
// defaults and a few environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Sim     SimConfig     `yaml:"sim"`
	Emu     EmuConfig     `yaml:"emulator"`
	Storage StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	AdminToken string `yaml:"admin_token"`

	// ScreenshotPath is the image file served at the screenshot
	// endpoints; an external capture process overwrites it in place.
	ScreenshotPath string `yaml:"screenshot_path"`
}

type EngineConfig struct {
	IntervalMS    int     `yaml:"interval_ms"`
	Speed         float64 `yaml:"speed"`
	StatusTicks   uint64  `yaml:"status_ticks"`
	AutosaveTicks uint64  `yaml:"autosave_ticks"`
}

// RectConfig is an inclusive coordinate rectangle.
type RectConfig struct {
	MinX int `yaml:"min_x"`
	MinY int `yaml:"min_y"`
	MaxX int `yaml:"max_x"`
	MaxY int `yaml:"max_y"`
}

type SimConfig struct {
	Seed         int64       `yaml:"seed"`
	Bounds       RectConfig  `yaml:"bounds"`
	SpawnBox     RectConfig  `yaml:"spawn_box"`
	LandPrice    int         `yaml:"land_price"`
	TaxRate      float64     `yaml:"tax_rate"`
	LevelBonus   int         `yaml:"level_bonus"`
	ChatCapacity int         `yaml:"chat_capacity"`
	EventChance  float64     `yaml:"event_chance"`
	MarketPeriod uint64      `yaml:"market_period"`
	Agents       []AgentSpec `yaml:"agents,omitempty"`
}

type AgentSpec struct {
	Name        string `yaml:"name"`
	Personality string `yaml:"personality"`
}

type EmuConfig struct {
	Enabled bool   `yaml:"enabled"`
	SaveDir string `yaml:"save_dir"`
	SpawnX  int    `yaml:"spawn_x"`
	SpawnY  int    `yaml:"spawn_y"`
	SpawnM  int    `yaml:"spawn_map"`
}

type StorageConfig struct {
	DBPath      string `yaml:"db_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
}

// Load reads the config at path, or pure defaults when path is empty.
// Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ScreenshotPath: "data/screen_live.jpg",
		},
		Engine: EngineConfig{
			IntervalMS:    1000,
			Speed:         1.0,
			StatusTicks:   5,
			AutosaveTicks: 60,
		},
		Sim: SimConfig{
			Seed:         42,
			Bounds:       RectConfig{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11},
			SpawnBox:     RectConfig{MinX: 4, MinY: 3, MaxX: 8, MaxY: 7},
			LandPrice:    150,
			TaxRate:      0.05,
			LevelBonus:   50,
			ChatCapacity: 30,
			EventChance:  0.12,
			MarketPeriod: 10,
			Agents: []AgentSpec{
				{Name: "Koolie", Personality: "explorer"},
				{Name: "Scout-7", Personality: "gatherer"},
				{Name: "HelpBot", Personality: "social"},
				{Name: "Merchant-X", Personality: "merchant"},
				{Name: "Warrior-Z", Personality: "fighter"},
			},
		},
		Emu: EmuConfig{
			SaveDir: "data/saves",
			SpawnX:  5,
			SpawnY:  5,
			SpawnM:  1,
		},
		Storage: StorageConfig{
			DBPath:      "data/aethersync.db",
			SnapshotDir: "data/snapshots",
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AETHER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("AETHER_ADMIN_TOKEN"); v != "" {
		c.Server.AdminToken = v
	}
	if v := os.Getenv("AETHER_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("AETHER_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Sim.Seed = seed
		}
	}
}

// Validate rejects configurations the run loop cannot honor.
func (c *Config) Validate() error {
	if c.Engine.IntervalMS <= 0 {
		return fmt.Errorf("engine.interval_ms must be positive, got %d", c.Engine.IntervalMS)
	}
	if c.Engine.Speed < 0 {
		return fmt.Errorf("engine.speed must be non-negative, got %g", c.Engine.Speed)
	}
	if c.Sim.Bounds.MinX > c.Sim.Bounds.MaxX || c.Sim.Bounds.MinY > c.Sim.Bounds.MaxY {
		return fmt.Errorf("sim.bounds is inverted: %+v", c.Sim.Bounds)
	}
	if c.Sim.SpawnBox.MinX > c.Sim.SpawnBox.MaxX || c.Sim.SpawnBox.MinY > c.Sim.SpawnBox.MaxY {
		return fmt.Errorf("sim.spawn_box is inverted: %+v", c.Sim.SpawnBox)
	}
	if c.Sim.TaxRate < 0 || c.Sim.TaxRate > 1 {
		return fmt.Errorf("sim.tax_rate must be in [0,1], got %g", c.Sim.TaxRate)
	}
	if c.Sim.EventChance < 0 || c.Sim.EventChance > 1 {
		return fmt.Errorf("sim.event_chance must be in [0,1], got %g", c.Sim.EventChance)
	}
	if c.Sim.ChatCapacity <= 0 {
		return fmt.Errorf("sim.chat_capacity must be positive, got %d", c.Sim.ChatCapacity)
	}
	for _, a := range c.Sim.Agents {
		if a.Name == "" {
			return fmt.Errorf("sim.agents entries need a name")
		}
	}
	return nil
}

// TickInterval converts the engine interval to a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Engine.IntervalMS) * time.Millisecond
}
