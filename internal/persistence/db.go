// Package persistence provides SQLite-based world state storage and
// compressed snapshot export.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/chat"
	"github.com/talgya/aethersync/internal/economy"
	"github.com/talgya/aethersync/internal/sim"
	"github.com/talgya/aethersync/internal/world"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		name TEXT PRIMARY KEY,
		personality TEXT NOT NULL,
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		wallet INTEGER NOT NULL,
		level INTEGER NOT NULL,
		xp INTEGER NOT NULL,
		reputation INTEGER NOT NULL,
		actions INTEGER NOT NULL,
		inventory_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS territories (
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		value INTEGER NOT NULL,
		tax_rate REAL NOT NULL,
		PRIMARY KEY (pos_x, pos_y, owner)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		agent TEXT NOT NULL,
		text TEXT NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_stats (
		run_id TEXT PRIMARY KEY,
		ticks INTEGER NOT NULL,
		searches INTEGER NOT NULL,
		trades INTEGER NOT NULL,
		battles INTEGER NOT NULL,
		land_claims INTEGER NOT NULL,
		level_ups INTEGER NOT NULL,
		moves_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveAgents writes all agents to the database (full replace).
func (db *DB) SaveAgents(agentList []*agents.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(name, personality, pos_x, pos_y, wallet, level, xp, reputation,
		 actions, inventory_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range agentList {
		invJSON, _ := json.Marshal(a.Inventory)
		_, err := stmt.Exec(
			a.Name, a.Personality.String(), a.Position.X, a.Position.Y,
			a.Wallet, a.Level, a.XP, a.Reputation, a.Actions,
			string(invJSON),
		)
		if err != nil {
			return fmt.Errorf("insert agent %s: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

// LoadAgents reads all agents back in stored order.
func (db *DB) LoadAgents() ([]*agents.Agent, error) {
	type row struct {
		Name          string `db:"name"`
		Personality   string `db:"personality"`
		PosX          int    `db:"pos_x"`
		PosY          int    `db:"pos_y"`
		Wallet        int    `db:"wallet"`
		Level         int    `db:"level"`
		XP            int    `db:"xp"`
		Reputation    int    `db:"reputation"`
		Actions       int    `db:"actions"`
		InventoryJSON string `db:"inventory_json"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM agents ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("select agents: %w", err)
	}

	out := make([]*agents.Agent, 0, len(rows))
	for _, r := range rows {
		p, ok := agents.ParsePersonality(r.Personality)
		if !ok {
			p = agents.PersonalityExplorer
		}
		var inv []economy.Item
		if err := json.Unmarshal([]byte(r.InventoryJSON), &inv); err != nil {
			return nil, fmt.Errorf("agent %s inventory: %w", r.Name, err)
		}
		out = append(out, &agents.Agent{
			Name:        r.Name,
			Personality: p,
			Position:    world.Coord{X: r.PosX, Y: r.PosY},
			Wallet:      r.Wallet,
			Level:       r.Level,
			XP:          r.XP,
			Reputation:  r.Reputation,
			Actions:     r.Actions,
			Inventory:   inv,
		})
	}
	return out, nil
}

// SaveTerritories writes all territories (full replace).
func (db *DB) SaveTerritories(terrs []sim.Territory) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM territories"); err != nil {
		return err
	}

	for _, t := range terrs {
		_, err := tx.Exec(`INSERT INTO territories
			(pos_x, pos_y, owner, name, value, tax_rate)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.Position.X, t.Position.Y, t.Owner, t.Name, t.Value, t.TaxRate,
		)
		if err != nil {
			return fmt.Errorf("insert territory at (%d,%d): %w",
				t.Position.X, t.Position.Y, err)
		}
	}

	return tx.Commit()
}

// LoadTerritories reads all territories back in claim order.
func (db *DB) LoadTerritories() ([]sim.Territory, error) {
	type row struct {
		PosX    int     `db:"pos_x"`
		PosY    int     `db:"pos_y"`
		Owner   string  `db:"owner"`
		Name    string  `db:"name"`
		Value   int     `db:"value"`
		TaxRate float64 `db:"tax_rate"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM territories ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("select territories: %w", err)
	}

	out := make([]sim.Territory, 0, len(rows))
	for _, r := range rows {
		out = append(out, sim.Territory{
			Position: world.Coord{X: r.PosX, Y: r.PosY},
			Owner:    r.Owner,
			Name:     r.Name,
			Value:    r.Value,
			TaxRate:  r.TaxRate,
		})
	}
	return out, nil
}

// SaveEvents appends chat entries to the event journal.
func (db *DB) SaveEvents(entries []chat.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(
			"INSERT INTO events (tick, agent, text, kind) VALUES (?, ?, ?, ?)",
			e.Tick, e.Agent, e.Text, e.Kind,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N journal entries.
func (db *DB) RecentEvents(limit int) ([]chat.Entry, error) {
	type row struct {
		Tick  uint64 `db:"tick"`
		Agent string `db:"agent"`
		Text  string `db:"text"`
		Kind  string `db:"kind"`
	}
	var rows []row
	err := db.conn.Select(&rows,
		"SELECT tick, agent, text, kind FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]chat.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, chat.Entry{Tick: r.Tick, Agent: r.Agent, Text: r.Text, Kind: chat.Kind(r.Kind)})
	}
	return out, nil
}

// SaveStats upserts the counters for one run.
func (db *DB) SaveStats(runID string, s sim.Stats) error {
	movesJSON, _ := json.Marshal(s.Moves)
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO run_stats
		(run_id, ticks, searches, trades, battles, land_claims, level_ups, moves_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, s.Ticks, s.Searches, s.Trades, s.Battles,
		s.LandClaims, s.LevelUps, string(movesJSON),
	)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a previous run left agents behind.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM agents"); err != nil {
		return false
	}
	return count > 0
}

// SaveWorldState performs a full save of the world.
func (db *DB) SaveWorldState(w *sim.World, runID string) error {
	agentList := w.Agents()
	slog.Info("saving world state",
		"agents", len(agentList), "territories", len(w.Territories()), "tick", w.CurrentTick())

	if err := db.SaveAgents(agentList); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	if err := db.SaveTerritories(w.Territories()); err != nil {
		return fmt.Errorf("save territories: %w", err)
	}
	if err := db.SaveEvents(w.Chat().DrainUnsaved()); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveStats(runID, w.Stats()); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if err := db.SaveMeta("last_tick", strconv.FormatUint(w.CurrentTick(), 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// LoadWorldState restores agents, territories, and the tick counter
// into a freshly built world.
func (db *DB) LoadWorldState(w *sim.World) error {
	agentList, err := db.LoadAgents()
	if err != nil {
		return fmt.Errorf("load agents: %w", err)
	}
	for _, a := range agentList {
		w.RestoreAgent(a)
	}

	terrs, err := db.LoadTerritories()
	if err != nil {
		return fmt.Errorf("load territories: %w", err)
	}
	for _, t := range terrs {
		w.RestoreTerritory(t)
	}

	if tickStr, err := db.GetMeta("last_tick"); err == nil {
		if tick, err := strconv.ParseUint(tickStr, 10, 64); err == nil {
			w.RestoreTick(tick)
		}
	}

	slog.Info("world state restored",
		"agents", len(agentList), "territories", len(terrs), "tick", w.CurrentTick())
	return nil
}
