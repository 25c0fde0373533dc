package persistence

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/oklog/ulid/v2"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/economy"
	"github.com/talgya/aethersync/internal/sim"
)

const snapshotExt = ".json.zst"

// Snapshot is a portable, self-contained world image. Unlike the
// database, a snapshot is a single compressed file that can be copied
// between machines.
type Snapshot struct {
	TakenAt     time.Time                `json:"taken_at"`
	Tick        uint64                   `json:"tick"`
	Agents      []*agents.Agent          `json:"agents"`
	Territories []sim.Territory          `json:"territories"`
	Prices      map[economy.ItemKind]int `json:"prices"`
	Stats       sim.Stats                `json:"stats"`
}

// TakeSnapshot captures the world state.
func TakeSnapshot(w *sim.World) Snapshot {
	return Snapshot{
		TakenAt:     time.Now().UTC(),
		Tick:        w.CurrentTick(),
		Agents:      w.Agents(),
		Territories: w.Territories(),
		Prices:      w.Market().Prices,
		Stats:       w.Stats(),
	}
}

// Apply restores the snapshot into a freshly built world.
func (s Snapshot) Apply(w *sim.World) {
	for _, a := range s.Agents {
		w.RestoreAgent(a)
	}
	for _, t := range s.Territories {
		w.RestoreTerritory(t)
	}
	for kind, price := range s.Prices {
		w.Market().Prices[kind] = price
	}
	w.RestoreTick(s.Tick)
}

// WriteSnapshot compresses the snapshot into dir and returns the file
// path. Files are ULID-named so lexical order is creation order.
func WriteSnapshot(dir string, s Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}

	id := ulid.MustNew(ulid.Timestamp(s.TakenAt), rand.New(rand.NewSource(s.TakenAt.UnixNano())))
	path := filepath.Join(dir, "snap-"+id.String()+snapshotExt)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(s); err != nil {
		zw.Close()
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flushing snapshot: %w", err)
	}
	return path, nil
}

// ReadSnapshot decompresses and decodes a snapshot file.
func ReadSnapshot(path string) (Snapshot, error) {
	var s Snapshot

	f, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return s, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return s, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

// ListSnapshots returns snapshot paths in dir, oldest first.
func ListSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), snapshotExt) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
