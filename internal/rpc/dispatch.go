// Package rpc implements the line-oriented JSON request protocol the
// bridge speaks with its clients. Each request names a method and
// carries schema-validated params; each response holds either a result
// or a coded error.
package rpc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/gb"
	"github.com/talgya/aethersync/internal/sim"
	"github.com/talgya/aethersync/internal/world"
)

const ProtocolVersion = "0.3.0"

// Request is one inbound call.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response carries exactly one of Result or Error.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

var methods = []string{
	"initialize", "register_agent", "move", "observe",
	"save", "load", "list_saves",
}

// Dispatcher routes requests to the world and, when one is attached,
// the emulator bridge.
type Dispatcher struct {
	world   *sim.World
	bridge  *gb.Bridge // nil in sim-only runs
	saveDir string
	schemas map[string]*jsonschema.Schema
}

// NewDispatcher builds a dispatcher. bridge may be nil; save/load then
// report an internal error instead of touching emulator state.
func NewDispatcher(w *sim.World, bridge *gb.Bridge, saveDir string) (*Dispatcher, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, fmt.Errorf("compiling param schemas: %w", err)
	}
	return &Dispatcher{
		world:   w,
		bridge:  bridge,
		saveDir: saveDir,
		schemas: schemas,
	}, nil
}

// Handle routes one request. It never panics outward; unexpected
// failures come back as E_INTERNAL.
func (d *Dispatcher) Handle(req Request) Response {
	if req.Method == "" {
		return fail(errorf(ErrBadRequest, "missing method"))
	}
	if rpcErr := d.validateParams(req.Method, req.Params); rpcErr != nil {
		return fail(rpcErr)
	}

	switch req.Method {
	case "initialize":
		return d.initialize()
	case "register_agent":
		return d.registerAgent(req.Params)
	case "move":
		return d.move(req.Params)
	case "observe":
		return d.observe()
	case "save":
		return d.save(req.Params)
	case "load":
		return d.load(req.Params)
	case "list_saves":
		return d.listSaves()
	default:
		return fail(errorf(ErrUnknownMethod, "unknown method: %s", req.Method))
	}
}

// HandleRaw decodes a JSON request line and returns the encoded
// response. Malformed input yields an E_BAD_REQUEST response, never an
// error, so the caller can always write something back.
func (d *Dispatcher) HandleRaw(line []byte) []byte {
	var req Request
	resp := Response{}
	if err := json.Unmarshal(line, &req); err != nil {
		resp = fail(errorf(ErrBadRequest, "invalid request: %v", err))
	} else {
		resp = d.Handle(req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		slog.Error("encoding rpc response", "error", err)
		return []byte(`{"error":{"code":"E_INTERNAL","message":"response encoding failed"}}`)
	}
	return out
}

func ok(result any) Response { return Response{Result: result} }
func fail(e *Error) Response { return Response{Error: e} }

func (d *Dispatcher) initialize() Response {
	return ok(map[string]any{
		"name":             "aether-sync",
		"protocol_version": ProtocolVersion,
		"methods":          methods,
		"emulator":         d.bridge != nil,
	})
}

type registerParams struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

func (d *Dispatcher) registerAgent(raw json.RawMessage) Response {
	var p registerParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fail(errorf(ErrBadRequest, "invalid params: %v", err))
	}

	personality := agents.PersonalityExplorer
	if p.Personality != "" {
		parsed, okP := agents.ParsePersonality(p.Personality)
		if !okP {
			return fail(errorf(ErrBadRequest, "unknown personality: %s", p.Personality))
		}
		personality = parsed
	}

	a := d.world.Register(p.Name, personality)
	return ok(agentSummary(a))
}

type moveParams struct {
	Direction string `json:"direction"`
	Agent     string `json:"agent"`
}

func (d *Dispatcher) move(raw json.RawMessage) Response {
	var p moveParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fail(errorf(ErrBadRequest, "invalid params: %v", err))
	}

	dir, okD := world.ParseDirection(p.Direction)
	if !okD {
		return fail(errorf(ErrUnknownDirection, "unknown direction: %s", p.Direction))
	}

	a, rpcErr := d.resolveAgent(p.Agent)
	if rpcErr != nil {
		return fail(rpcErr)
	}

	d.world.Apply(a, agents.Move{Dir: dir})

	result := map[string]any{
		"agent":     a.Name,
		"direction": dir.String(),
		"position":  a.Position,
	}
	if d.bridge != nil {
		pos, err := d.bridge.Move(dir)
		if err != nil {
			return fail(errorf(ErrInternal, "emulator move: %v", err))
		}
		result["hardware_position"] = pos
	}
	return ok(result)
}

// resolveAgent returns the named agent, or the first registered one
// when no name is given.
func (d *Dispatcher) resolveAgent(name string) (*agents.Agent, *Error) {
	if name != "" {
		a := d.world.Agent(name)
		if a == nil {
			return nil, errorf(ErrUnknownAgent, "unknown agent: %s", name)
		}
		return a, nil
	}
	all := d.world.Agents()
	if len(all) == 0 {
		return nil, errorf(ErrUnknownAgent, "no agent registered")
	}
	return all[0], nil
}

func (d *Dispatcher) observe() Response {
	all := d.world.Agents()
	summaries := make([]map[string]any, 0, len(all))
	for _, a := range all {
		summaries = append(summaries, agentSummary(a))
	}

	chatTail := d.world.Chat().Recent(10)
	lines := make([]string, 0, len(chatTail))
	for _, e := range chatTail {
		lines = append(lines, fmt.Sprintf("[%s] %s", e.Agent, e.Text))
	}

	prices := make(map[string]int, len(d.world.Market().Prices))
	for kind, price := range d.world.Market().Prices {
		prices[kind.String()] = price
	}

	result := map[string]any{
		"tick":        d.world.CurrentTick(),
		"agents":      summaries,
		"chat":        lines,
		"territories": len(d.world.Territories()),
		"market":      prices,
	}
	if d.bridge != nil {
		result["hardware_position"] = d.bridge.Position()
	}
	return ok(result)
}

type saveParams struct {
	Name string `json:"name"`
}

func (d *Dispatcher) save(raw json.RawMessage) Response {
	name, rpcErr := d.saveName(raw)
	if rpcErr != nil {
		return fail(rpcErr)
	}
	if d.bridge == nil {
		return fail(errorf(ErrInternal, "no emulator attached"))
	}
	path := filepath.Join(d.saveDir, name+".state")
	if err := d.bridge.SaveState(path); err != nil {
		return fail(errorf(ErrInternal, "saving state: %v", err))
	}
	slog.Info("emulator state saved", "name", name, "path", path)
	return ok(map[string]string{"saved": name, "path": path})
}

func (d *Dispatcher) load(raw json.RawMessage) Response {
	name, rpcErr := d.saveName(raw)
	if rpcErr != nil {
		return fail(rpcErr)
	}
	if d.bridge == nil {
		return fail(errorf(ErrInternal, "no emulator attached"))
	}
	path := filepath.Join(d.saveDir, name+".state")
	if _, err := os.Stat(path); err != nil {
		return fail(errorf(ErrSaveNotFound, "save %q not found", name))
	}
	if err := d.bridge.LoadState(path); err != nil {
		return fail(errorf(ErrInternal, "loading state: %v", err))
	}
	slog.Info("emulator state loaded", "name", name)
	return ok(map[string]any{
		"loaded":   name,
		"position": d.bridge.Position(),
	})
}

func (d *Dispatcher) saveName(raw json.RawMessage) (string, *Error) {
	var p saveParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", errorf(ErrBadRequest, "invalid params: %v", err)
		}
	}
	if p.Name == "" {
		p.Name = "quicksave"
	}
	return p.Name, nil
}

func (d *Dispatcher) listSaves() Response {
	entries, err := os.ReadDir(d.saveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return ok(map[string]any{"saves": []string{}})
		}
		return fail(errorf(ErrInternal, "reading save dir: %v", err))
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".state") {
			names = append(names, strings.TrimSuffix(e.Name(), ".state"))
		}
	}
	sort.Strings(names)
	return ok(map[string]any{"saves": names})
}

func agentSummary(a *agents.Agent) map[string]any {
	return map[string]any{
		"name":        a.Name,
		"personality": a.Personality.String(),
		"position":    a.Position,
		"wallet":      a.Wallet,
		"level":       a.Level,
		"xp":          a.XP,
		"items":       len(a.Inventory),
	}
}
