package rpc

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// paramSchemas maps methods with structured params to their embedded
// schema file. Methods absent here accept empty or no params.
var paramSchemas = map[string]string{
	"register_agent": "schemas/register_agent.schema.json",
	"move":           "schemas/move.schema.json",
	"save":           "schemas/save.schema.json",
	"load":           "schemas/save.schema.json",
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	compiled := make(map[string]*jsonschema.Schema, len(paramSchemas))
	c := jsonschema.NewCompiler()

	for method, path := range paramSchemas {
		data, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", path, err)
		}
		if err := c.AddResource(path, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", path, err)
		}
		s, err := c.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", path, err)
		}
		compiled[method] = s
	}
	return compiled, nil
}

// validateParams checks raw params against the method schema. A nil or
// empty params payload validates as an empty object.
func (d *Dispatcher) validateParams(method string, raw json.RawMessage) *Error {
	s, ok := d.schemas[method]
	if !ok {
		return nil
	}
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errorf(ErrBadRequest, "params are not valid JSON: %v", err)
	}
	if err := s.Validate(v); err != nil {
		return errorf(ErrBadRequest, "invalid params for %s: %v", method, err)
	}
	return nil
}
