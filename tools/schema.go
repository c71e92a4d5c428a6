// Package tools provides a small set of reference Tool implementations —
// weather, echo, and a calculator — used to exercise the agent loop in
// tests and by cmd/agentdemo. Concrete tool integrations (filesystem,
// shell, external APIs) are deliberately out of scope; these exist to
// give the loop something real to call.
package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// reflectParameters derives a tool's JSON Schema parameters map from a Go
// struct's field tags, so each tool declares its arguments once as a
// typed struct instead of hand-writing a schema map that can drift out of
// sync with what Execute actually reads out of args.
func reflectParameters(v any) map[string]any {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)
	b, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	// The reflector emits draft metadata ($schema, $id) the provider
	// adapters don't expect in a tool's parameter schema.
	delete(m, "$schema")
	delete(m, "$id")
	return m
}
