package dispatcher

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var schemaCache sync.Map

// CompileSchema compiles (and memoizes) a tool's JSON-schema input
// contract, matching the pack's compile-once-cache-by-source idiom
// (other_examples/manifests/haasonsaas-nexus's pluginsdk.compileSchema).
func CompileSchema(name string, schema map[string]interface{}) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	key := name + ":" + string(raw)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiled, err := jsonschema.CompileString(name, string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}

// ValidateArgs validates already-decoded args against schema, wrapping any
// mismatch as an InvalidArgument Failure raised before any session work
// begins (spec.md §4.7).
func ValidateArgs(schema *jsonschema.Schema, args map[string]interface{}) error {
	if schema == nil {
		return nil
	}
	if err := schema.Validate(args); err != nil {
		return NewFailure(InvalidArgument, err.Error(), "check the tool's input schema for required fields and types")
	}
	return nil
}
