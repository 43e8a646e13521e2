package mcp

import (
	"fmt"

	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
)

// requireString extracts a required, non-empty string argument, failing
// with InvalidArgument before any session work begins (spec.md §4.7).
func requireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", dispatcher.NewFailure(dispatcher.InvalidArgument, fmt.Sprintf("missing required argument %q", key), "")
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", dispatcher.NewFailure(dispatcher.InvalidArgument, fmt.Sprintf("argument %q must be a non-empty string", key), "")
	}
	return s, nil
}

func optString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// optInt reads an integer argument. JSON-decoded numeric args arrive as
// float64, matching encoding/json's default number representation.
func optInt(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

func optBool(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
