// Package component provides framework-aware introspection of the live
// page's component tree (the Component Introspector), generalized from the
// teacher's React-only Fiber walk into per-framework adapters.
package component

// Node is one entry of a component tree (spec.md §3's Component node).
// Lifetime is scoped to the call that produced it; nothing here is stored.
type Node struct {
	Name      string                 `json:"name"`
	Framework string                 `json:"framework"`
	Depth     int                    `json:"depth"`
	Props     map[string]interface{} `json:"props,omitempty"`
	State     interface{}            `json:"state,omitempty"`
	Hooks     interface{}            `json:"hooks,omitempty"`
	Contexts  interface{}            `json:"contexts,omitempty"`
	Children  []Node                 `json:"children,omitempty"`

	Selector   string  `json:"selector,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Visible    bool    `json:"visible,omitempty"`
}

// Unsupported is returned by props/state/hooks/context queries when no
// framework devtools hook is available, instead of inventing data
// (spec.md §4.5 degradation policy).
type Unsupported struct {
	Supported bool   `json:"supported"`
	Reason    string `json:"reason,omitempty"`
}

// RenderEvent is one observed render during a trackRenders window.
type RenderEvent struct {
	Timestamp float64  `json:"timestamp_ms"`
	Reasons   []string `json:"reasons,omitempty"`
}

// RenderTrace is the response shape for trackRenders.
type RenderTrace struct {
	Count      int           `json:"count"`
	Events     []RenderEvent `json:"events"`
	AverageMs  float64       `json:"average_ms"`
}

// SourceLocation is the response shape for getSource.
type SourceLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Found  bool   `json:"found"`
}

// Framework names this package detects, in priority order when more than
// one signature is present on the page.
const (
	React  = "react"
	Vue    = "vue"
	Angular = "angular"
	Svelte = "svelte"
	DOM    = "dom" // heuristic fallback, no framework hook found
)


