package buildindex

import "encoding/json"

// flexID decodes a webpack module/chunk id that may be emitted as either a
// JSON number (the default, numeric module IDs) or a JSON string (named or
// deterministic module ID strategies).
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	*f = flexID(string(data))
	return nil
}

func (f flexID) String() string { return string(f) }

// webpackStats is the subset of webpack's stats.json this index consumes.
type webpackStats struct {
	Version string `json:"version"`
	Assets  []struct {
		Name   string   `json:"name"`
		Size   int64    `json:"size"`
		Chunks []string `json:"chunks"`
	} `json:"assets"`
	Chunks []struct {
		ID      flexID   `json:"id"`
		Names   []string `json:"names"`
		Files   []string `json:"files"`
		Size    int64    `json:"size"`
		Entry   bool     `json:"entry"`
		Initial bool     `json:"initial"`
		Modules []struct {
			ID     flexID `json:"id"`
			Name   string `json:"name"`
			Size   int64  `json:"size"`
			Source string `json:"source"`
		} `json:"modules"`
	} `json:"chunks"`
	Modules []struct {
		ID      flexID   `json:"id"`
		Name    string   `json:"name"`
		Size    int64    `json:"size"`
		Chunks  []string `json:"chunks"`
		Source  string   `json:"source"`
		Reasons []struct {
			ModuleID   flexID `json:"moduleId"`
			ModuleName string `json:"module"`
		} `json:"reasons"`
	} `json:"modules"`
}

func normalizeWebpack(raw []byte) (Manifest, error) {
	var stats webpackStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return Manifest{}, err
	}

	m := Manifest{Type: "webpack", Version: stats.Version}

	for _, a := range stats.Assets {
		m.Assets = append(m.Assets, Asset{Name: a.Name, Size: a.Size})
	}

	for _, c := range stats.Chunks {
		chunk := Chunk{
			ID:      c.ID.String(),
			Files:   c.Files,
			Size:    c.Size,
			Entry:   c.Entry,
			Initial: c.Initial,
		}
		for _, mod := range c.Modules {
			chunk.Modules = append(chunk.Modules, mod.ID.String())
		}
		m.Chunks = append(m.Chunks, chunk)
	}

	// stats.json's per-module "reasons" list the modules that import it
	// (its dependents); invert that to recover forward dependency edges.
	dependents := make(map[string][]string)
	dependencies := make(map[string][]string)
	for _, mod := range stats.Modules {
		for _, reason := range mod.Reasons {
			importer := reason.ModuleID.String()
			if importer == "" {
				continue
			}
			dependents[mod.ID.String()] = append(dependents[mod.ID.String()], importer)
			dependencies[importer] = append(dependencies[importer], mod.ID.String())
		}
	}

	for _, mod := range stats.Modules {
		m.Modules = append(m.Modules, Module{
			ID:           mod.ID.String(),
			Name:         mod.Name,
			Size:         mod.Size,
			Chunks:       mod.Chunks,
			Dependencies: dependencies[mod.ID.String()],
			Dependents:   dependents[mod.ID.String()],
			Source:       mod.Source,
		})
	}

	return m, nil
}
