package buildindex

import "encoding/json"

// viteManifestEntry is one entry of vite's manifest.json, keyed by source path.
type viteManifestEntry struct {
	File    string   `json:"file"`
	Src     string   `json:"src"`
	IsEntry bool     `json:"isEntry"`
	Imports []string `json:"imports"`
	CSS     []string `json:"css"`
	Assets  []string `json:"assets"`
}

func normalizeVite(raw []byte) (Manifest, error) {
	var entries map[string]viteManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Manifest{}, err
	}

	m := Manifest{Type: "vite"}
	dependents := make(map[string][]string)
	for key, e := range entries {
		for _, imp := range e.Imports {
			dependents[imp] = append(dependents[imp], key)
		}
	}

	for key, e := range entries {
		mod := Module{
			ID:           key,
			Name:         e.Src,
			Dependencies: e.Imports,
			Dependents:   dependents[key],
		}
		if mod.Name == "" {
			mod.Name = key
		}
		m.Modules = append(m.Modules, mod)

		files := append([]string{e.File}, e.CSS...)
		files = append(files, e.Assets...)
		chunk := Chunk{
			ID:      key,
			Files:   files,
			Modules: []string{key},
			Entry:   e.IsEntry,
			Initial: e.IsEntry,
		}
		m.Chunks = append(m.Chunks, chunk)
		if e.File != "" {
			m.Assets = append(m.Assets, Asset{Name: e.File})
		}
		for _, css := range e.CSS {
			m.Assets = append(m.Assets, Asset{Name: css})
		}
	}

	return m, nil
}


