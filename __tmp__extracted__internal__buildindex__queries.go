package buildindex

import "strings"

// Chunks returns the chunk list with files, modules, sizes, and
// entry/initial flags.
func (idx *Index) Chunks() ([]Chunk, error) {
	m, err := idx.Manifest()
	if err != nil {
		return nil, err
	}
	return m.Chunks, nil
}

// FindModule performs a case-insensitive substring match against module
// names, respecting scoped package names (e.g. "@scope/pkg"), and returns
// the best (shortest-name, i.e. tightest) candidate.
func (idx *Index) FindModule(name string) (ModuleMatch, bool, error) {
	m, err := idx.Manifest()
	if err != nil {
		return ModuleMatch{}, false, err
	}

	needle := strings.ToLower(name)
	var best *Module
	for i := range m.Modules {
		mod := &m.Modules[i]
		if !strings.Contains(strings.ToLower(mod.Name), needle) {
			continue
		}
		if best == nil || len(mod.Name) < len(best.Name) {
			best = mod
		}
	}
	if best == nil {
		return ModuleMatch{}, false, nil
	}

	chunksByID := make(map[string]Chunk, len(m.Chunks))
	for _, c := range m.Chunks {
		chunksByID[c.ID] = c
	}

	var chunks []Chunk
	for _, cid := range best.Chunks {
		if c, ok := chunksByID[cid]; ok {
			chunks = append(chunks, c)
		}
	}
	// Vite modules track chunk membership the other direction (chunk ->
	// module), so fall back to scanning chunks for membership.
	if chunks == nil {
		for _, c := range m.Chunks {
			for _, modID := range c.Modules {
				if modID == best.ID {
					chunks = append(chunks, c)
					break
				}
			}
		}
	}

	return ModuleMatch{Module: *best, Chunks: chunks, Dependencies: best.Dependencies}, true, nil
}

// Dependencies returns a single module's dependency frontier plus
// dependents, or every module's dependencies when module is empty.
func (idx *Index) Dependencies(module string) ([]DependencyView, error) {
	m, err := idx.Manifest()
	if err != nil {
		return nil, err
	}

	if module == "" {
		out := make([]DependencyView, 0, len(m.Modules))
		for _, mod := range m.Modules {
			out = append(out, DependencyView{Module: mod.ID, Dependencies: mod.Dependencies, Dependents: mod.Dependents})
		}
		return out, nil
	}

	for _, mod := range m.Modules {
		if mod.ID == module || mod.Name == module {
			return []DependencyView{{Module: mod.ID, Dependencies: mod.Dependencies, Dependents: mod.Dependents}}, nil
		}
	}
	return nil, nil
}


