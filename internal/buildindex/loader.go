package buildindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/frontendintel/fie-mcp-server/internal/config"
)

// Index loads a project's build artifacts once per process, matching the
// teacher's once-per-process mangle.Engine.LoadSchema idiom applied here to
// bundler output instead of a Mangle schema.
type Index struct {
	cfg config.BuildIndexConfig

	once     sync.Once
	loadErr  error
	manifest Manifest
}

// New creates an index bound to the configured project root. Loading is
// deferred to the first query (sync.Once-guarded).
func New(cfg config.BuildIndexConfig) *Index {
	return &Index{cfg: cfg}
}

// Manifest returns the full normalized view, loading on first use.
func (idx *Index) Manifest() (Manifest, error) {
	idx.once.Do(idx.load)
	return idx.manifest, idx.loadErr
}

func (idx *Index) load() {
	root := idx.cfg.ProjectRoot
	if root == "" {
		root = os.Getenv("PROJECT_ROOT")
	}
	if root == "" {
		idx.loadErr = fmt.Errorf("no project root configured")
		return
	}

	preferred := strings.ToLower(idx.cfg.PreferredType)
	if envType := strings.ToLower(os.Getenv("BUILD_INDEX_TYPE")); envType != "" {
		preferred = envType
	}

	statsPath := filepath.Join(root, "stats.json")
	manifestPath := filepath.Join(root, "manifest.json")
	_, hasStats := statOK(statsPath)
	_, hasManifest := statOK(manifestPath)

	var path, kind string
	switch {
	case preferred == "webpack" && hasStats:
		path, kind = statsPath, "webpack"
	case preferred == "vite" && hasManifest:
		path, kind = manifestPath, "vite"
	case hasStats:
		path, kind = statsPath, "webpack"
	case hasManifest:
		path, kind = manifestPath, "vite"
	default:
		idx.loadErr = fmt.Errorf("no stats.json or manifest.json found under %s", root)
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		idx.loadErr = fmt.Errorf("read %s: %w", path, err)
		return
	}

	var manifest Manifest
	if kind == "webpack" {
		manifest, err = normalizeWebpack(raw)
	} else {
		manifest, err = normalizeVite(raw)
	}
	if err != nil {
		idx.loadErr = fmt.Errorf("parse %s: %w", path, err)
		return
	}

	fillMissingSizes(&manifest, root)
	idx.manifest = manifest
}

func statOK(path string) (os.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return info, true
}

// fillMissingSizes stats output files on disk for formats (vite) that don't
// embed asset sizes in the manifest itself.
func fillMissingSizes(m *Manifest, root string) {
	sizeByName := make(map[string]int64, len(m.Assets))
	for i, a := range m.Assets {
		if a.Size > 0 {
			sizeByName[a.Name] = a.Size
			continue
		}
		if info, ok := statOK(filepath.Join(root, a.Name)); ok {
			m.Assets[i].Size = info.Size()
			sizeByName[a.Name] = info.Size()
		}
	}

	for i, c := range m.Chunks {
		if c.Size > 0 {
			continue
		}
		var total int64
		for _, f := range c.Files {
			total += sizeByName[f]
		}
		m.Chunks[i].Size = total
	}
}
