package buildindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/frontendintel/fie-mcp-server/internal/config"
)

func writeFixture(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func webpackFixture() map[string]interface{} {
	return map[string]interface{}{
		"version": "5.0.0",
		"assets": []map[string]interface{}{
			{"name": "main.js", "size": 600 * 1024, "chunks": []string{"0"}},
			{"name": "main.css", "size": 60 * 1024, "chunks": []string{"0"}},
		},
		"chunks": []map[string]interface{}{
			{
				"id": "0", "names": []string{"main"}, "files": []string{"main.js", "main.css"},
				"size": 660 * 1024, "entry": true, "initial": true,
				"modules": []map[string]interface{}{
					{"id": "1", "name": "./src/index.js", "size": 500},
				},
			},
		},
		"modules": []map[string]interface{}{
			{
				"id": "1", "name": "./src/index.js", "size": 500, "chunks": []string{"0"},
				"reasons": []map[string]interface{}{},
			},
			{
				"id": "2", "name": "lodash/map.js", "size": 2000, "chunks": []string{"0"},
				"reasons": []map[string]interface{}{
					{"moduleId": "1", "module": "./src/index.js"},
				},
			},
		},
	}
}

func TestLoadWebpackStats(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())

	idx := New(config.BuildIndexConfig{ProjectRoot: dir})
	m, err := idx.Manifest()
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if m.Type != "webpack" {
		t.Fatalf("expected webpack type, got %s", m.Type)
	}
	if len(m.Chunks) != 1 || len(m.Modules) != 2 {
		t.Fatalf("unexpected shape: %+v", m)
	}
}

func TestLoadIsMemoized(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())

	idx := New(config.BuildIndexConfig{ProjectRoot: dir})
	first, err := idx.Manifest()
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}

	// Remove the file; a second call must still succeed from the cached result.
	os.Remove(filepath.Join(dir, "stats.json"))
	second, err := idx.Manifest()
	if err != nil {
		t.Fatalf("expected cached manifest, got error: %v", err)
	}
	if len(first.Chunks) != len(second.Chunks) {
		t.Error("expected identical cached manifest")
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	idx := New(config.BuildIndexConfig{ProjectRoot: dir})
	if _, err := idx.Manifest(); err == nil {
		t.Error("expected error when neither stats.json nor manifest.json exist")
	}
}

func TestFindModuleFuzzyMatch(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())
	idx := New(config.BuildIndexConfig{ProjectRoot: dir})

	match, ok, err := idx.FindModule("lodash")
	if err != nil {
		t.Fatalf("FindModule: %v", err)
	}
	if !ok {
		t.Fatal("expected a match for lodash")
	}
	if match.Module.Name != "lodash/map.js" {
		t.Errorf("expected lodash/map.js, got %s", match.Module.Name)
	}
	if len(match.Module.Dependents) != 1 || match.Module.Dependents[0] != "1" {
		t.Errorf("expected module 1 as a dependent, got %v", match.Module.Dependents)
	}
}

func TestFindModuleNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())
	idx := New(config.BuildIndexConfig{ProjectRoot: dir})

	if _, ok, _ := idx.FindModule("nonexistent-package"); ok {
		t.Error("expected no match")
	}
}

func TestAnalyzeSizeRecommendations(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())
	idx := New(config.BuildIndexConfig{ProjectRoot: dir})

	analysis, err := idx.AnalyzeSize(100)
	if err != nil {
		t.Fatalf("AnalyzeSize: %v", err)
	}
	if analysis.TotalsByType["js"] != 600*1024 {
		t.Errorf("expected 600KiB js total, got %d", analysis.TotalsByType["js"])
	}
	if analysis.TotalsByType["css"] != 60*1024 {
		t.Errorf("expected 60KiB css total, got %d", analysis.TotalsByType["css"])
	}

	var hasSplit, hasLazy, hasCSS bool
	for _, r := range analysis.Recommendations {
		switch r.Rule {
		case "js-total-size":
			hasSplit = true
		case "initial-chunk-size":
			hasLazy = true
		case "css-size":
			hasCSS = true
		}
	}
	if !hasSplit {
		t.Error("expected js-total-size recommendation (600 KiB > 500 KiB)")
	}
	if !hasLazy {
		t.Error("expected initial-chunk-size recommendation (660 KiB initial chunk)")
	}
	if !hasCSS {
		t.Error("expected css-size recommendation (60 KiB > 50 KiB)")
	}
}

func TestDependenciesSingleModule(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())
	idx := New(config.BuildIndexConfig{ProjectRoot: dir})

	views, err := idx.Dependencies("1")
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if len(views) != 1 || len(views[0].Dependencies) != 1 || views[0].Dependencies[0] != "2" {
		t.Fatalf("unexpected dependency view: %+v", views)
	}
}

func TestDependenciesAllModules(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "stats.json", webpackFixture())
	idx := New(config.BuildIndexConfig{ProjectRoot: dir})

	views, err := idx.Dependencies("")
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 module views, got %d", len(views))
	}
}

func TestViteManifestLoads(t *testing.T) {
	dir := t.TempDir()
	viteManifest := map[string]interface{}{
		"src/main.js": map[string]interface{}{
			"file":    "assets/main.abc123.js",
			"src":     "src/main.js",
			"isEntry": true,
			"imports": []string{"src/vendor.js"},
			"css":     []string{"assets/main.def456.css"},
		},
		"src/vendor.js": map[string]interface{}{
			"file": "assets/vendor.ghi789.js",
			"src":  "src/vendor.js",
		},
	}
	writeFixture(t, dir, "manifest.json", viteManifest)

	idx := New(config.BuildIndexConfig{ProjectRoot: dir, PreferredType: "vite"})
	m, err := idx.Manifest()
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if m.Type != "vite" {
		t.Fatalf("expected vite type, got %s", m.Type)
	}
	if len(m.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(m.Modules))
	}
}


