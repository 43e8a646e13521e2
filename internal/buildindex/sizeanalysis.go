package buildindex

import (
	"sort"
	"strings"
)

const (
	jsSplitThresholdBytes   = 500 * 1024
	initialChunkThreshold   = 200 * 1024
	cssPurgeThresholdBytes  = 50 * 1024
)

// AnalyzeSize totals asset sizes by type, lists assets exceeding
// thresholdKB, and runs the deterministic recommendation rules
// (spec.md §4.4).
func (idx *Index) AnalyzeSize(thresholdKB int) (SizeAnalysis, error) {
	m, err := idx.Manifest()
	if err != nil {
		return SizeAnalysis{}, err
	}

	thresholdBytes := int64(thresholdKB) * 1024
	totalSize := int64(0)
	for _, a := range m.Assets {
		totalSize += a.Size
	}

	analysis := SizeAnalysis{TotalsByType: map[string]int64{"js": 0, "css": 0, "other": 0}}
	for _, a := range m.Assets {
		analysis.TotalsByType[assetType(a.Name)] += a.Size

		if thresholdBytes > 0 && a.Size > thresholdBytes {
			pct := 0.0
			if totalSize > 0 {
				pct = float64(a.Size) / float64(totalSize) * 100
			}
			analysis.OverThreshold = append(analysis.OverThreshold, AssetOverThreshold{
				Name: a.Name, Size: a.Size, Percent: pct,
			})
		}
	}

	analysis.Recommendations = idx.recommendations(m, analysis.TotalsByType)
	return analysis, nil
}

// recommendations applies spec.md §4.4's four deterministic rules in a
// stable, rule-id order.
func (idx *Index) recommendations(m Manifest, totals map[string]int64) []Recommendation {
	var out []Recommendation

	if totals["js"] > jsSplitThresholdBytes {
		out = append(out, Recommendation{
			Rule:    "js-total-size",
			Message: "Total JS exceeds 500 KiB; consider code splitting.",
		})
	}

	for _, c := range m.Chunks {
		if c.Initial && c.Size > initialChunkThreshold {
			out = append(out, Recommendation{
				Rule:    "initial-chunk-size",
				Message: "An initial chunk exceeds 200 KiB; consider route-level lazy loading.",
			})
			break
		}
	}

	moduleChunkCount := make(map[string]int)
	for _, mod := range m.Modules {
		moduleChunkCount[mod.Name] += len(mod.Chunks)
	}
	duplicated := make([]string, 0, len(moduleChunkCount))
	for name, count := range moduleChunkCount {
		if count >= 2 {
			duplicated = append(duplicated, name)
		}
	}
	sort.Strings(duplicated)
	for _, name := range duplicated {
		out = append(out, Recommendation{
			Rule:    "module-duplication",
			Message: "Module \"" + name + "\" appears in multiple chunks; consider deduplication.",
		})
	}

	if totals["css"] > cssPurgeThresholdBytes {
		out = append(out, Recommendation{
			Rule:    "css-size",
			Message: "CSS exceeds 50 KiB; consider purging unused CSS.",
		})
	}

	return out
}

func assetType(name string) string {
	switch {
	case strings.HasSuffix(name, ".js"), strings.HasSuffix(name, ".mjs"):
		return "js"
	case strings.HasSuffix(name, ".css"):
		return "css"
	default:
		return "other"
	}
}
