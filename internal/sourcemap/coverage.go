package sourcemap

import "context"

// MapCoverage projects generated-position V8 coverage ranges onto original
// source lines via the script's source map, producing a per-file summary
// (spec.md §4.3's mapCoverage).
func (c *Cache) MapCoverage(ctx context.Context, scripts []ScriptCoverage) map[string]FileCoverage {
	covered := make(map[string]map[int]bool)
	total := make(map[string]map[int]bool)

	for _, script := range scripts {
		pm, err := c.loadMap(ctx, script.URL)
		if err != nil {
			continue
		}
		for _, r := range script.Ranges {
			// V8 coverage ranges are character offsets, not (line,col); treating
			// the offset as a column on line 0 is an approximation good enough
			// to bucket a range to its nearest mapped source line.
			file, _, line, _, ok := pm.consumer.Source(0, r.StartOffset)
			if !ok {
				continue
			}
			if covered[file] == nil {
				covered[file] = make(map[int]bool)
				total[file] = make(map[int]bool)
			}
			total[file][line] = true
			if r.Count > 0 {
				covered[file][line] = true
			}
		}
	}

	out := make(map[string]FileCoverage, len(total))
	for file, lines := range total {
		coveredCount := len(covered[file])
		totalCount := len(lines)
		fc := FileCoverage{
			CoveredLines:   coveredCount,
			UncoveredLines: totalCount - coveredCount,
		}
		if totalCount > 0 {
			fc.Percent = float64(coveredCount) / float64(totalCount) * 100
		}
		out[file] = fc
	}
	return out
}
