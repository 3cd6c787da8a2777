package filter

import (
	"sort"

	"github.com/taskdeck/taskdeck/internal/core/task"
)

// Discover scans tasks for source and tag values outside the predefined
// vocabulary and returns one dynamic tag per unknown value, sorted by
// descending frequency, along with per-tag-id counts.
func Discover(tasks []task.Task) ([]DynamicTag, map[string]int) {
	sources := make(map[string]int)
	categories := make(map[string]int)

	for _, tk := range tasks {
		if tk.Source != nil && *tk.Source != "" {
			sources[*tk.Source]++
		}
		for _, label := range tk.Tags {
			categories[label]++
		}
	}

	return buildDynamicTags(sources, categories)
}

// FromCounts builds dynamic tags from store aggregate counts instead of
// loaded tasks, so totals stay accurate beyond the display page.
func FromCounts(sources, categories map[string]int) ([]DynamicTag, map[string]int) {
	return buildDynamicTags(sources, categories)
}

func buildDynamicTags(sources, categories map[string]int) ([]DynamicTag, map[string]int) {
	knownSources := KnownSources()
	knownCategories := KnownCategories()

	var tags []DynamicTag
	counts := make(map[string]int)

	for value, count := range sources {
		if _, known := knownSources[value]; known || count == 0 {
			continue
		}
		t := SourceTag(value)
		tags = append(tags, t)
		counts[t.ID] = count
	}
	for value, count := range categories {
		if _, known := knownCategories[value]; known || count == 0 {
			continue
		}
		t := CategoryTag(value)
		tags = append(tags, t)
		counts[t.ID] = count
	}

	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i].ID] != counts[tags[j].ID] {
			return counts[tags[i].ID] > counts[tags[j].ID]
		}
		return tags[i].ID < tags[j].ID
	})

	return tags, counts
}
