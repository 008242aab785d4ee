package nlp

import (
	"sort"
	"strings"

	"github.com/uaenergy/news/pkg/models"
)

// CountTags counts how many articles carry each tag, ordered by
// descending count and then by tag. A tag repeated within one article
// counts once.
func CountTags(articles []models.Article) []models.TagCount {
	counts := make(map[string]int)
	for _, a := range articles {
		seen := make(map[string]bool, len(a.Tags))
		for _, tag := range a.Tags {
			tag = CleanText(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			counts[tag]++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Compare(out[i].Tag, out[j].Tag) < 0
	})
	return out
}

// TopTags returns at most n of the most frequent tags
func TopTags(counts []models.TagCount, n int) []models.TagCount {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}
