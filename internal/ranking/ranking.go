package ranking

import (
	"sort"

	"github.com/vkoski/wikiviews/internal/model"
)

// SortByViews returns a new slice sorted by views in descending order. The sort
// is stable: articles with equal view counts keep their relative input order.
func SortByViews(articles []model.ArticleView) []model.ArticleView {
	sorted := make([]model.ArticleView, len(articles))
	copy(sorted, articles)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Views > sorted[j].Views
	})

	return sorted
}

// Aggregate merges monthly ranked lists into a single ranked list, summing the
// view counts of articles that appear in more than one input. Tie order among
// equal totals follows first appearance across the inputs, inputs in the order
// given. Aggregating a single list degenerates to a re-sort of that list.
func Aggregate(lists ...[]model.ArticleView) []model.ArticleView {
	index := make(map[string]int)
	merged := make([]model.ArticleView, 0)

	for _, list := range lists {
		for _, av := range list {
			if i, seen := index[av.Article]; seen {
				merged[i].Views += av.Views
				continue
			}
			index[av.Article] = len(merged)
			merged = append(merged, av)
		}
	}

	return SortByViews(merged)
}
