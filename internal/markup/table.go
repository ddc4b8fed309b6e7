// Package markup renders ranked article lists into the wiki table syntax used
// for publishing the statistics. The output is byte-exact: table markers, the
// Finnish column headers and the thousands separator are fixed literals, not
// locale- or configuration-dependent.
package markup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vkoski/wikiviews/internal/model"
	"github.com/vkoski/wikiviews/internal/ranking"
)

// DefaultLimit is the maximum number of table rows when the caller does not
// give an explicit limit.
const DefaultLimit = 1000

const (
	tableOpen  = `{| class="wikitable sortable"`
	headerRow  = "! Sija !! Artikkeli !! Katselumäärä"
	tableClose = "|}"

	// Articles in the category namespace need a leading colon in the link
	// target, otherwise the page carrying the table gets categorized.
	categoryPrefix = "Luokka:"
)

// RenderTable renders the top entries of a ranked list as a sortable wiki
// table under a section header. The input is re-sorted by views descending
// before rank assignment, so callers do not have to guarantee order. A record
// with an empty article name or a negative view count fails the whole render.
func RenderTable(articles []model.ArticleView, title string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := ranking.SortByViews(articles)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n\n", title)
	b.WriteString(tableOpen + "\n")
	b.WriteString(headerRow + "\n")

	for i, av := range sorted {
		if av.Article == "" {
			return "", fmt.Errorf("rendering row %d: record has no article name", i+1)
		}
		if av.Views < 0 {
			return "", fmt.Errorf("rendering row %d (%s): negative view count %d", i+1, av.Article, av.Views)
		}

		sortKey := strconv.FormatInt(av.Views, 10)
		fmt.Fprintf(&b, "|-\n| %d || [[%s]] || data-sort-value=%q | %s\n",
			i+1, displayName(av.Article), sortKey, groupThousands(av.Views))
	}

	b.WriteString(tableClose)
	return b.String(), nil
}

// displayName converts a raw article identifier to its link form: underscores
// become spaces, and category-namespace names get a colon prefix.
func displayName(article string) string {
	name := strings.ReplaceAll(article, "_", " ")
	if strings.HasPrefix(name, categoryPrefix) {
		name = ":" + name
	}
	return name
}

// groupThousands formats n with a space between every group of three digits,
// counted from the right. The separator is a plain ASCII space regardless of
// the process locale.
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return strings.Join(groups, " ")
}
