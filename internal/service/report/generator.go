package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	"github.com/vkoski/wikiviews/internal/markup"
	"github.com/vkoski/wikiviews/internal/model"
	"github.com/vkoski/wikiviews/internal/ranking"
	"github.com/vkoski/wikiviews/internal/repository"
)

// Generator runs the monthly and yearly report pipelines: fetch, rank, render,
// persist. It is synchronous and stateless across invocations; months are
// processed one at a time in increasing order.
type Generator struct {
	pageviews repository.PageviewRepository
	archive   repository.ArchiveRepository
	limit     int
	now       func() time.Time
}

func NewGenerator(pageviews repository.PageviewRepository, archive repository.ArchiveRepository, limit int) *Generator {
	if limit <= 0 {
		limit = markup.DefaultLimit
	}
	return &Generator{
		pageviews: pageviews,
		archive:   archive,
		limit:     limit,
		now:       time.Now,
	}
}

// ProcessMonth generates and persists the report for a single month. A period
// with no data returns an error wrapping repository.ErrNoData and persists
// nothing.
func (g *Generator) ProcessMonth(ctx context.Context, year, month int) (*model.Report, error) {
	logger := log.New(funcframework.LogWriter(ctx), "", 0)
	logger.Printf("Month processing started year=%d month=%d", year, month)

	start := time.Now()
	rep, _, err := g.buildMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	if err := g.archive.Store(ctx, rep.Path, rep.Body); err != nil {
		return nil, fmt.Errorf("storing monthly report: %w", err)
	}

	logger.Printf("Month processing completed year=%d month=%d rows=%d path=%s duration_ms=%d",
		year, month, rep.Rows, rep.Path, time.Since(start).Milliseconds())
	return rep, nil
}

// PreviewMonth renders a single month's report without persisting it.
func (g *Generator) PreviewMonth(ctx context.Context, year, month int) (*model.Report, error) {
	rep, _, err := g.buildMonth(ctx, year, month)
	return rep, err
}

// ProcessYear generates the yearly report by fetching every month of the year
// (up to the current month when the year is still running), persisting each
// month's own report along the way, and aggregating the full monthly lists
// into one summed ranking. Months that fail to fetch or have no data are
// skipped; a year with no usable months returns repository.ErrNoData.
func (g *Generator) ProcessYear(ctx context.Context, year int) (*model.Report, error) {
	logger := log.New(funcframework.LogWriter(ctx), "", 0)
	logger.Printf("Year processing started year=%d", year)
	start := time.Now()

	maxMonth := 12
	if now := g.now(); now.Year() == year {
		maxMonth = int(now.Month())
	}

	var monthly [][]model.ArticleView
	for month := 1; month <= maxMonth; month++ {
		rep, full, err := g.buildMonth(ctx, year, month)
		switch {
		case errors.Is(err, repository.ErrNoData):
			logger.Printf("Skipping month year=%d month=%d reason=no_data", year, month)
			continue
		case err != nil:
			logger.Printf("Skipping month year=%d month=%d error=%v", year, month, err)
			continue
		}

		if err := g.archive.Store(ctx, rep.Path, rep.Body); err != nil {
			return nil, fmt.Errorf("storing monthly report for %d/%02d: %w", year, month, err)
		}
		logger.Printf("Month completed year=%d month=%d rows=%d path=%s", year, month, rep.Rows, rep.Path)

		// Aggregation sums the full lists; truncation to the row limit
		// happens only at render time.
		monthly = append(monthly, full)
	}

	if len(monthly) == 0 {
		return nil, fmt.Errorf("year %d: %w", year, repository.ErrNoData)
	}

	aggregated := ranking.Aggregate(monthly...)
	title := yearlyTitle(year)

	body, err := markup.RenderTable(aggregated, title, g.limit)
	if err != nil {
		return nil, fmt.Errorf("rendering yearly report for %d: %w", year, err)
	}

	rep := &model.Report{
		Year:  year,
		Title: title,
		Path:  yearlyPath(year),
		Body:  body,
		Rows:  min(len(aggregated), g.limit),
	}

	if err := g.archive.Store(ctx, rep.Path, rep.Body); err != nil {
		return nil, fmt.Errorf("storing yearly report: %w", err)
	}

	logger.Printf("Year processing completed year=%d months=%d rows=%d path=%s duration_ms=%d",
		year, len(monthly), rep.Rows, rep.Path, time.Since(start).Milliseconds())
	return rep, nil
}

// buildMonth fetches and renders one month. It returns the report and the
// full, untruncated ranked list for yearly aggregation.
func (g *Generator) buildMonth(ctx context.Context, year, month int) (*model.Report, []model.ArticleView, error) {
	if month < 1 || month > 12 {
		return nil, nil, fmt.Errorf("month %d out of range 1-12", month)
	}

	articles, err := g.pageviews.TopArticles(ctx, year, month)
	if err != nil {
		return nil, nil, err
	}

	sorted := ranking.SortByViews(articles)
	title := monthlyTitle(year, month)

	body, err := markup.RenderTable(sorted, title, g.limit)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering report for %d/%02d: %w", year, month, err)
	}

	rep := &model.Report{
		Year:  year,
		Month: month,
		Title: title,
		Path:  monthlyPath(year, month),
		Body:  body,
		Rows:  min(len(sorted), g.limit),
	}
	return rep, sorted, nil
}

// ListReports returns the archive paths of previously generated reports for a
// year (or all years when year is 0).
func (g *Generator) ListReports(ctx context.Context, year int) ([]string, error) {
	prefix := ""
	if year > 0 {
		prefix = fmt.Sprintf("%d/", year)
	}
	return g.archive.List(ctx, prefix)
}
