package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkoski/wikiviews/internal/model"
)

// PageviewRepository fetches the ranked article list for one month.
type PageviewRepository interface {
	TopArticles(ctx context.Context, year, month int) ([]model.ArticleView, error)
}

// ArchiveRepository stores rendered reports under archive-relative paths.
type ArchiveRepository interface {
	Store(ctx context.Context, path, content string) error
	Load(ctx context.Context, path string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

var (
	// ErrNoData means the period resolved to a valid response with no
	// articles (or the API has no data for it). Callers skip the period.
	ErrNoData = errors.New("no pageview data for period")

	// ErrMalformedRecord means a fetched record is missing its article name
	// or carries a negative view count. The whole month is rejected.
	ErrMalformedRecord = errors.New("malformed pageview record")

	// ErrNotFound means the requested archive object does not exist.
	ErrNotFound = errors.New("report not found in archive")
)

// FetchError is a transport- or HTTP-level fetch failure, carrying enough
// context to report which period could not be retrieved.
type FetchError struct {
	Project    string
	Year       int
	Month      int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching pageviews for %s %d/%02d: unexpected status %d", e.Project, e.Year, e.Month, e.StatusCode)
	}
	return fmt.Sprintf("fetching pageviews for %s %d/%02d: %v", e.Project, e.Year, e.Month, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
