package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vkoski/wikiviews/internal/model"
)

const defaultBaseURL = "https://wikimedia.org/api/rest_v1"

// WikimediaRepository fetches monthly top-article rankings from the Wikimedia
// REST pageviews API.
type WikimediaRepository struct {
	httpClient *http.Client
	baseURL    string
	project    string
	access     string
	userAgent  string
}

// NewWikimediaRepository creates a pageview repository for one wiki project,
// e.g. "fi.wikipedia.org". The Wikimedia API requires a User-Agent with
// contact information.
func NewWikimediaRepository(project, access, userAgent string) *WikimediaRepository {
	baseURL := defaultBaseURL
	// test override
	if testURL := os.Getenv("PAGEVIEWS_BASE_URL"); testURL != "" {
		baseURL = testURL
	}

	return &WikimediaRepository{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   baseURL,
		project:   project,
		access:    access,
		userAgent: userAgent,
	}
}

// topResponse mirrors the pageviews/top payload. Only the fields the pipeline
// needs are decoded; rank is recomputed locally and ignored here.
type topResponse struct {
	Items []struct {
		Articles []struct {
			Article string `json:"article"`
			Views   *int64 `json:"views"`
		} `json:"articles"`
	} `json:"items"`
}

// TopArticles fetches the ranked article list for one month. A 404 from the
// API and a well-formed response with zero articles both mean the period has
// no data yet and map to ErrNoData; every other failure is a *FetchError.
func (w *WikimediaRepository) TopArticles(ctx context.Context, year, month int) ([]model.ArticleView, error) {
	url := fmt.Sprintf("%s/metrics/pageviews/top/%s/%s/%d/%02d/all-days",
		w.baseURL, w.project, w.access, year, month)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &FetchError{Project: w.project, Year: year, Month: month, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Project: w.project, Year: year, Month: month, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %d/%02d: %w", w.project, year, month, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Project: w.project, Year: year, Month: month, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Project: w.project, Year: year, Month: month, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var payload topResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Project: w.project, Year: year, Month: month, Err: fmt.Errorf("parsing response: %w", err)}
	}

	if len(payload.Items) == 0 || len(payload.Items[0].Articles) == 0 {
		return nil, fmt.Errorf("%s %d/%02d: %w", w.project, year, month, ErrNoData)
	}

	articles := make([]model.ArticleView, 0, len(payload.Items[0].Articles))
	for i, a := range payload.Items[0].Articles {
		if a.Article == "" {
			return nil, fmt.Errorf("record %d for %d/%02d has no article name: %w", i, year, month, ErrMalformedRecord)
		}
		if a.Views == nil {
			return nil, fmt.Errorf("record %d (%s) for %d/%02d has no view count: %w", i, a.Article, year, month, ErrMalformedRecord)
		}
		if *a.Views < 0 {
			return nil, fmt.Errorf("record %d (%s) for %d/%02d has negative view count %d: %w", i, a.Article, year, month, *a.Views, ErrMalformedRecord)
		}
		articles = append(articles, model.ArticleView{Article: a.Article, Views: *a.Views})
	}

	return articles, nil
}
