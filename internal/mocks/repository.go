package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/vkoski/wikiviews/internal/model"
	"github.com/vkoski/wikiviews/internal/repository"
)

// MockPageviewRepo returns canned rankings. Set TopArticlesFunc to override,
// or Data to serve fixed lists keyed by month.
type MockPageviewRepo struct {
	TopArticlesFunc func(ctx context.Context, year, month int) ([]model.ArticleView, error)
	Data            map[int][]model.ArticleView
}

func (m *MockPageviewRepo) TopArticles(ctx context.Context, year, month int) ([]model.ArticleView, error) {
	if m.TopArticlesFunc != nil {
		return m.TopArticlesFunc(ctx, year, month)
	}
	if m.Data != nil {
		articles, ok := m.Data[month]
		if !ok || len(articles) == 0 {
			return nil, repository.ErrNoData
		}
		return articles, nil
	}
	return []model.ArticleView{
		{Article: "Suomi", Views: 1000},
		{Article: "Helsinki", Views: 500},
	}, nil
}

// MockArchiveRepo records stored reports in memory.
type MockArchiveRepo struct {
	StoreFunc func(ctx context.Context, path, content string) error

	mu     sync.Mutex
	Stored map[string]string
	Closed bool
}

func (m *MockArchiveRepo) Store(ctx context.Context, path, content string) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, path, content)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stored == nil {
		m.Stored = make(map[string]string)
	}
	m.Stored[path] = content
	return nil
}

func (m *MockArchiveRepo) Load(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.Stored[path]
	if !ok {
		return "", repository.ErrNotFound
	}
	return content, nil
}

func (m *MockArchiveRepo) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for path := range m.Stored {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (m *MockArchiveRepo) Close() error {
	m.Closed = true
	return nil
}
