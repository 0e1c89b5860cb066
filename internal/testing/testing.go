// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// MockCatalog is a test double for services.Catalog backed by an in-memory item list.
//
// Search returns every item of the requested kind whose title contains the query (case-insensitive).
// FetchDetail returns the item with the matching id and kind, with DetailSuffix appended to its subtitle.
type MockCatalog struct {
	Items        []models.CatalogItem
	SearchErr    error
	DetailErr    error
	DetailSuffix string
	SourceName   models.Source

	mu          sync.Mutex
	searchCalls int
	detailCalls int
	lastLimit   int
}

func (m *MockCatalog) Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.CatalogItem, error) {
	m.mu.Lock()
	m.searchCalls++
	m.lastLimit = limit
	m.mu.Unlock()

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	items := []models.CatalogItem{}
	for _, it := range m.Items {
		if it.Kind == kind && strings.Contains(strings.ToLower(it.Title), strings.ToLower(query)) {
			items = append(items, it)
		}
	}
	return items, nil
}

func (m *MockCatalog) FetchDetail(ctx context.Context, id string, kind models.Kind) (*models.CatalogItem, error) {
	m.mu.Lock()
	m.detailCalls++
	m.mu.Unlock()

	if m.DetailErr != nil {
		return nil, m.DetailErr
	}
	for _, it := range m.Items {
		if it.ID == id && it.Kind == kind {
			it.Subtitle += m.DetailSuffix
			return &it, nil
		}
	}
	return nil, &shared.CatalogError{Provider: string(m.Source()), Status: http.StatusNotFound, Message: "non existing id"}
}

func (m *MockCatalog) Source() models.Source {
	if m.SourceName == "" {
		return models.SourceSpotify
	}
	return m.SourceName
}

func (m *MockCatalog) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

func (m *MockCatalog) DetailCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailCalls
}

func (m *MockCatalog) LastLimit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLimit
}

// MockHistory records searches in memory, failing with Err when set.
type MockHistory struct {
	Err     error
	mu      sync.Mutex
	queries []string
}

func (h *MockHistory) RecordSearch(query string, kind models.Kind, provider string, results int) error {
	if h.Err != nil {
		return h.Err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queries = append(h.queries, query)
	return nil
}

func (h *MockHistory) Queries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.queries...)
}

// Track builds a Spotify track item for tests.
func Track(id, title, artist string) models.CatalogItem {
	return models.CatalogItem{
		ID:       id,
		Kind:     models.KindTrack,
		Source:   models.SourceSpotify,
		Title:    title,
		Subtitle: artist,
		ImageURL: models.PlaceholderImageURL,
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
