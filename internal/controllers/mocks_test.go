package controllers

import (
	"errors"
	"fmt"
	"photoaudit/internal/models"
	"photoaudit/internal/providers"
	"sync"
	"time"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }

type mockMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	reviewed []string
}

func (m *mockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *mockMetrics) ObserveExportDuration(_ time.Duration)            {}
func (m *mockMetrics) IncCacheHits()                                    { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *mockMetrics) IncCacheMisses()                                  { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *mockMetrics) IncVisitsReviewed(bucket string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviewed = append(m.reviewed, bucket)
}

type mockRenderer struct {
	renderCalls int
	failFor     map[string]bool
	sheetErr    error
	sheets      []string
}

func (m *mockRenderer) Render(photo models.PhotoRecord) ([]byte, error) {
	m.renderCalls++
	if m.failFor[photo.Location] {
		return nil, errors.New("cannot decode")
	}
	return []byte("jpeg:" + photo.Location), nil
}

func (m *mockRenderer) Placeholder(photo models.PhotoRecord, cause error) ([]byte, error) {
	return []byte("placeholder:" + cause.Error()), nil
}

func (m *mockRenderer) ContactSheet(visit models.Visit) ([]byte, error) {
	return []byte("sheet:" + visit.FormID), nil
}

func (m *mockRenderer) WriteContactSheet(_ models.Visit, position int) (string, error) {
	if m.sheetErr != nil {
		return "", m.sheetErr
	}
	path := fmt.Sprintf("/tmp/visit_%d.png", position)
	m.sheets = append(m.sheets, path)
	return path, nil
}

type mockExporter struct {
	failures int
	paths    []string
	saved    [][]models.ReviewRecord
}

func (m *mockExporter) ExportPath(_ time.Time) string { return "/out/results.csv" }

func (m *mockExporter) SaveResults(path string, records []models.ReviewRecord) error {
	m.paths = append(m.paths, path)
	if m.failures > 0 {
		m.failures--
		return errors.New("disk full")
	}
	m.saved = append(m.saved, records)
	return nil
}

func (m *mockExporter) LoadResults(_ string) ([]models.ReviewRecord, error) { return nil, nil }
func (m *mockExporter) Close()                                              {}

func testSession() *models.ReviewSession {
	return &models.ReviewSession{
		ID:            "session-1",
		FilteredCount: 10,
		TargetCount:   3,
		Config: models.SessionConfig{
			Buckets:  []string{"Real", "Fake"},
			Reviewer: "ann",
		},
		Visits: []models.Visit{
			{FormID: "f1", UserID: "u1", Photos: []models.PhotoRecord{
				{Location: "/p/a.jpg", DisplayName: "a.jpg"},
				{Location: "/p/b.jpg", DisplayName: "b.jpg"},
			}},
			models.NewDecoyVisit(0, "/bad/x.jpg", "x.jpg", "jpg"),
		},
	}
}
