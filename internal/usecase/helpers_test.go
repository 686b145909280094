package usecase_test

import (
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/mock"
	"github.com/tilequery-overlay/internal/domain"
)

// scriptedResponse - ответ фейкового Tilequery для конкретной точки
type scriptedResponse struct {
	release <-chan struct{}
	fc      *geojson.FeatureCollection
	err     error
}

type scriptedTilequery struct {
	mu        sync.Mutex
	responses map[domain.Point]scriptedResponse
	calls     []domain.Point
}

func newScriptedTilequery() *scriptedTilequery {
	return &scriptedTilequery{responses: make(map[domain.Point]scriptedResponse)}
}

func (s *scriptedTilequery) on(p domain.Point, resp scriptedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[p] = resp
}

func (s *scriptedTilequery) Query(ctx context.Context, origin domain.Point, _ domain.QueryParameters) (*geojson.FeatureCollection, error) {
	s.mu.Lock()
	resp, ok := s.responses[origin]
	s.calls = append(s.calls, origin)
	s.mu.Unlock()

	if !ok {
		return featureCollection(0), nil
	}
	if resp.release != nil {
		select {
		case <-resp.release:
		case <-ctx.Done():
			return nil, domain.NewNetworkError(ctx.Err())
		}
	}
	return resp.fc, resp.err
}

func (s *scriptedTilequery) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func featureCollection(n int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < n; i++ {
		f := geojson.NewFeature(orb.Point{float64(i) / 1000, float64(i) / 1000})
		f.Properties["name"] = "poi"
		fc.Append(f)
	}
	return fc
}

type recordingReporter struct {
	mu      sync.Mutex
	records []*domain.QueryRecord
}

func (r *recordingReporter) Report(record *domain.QueryRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingReporter) byRequest(id uint64) *domain.QueryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.RequestID == id {
			return rec
		}
	}
	return nil
}

// MockPermissionPrompter is a mock of PermissionPrompter
type MockPermissionPrompter struct {
	mock.Mock
}

func (m *MockPermissionPrompter) Prompt(ctx context.Context, event domain.PermissionPromptEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockQueryJournalRepository is a mock of QueryJournalRepository
type MockQueryJournalRepository struct {
	mock.Mock
}

func (m *MockQueryJournalRepository) Record(ctx context.Context, record *domain.QueryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockQueryJournalRepository) ListRecent(ctx context.Context, limit int) ([]*domain.QueryRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QueryRecord), args.Error(1)
}
