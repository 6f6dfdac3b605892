package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/stats"
)

// MockGateway is a mock implementation of the StatsGateway interface for
// testing. It is safe for concurrent use.
type MockGateway struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertFunc      func(ctx context.Context, rec *stats.StatRecord) error
	BatchUpsertFunc func(ctx context.Context, recs []*stats.StatRecord) BatchResult
	LoadFunc        func(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error)
	LoadRankedFunc  func(ctx context.Context, key SortKey, limit int) ([]*stats.StatRecord, error)
	CountFunc       func(ctx context.Context) (int64, error)

	// Call records
	UpsertCalls      []*stats.StatRecord
	BatchUpsertCalls [][]*stats.StatRecord
	LoadCalls        []uuid.UUID
	LoadRankedCalls  []struct {
		Key   SortKey
		Limit int
	}
}

var _ StatsGateway = (*MockGateway)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockGateway {
	return &MockGateway{}
}

// Reset clears all call records.
func (m *MockGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls = nil
	m.BatchUpsertCalls = nil
	m.LoadCalls = nil
	m.LoadRankedCalls = nil
}

func (m *MockGateway) Upsert(ctx context.Context, rec *stats.StatRecord) error {
	m.mu.Lock()
	m.UpsertCalls = append(m.UpsertCalls, rec)
	fn := m.UpsertFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, rec)
	}
	return nil
}

func (m *MockGateway) BatchUpsert(ctx context.Context, recs []*stats.StatRecord) BatchResult {
	m.mu.Lock()
	m.BatchUpsertCalls = append(m.BatchUpsertCalls, recs)
	fn := m.BatchUpsertFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, recs)
	}
	result := BatchResult{Failed: make(map[uuid.UUID]error)}
	for _, rec := range recs {
		result.Succeeded = append(result.Succeeded, rec.PlayerID)
	}
	return result
}

func (m *MockGateway) Load(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
	m.mu.Lock()
	m.LoadCalls = append(m.LoadCalls, playerID)
	fn := m.LoadFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID)
	}
	return nil, false, nil
}

func (m *MockGateway) LoadRanked(ctx context.Context, key SortKey, limit int) ([]*stats.StatRecord, error) {
	m.mu.Lock()
	m.LoadRankedCalls = append(m.LoadRankedCalls, struct {
		Key   SortKey
		Limit int
	}{key, limit})
	fn := m.LoadRankedFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, key, limit)
	}
	return nil, nil
}

func (m *MockGateway) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	fn := m.CountFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return 0, nil
}
