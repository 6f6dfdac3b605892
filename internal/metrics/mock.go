package metrics

import "sync"

// MockMetrics is a no-op Metrics implementation that records counts for
// assertions in tests. Safe for concurrent use.
type MockMetrics struct {
	mu sync.Mutex

	CacheHitCount      int
	CacheMissCount     int
	LoadFailureCount   int
	FlushCycleCount    int
	FlushFailureCount  int
	RecordsFlushedSum  float64
	DirtyPlayersValue  float64
	CachedPlayersValue float64
}

var _ Metrics = (*MockMetrics)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHitCount++
}

func (m *MockMetrics) IncCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMissCount++
}

func (m *MockMetrics) IncLoadFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadFailureCount++
}

func (m *MockMetrics) SetDirtyPlayers(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DirtyPlayersValue = count
}

func (m *MockMetrics) SetCachedPlayers(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CachedPlayersValue = count
}

func (m *MockMetrics) IncFlushCycles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCycleCount++
}

func (m *MockMetrics) IncFlushFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushFailureCount++
}

func (m *MockMetrics) AddRecordsFlushed(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsFlushedSum += count
}

func (m *MockMetrics) ObserveFlushDuration(seconds float64) {}

func (m *MockMetrics) SetStartupTime(seconds float64) {}
