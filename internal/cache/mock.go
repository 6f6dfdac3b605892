package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/stats"
)

// MockCache is a mock implementation of the StatsCache interface for testing.
// It is safe for concurrent use.
type MockCache struct {
	mu sync.Mutex

	// Spies for method calls
	GetOrLoadFunc func(ctx context.Context, playerID uuid.UUID, name string) (*stats.StatRecord, error)
	PeekFunc      func(playerID uuid.UUID) (*stats.StatRecord, bool)
	FlushOneFunc  func(ctx context.Context, playerID uuid.UUID) error
	FlushAllFunc  func(ctx context.Context) FlushOutcome
	EvictFunc     func(ctx context.Context, playerID uuid.UUID) error

	// Call records
	GetOrLoadCalls []struct {
		PlayerID uuid.UUID
		Name     string
	}
	ApplyGameResultCalls []struct {
		PlayerID uuid.UUID
		Result   stats.GameResult
	}
	RecordKillCalls        []uuid.UUID
	RecordDeathCalls       []uuid.UUID
	RecordDamageDealtCalls []struct {
		PlayerID uuid.UUID
		Amount   float64
	}
	RecordDamageTakenCalls []struct {
		PlayerID uuid.UUID
		Amount   float64
	}
	RecordChestOpenedCalls []uuid.UUID
	FlushOneCalls          []uuid.UUID
	FlushAllCalls          int
	EvictCalls             []uuid.UUID
	ShutdownCalls          int
}

var _ StatsCache = (*MockCache)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockCache {
	return &MockCache{}
}

func (m *MockCache) GetOrLoad(ctx context.Context, playerID uuid.UUID, name string) (*stats.StatRecord, error) {
	m.mu.Lock()
	m.GetOrLoadCalls = append(m.GetOrLoadCalls, struct {
		PlayerID uuid.UUID
		Name     string
	}{playerID, name})
	fn := m.GetOrLoadFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, name)
	}
	return stats.NewRecord(playerID, name), nil
}

func (m *MockCache) Peek(playerID uuid.UUID) (*stats.StatRecord, bool) {
	m.mu.Lock()
	fn := m.PeekFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerID)
	}
	return nil, false
}

func (m *MockCache) ApplyGameResult(playerID uuid.UUID, res stats.GameResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyGameResultCalls = append(m.ApplyGameResultCalls, struct {
		PlayerID uuid.UUID
		Result   stats.GameResult
	}{playerID, res})
}

func (m *MockCache) RecordKill(playerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordKillCalls = append(m.RecordKillCalls, playerID)
}

func (m *MockCache) RecordDeath(playerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordDeathCalls = append(m.RecordDeathCalls, playerID)
}

func (m *MockCache) RecordDamageDealt(playerID uuid.UUID, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordDamageDealtCalls = append(m.RecordDamageDealtCalls, struct {
		PlayerID uuid.UUID
		Amount   float64
	}{playerID, amount})
}

func (m *MockCache) RecordDamageTaken(playerID uuid.UUID, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordDamageTakenCalls = append(m.RecordDamageTakenCalls, struct {
		PlayerID uuid.UUID
		Amount   float64
	}{playerID, amount})
}

func (m *MockCache) RecordChestOpened(playerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordChestOpenedCalls = append(m.RecordChestOpenedCalls, playerID)
}

func (m *MockCache) FlushOne(ctx context.Context, playerID uuid.UUID) error {
	m.mu.Lock()
	m.FlushOneCalls = append(m.FlushOneCalls, playerID)
	fn := m.FlushOneFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID)
	}
	return nil
}

func (m *MockCache) FlushAll(ctx context.Context) FlushOutcome {
	m.mu.Lock()
	m.FlushAllCalls++
	fn := m.FlushAllFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return FlushOutcome{Failed: make(map[uuid.UUID]error)}
}

func (m *MockCache) Evict(ctx context.Context, playerID uuid.UUID) error {
	m.mu.Lock()
	m.EvictCalls = append(m.EvictCalls, playerID)
	fn := m.EvictFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID)
	}
	return nil
}

func (m *MockCache) Size() int { return 0 }

func (m *MockCache) DirtyCount() int { return 0 }

func (m *MockCache) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShutdownCalls++
	return nil
}
