package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/metrics"
	"github.com/nordkyn/skystats/internal/stats"
)

// DefaultLoadTimeout bounds a single store round trip during GetOrLoad.
const DefaultLoadTimeout = 5 * time.Second

// cache is the write-back cache implementation. The map mutex guards cache
// structure (insert/remove); each entry carries its own mutex for field
// mutation, so counter increments on one player never contend with another.
type cache struct {
	gw          gateway.StatsGateway
	metrics     metrics.Metrics
	loadTimeout time.Duration

	group singleflight.Group

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry

	dirty *dirtySet
}

type entry struct {
	mu  sync.Mutex
	rec *stats.StatRecord
}

// locked executes fn with the entry's record locked.
func (e *entry) locked(fn func(rec *stats.StatRecord)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.rec)
}

// snapshot returns a consistent copy of the record.
func (e *entry) snapshot() *stats.StatRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone()
}

// dirtySet tracks which players have unflushed mutations. Each mark carries a
// sequence number so a flush only clears the flag if no further mutation
// arrived while the write was in flight.
type dirtySet struct {
	mu     sync.Mutex
	seq    uint64
	marked map[uuid.UUID]dirtyMark
}

type dirtyMark struct {
	seq      uint64
	markedAt time.Time
}

func newDirtySet() *dirtySet {
	return &dirtySet{marked: make(map[uuid.UUID]dirtyMark)}
}

func (d *dirtySet) Mark(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.marked[id] = dirtyMark{seq: d.seq, markedAt: time.Now()}
}

func (d *dirtySet) Get(id uuid.UUID) (dirtyMark, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	mark, ok := d.marked[id]
	return mark, ok
}

// Snapshot copies the current dirty marks for one flush cycle.
func (d *dirtySet) Snapshot() map[uuid.UUID]dirtyMark {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := make(map[uuid.UUID]dirtyMark, len(d.marked))
	for id, mark := range d.marked {
		snap[id] = mark
	}
	return snap
}

// ClearIf removes the mark only if it has not been superseded by a newer
// mutation since the given mark was taken.
func (d *dirtySet) ClearIf(id uuid.UUID, mark dirtyMark) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if current, ok := d.marked[id]; ok && current.seq == mark.seq {
		delete(d.marked, id)
	}
}

func (d *dirtySet) Remove(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.marked, id)
}

func (d *dirtySet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.marked)
}

// FlushOutcome reports one flush cycle: how many records were attempted, how
// many persisted, and which identities failed (these stay dirty).
type FlushOutcome struct {
	Attempted int
	Flushed   int
	Failed    map[uuid.UUID]error
}

// OK reports whether every attempted record persisted.
func (o FlushOutcome) OK() bool { return len(o.Failed) == 0 }
