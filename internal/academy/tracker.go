package academy

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/unicorn-emporium/internal/kv"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// ProgressKey is the key the completion record is persisted under
const ProgressKey = "secureAI_progress"

// DefaultTotalModules is the module count of the full academy build
const DefaultTotalModules = 10

const persistTimeout = 5 * time.Second

// Tracker records which modules a learner has completed
type Tracker struct {
	mu        sync.Mutex
	kv        kv.Store
	total     int
	completed map[int]struct{}
	updatedAt time.Time

	now func() time.Time
}

// NewTracker creates a tracker over totalModules modules and rehydrates the
// saved progress from kvStore. totalModules <= 0 uses DefaultTotalModules.
func NewTracker(ctx context.Context, kvStore kv.Store, totalModules int) *Tracker {
	if totalModules <= 0 {
		totalModules = DefaultTotalModules
	}

	t := &Tracker{
		kv:        kvStore,
		total:     totalModules,
		completed: make(map[int]struct{}),
		now:       time.Now,
	}
	t.rehydrate(ctx)
	return t
}

func (t *Tracker) rehydrate(ctx context.Context) {
	if t.kv == nil {
		return
	}

	data, ok, err := t.kv.Load(ctx, ProgressKey)
	if err != nil {
		slog.Warn("failed to load academy progress", "error", err)
		return
	}
	if !ok {
		return
	}

	var p models.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("discarding unreadable academy progress", "error", err)
		return
	}

	for _, id := range p.Completed {
		if id > 0 {
			t.completed[id] = struct{}{}
		}
	}
	t.updatedAt = p.Timestamp
}

// MarkComplete adds moduleID to the completed set. Repeated calls and
// ids <= 0 are no-ops.
func (t *Tracker) MarkComplete(moduleID int) {
	if moduleID <= 0 {
		return
	}

	t.mu.Lock()
	if _, ok := t.completed[moduleID]; ok {
		t.mu.Unlock()
		return
	}
	t.completed[moduleID] = struct{}{}
	t.updatedAt = t.now().UTC()
	p := t.progressLocked()
	t.mu.Unlock()

	t.persist(p)
	slog.Debug("module completed", "module", moduleID, "count", len(p.Completed))
}

// IsComplete reports whether moduleID has been completed
func (t *Tracker) IsComplete(moduleID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.completed[moduleID]
	return ok
}

// Completed returns the completed module ids in ascending order
func (t *Tracker) Completed() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortedLocked()
}

// Count returns the number of completed modules
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}

// Total returns the module count percentages are computed against
func (t *Tracker) Total() int {
	return t.total
}

// CompletionPercentage returns round(completed / total * 100)
func (t *Tracker) CompletionPercentage() int {
	t.mu.Lock()
	n := len(t.completed)
	t.mu.Unlock()
	return int(math.Round(float64(n) / float64(t.total) * 100))
}

// Progress returns the record as it is persisted
func (t *Tracker) Progress() models.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progressLocked()
}

func (t *Tracker) progressLocked() models.Progress {
	return models.Progress{
		Completed: t.sortedLocked(),
		Timestamp: t.updatedAt,
	}
}

func (t *Tracker) sortedLocked() []int {
	ids := make([]int, 0, len(t.completed))
	for id := range t.completed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (t *Tracker) persist(p models.Progress) {
	if t.kv == nil {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("failed to marshal academy progress", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := t.kv.Save(ctx, ProgressKey, data); err != nil {
		slog.Warn("failed to save academy progress", "error", err)
	}
}
