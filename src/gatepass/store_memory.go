package gatepass

import (
	"campusgate/src/models"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps gate passes in process. Transitions on one record are
// serialized by a per-record mutex; different records never contend.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	passes map[uint]*models.GatePass
	locks  map[uint]*sync.Mutex
	trails map[uint][]models.GatePassTrail
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		passes: map[uint]*models.GatePass{},
		locks:  map[uint]*sync.Mutex{},
		trails: map[uint][]models.GatePassTrail{},
		now:    now,
	}
}

func (m *MemoryStore) Create(_ context.Context, gp *models.GatePass, trail *models.GatePassTrail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := m.now()
	gp.ID = m.nextID
	gp.CreatedAt, gp.UpdatedAt = now, now
	m.passes[gp.ID] = gp.Clone()
	m.locks[gp.ID] = &sync.Mutex{}
	if trail != nil {
		m.appendTrail(gp.ID, *trail, now)
	}
	return nil
}

func (m *MemoryStore) appendTrail(id uint, t models.GatePassTrail, at time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.GatePassID = id
	t.CreatedAt = at
	m.trails[id] = append(m.trails[id], t)
}

func (m *MemoryStore) Get(_ context.Context, id uint) (*models.GatePass, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gp, ok := m.passes[id]
	if !ok {
		return nil, notFound("gate pass %d not found", id)
	}
	return gp.Clone(), nil
}

func (m *MemoryStore) Transition(_ context.Context, id uint, fn MutateFunc) (*models.GatePass, error) {
	m.mu.RLock()
	lock, ok := m.locks[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound("gate pass %d not found", id)
	}
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	working := m.passes[id].Clone()
	m.mu.RUnlock()

	trail, err := fn(working)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	working.UpdatedAt = now
	m.passes[id] = working.Clone()
	if trail != nil {
		m.appendTrail(id, *trail, now)
	}
	return working, nil
}

func (m *MemoryStore) List(_ context.Context, q Query) ([]models.GatePass, error) {
	m.mu.RLock()
	out := make([]models.GatePass, 0)
	for _, gp := range m.passes {
		if q.Matches(gp) {
			out = append(out, *gp.Clone())
		}
	}
	m.mu.RUnlock()

	switch q.Order {
	case OrderDepartmentThenOldest:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DepartmentID, out[j].DepartmentID
			switch {
			case a == nil && b != nil:
				return false
			case a != nil && b == nil:
				return true
			case a != nil && b != nil && *a != *b:
				return *a < *b
			}
			if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
				return out[i].UpdatedAt.Before(out[j].UpdatedAt)
			}
			return out[i].ID < out[j].ID
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
				return out[i].UpdatedAt.After(out[j].UpdatedAt)
			}
			return out[i].ID > out[j].ID
		})
	}
	return out, nil
}

func (m *MemoryStore) Trail(_ context.Context, id uint) ([]models.GatePassTrail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.passes[id]; !ok {
		return nil, notFound("gate pass %d not found", id)
	}
	out := make([]models.GatePassTrail, len(m.trails[id]))
	copy(out, m.trails[id])
	return out, nil
}
