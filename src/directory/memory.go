package directory

import (
	"campusgate/src/types"
	"context"
	"sort"
	"sync"
)

// MemoryDirectory is an in-process directory for tests and local runs
// without a database.
type MemoryDirectory struct {
	mu     sync.RWMutex
	people map[uint]Person
}

func NewMemoryDirectory(people ...Person) *MemoryDirectory {
	d := &MemoryDirectory{people: map[uint]Person{}}
	for _, p := range people {
		d.people[p.ID] = p
	}
	return d
}

func (d *MemoryDirectory) Put(p Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.people[p.ID] = p
}

func (d *MemoryDirectory) GetUser(_ context.Context, id uint) (*Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.people[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (d *MemoryDirectory) FindByRole(_ context.Context, role types.Role, departmentID *uint) ([]Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Person, 0)
	for _, p := range d.people {
		if p.Role != role {
			continue
		}
		if departmentID != nil && !p.InDepartment(departmentID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
