package models

import "fmt"

// EntityID is a generational handle into the Registry. The zero value never
// refers to a live entity because generations start at 1.
type EntityID struct {
	Index      uint32
	Generation uint32
}

// NoEntity is the zero handle.
var NoEntity = EntityID{}

func (id EntityID) IsZero() bool { return id.Generation == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d#%d", id.Index, id.Generation)
}

// MarshalText encodes the handle as "index#generation".
func (id EntityID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Storage is implemented by component tables so the registry can strip
// components when an entity is destroyed.
type Storage interface {
	Remove(EntityID) bool
	Clear()
}

// Registry allocates entity handles from an arena of reusable slots.
// A slot's generation is bumped on destroy, which invalidates stale handles.
type Registry struct {
	generations []uint32
	alive       []bool
	free        []uint32
	count       int
	storages    []Storage
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register attaches a component table to the registry.
func (r *Registry) Register(s Storage) {
	r.storages = append(r.storages, s)
}

// Create allocates a new live entity.
func (r *Registry) Create() EntityID {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.generations))
		r.generations = append(r.generations, 0)
		r.alive = append(r.alive, false)
	}

	r.generations[index]++
	r.alive[index] = true
	r.count++

	return EntityID{Index: index, Generation: r.generations[index]}
}

// Alive reports whether id refers to a live entity.
func (r *Registry) Alive(id EntityID) bool {
	if id.IsZero() || int(id.Index) >= len(r.generations) {
		return false
	}
	return r.alive[id.Index] && r.generations[id.Index] == id.Generation
}

// Destroy removes the entity and all of its components. Destroying a dead or
// stale handle is a no-op and returns false.
func (r *Registry) Destroy(id EntityID) bool {
	if !r.Alive(id) {
		return false
	}

	for _, s := range r.storages {
		s.Remove(id)
	}

	r.alive[id.Index] = false
	r.free = append(r.free, id.Index)
	r.count--

	return true
}

// Len returns the number of live entities.
func (r *Registry) Len() int { return r.count }

// Clear destroys every entity. Generations are kept so old handles stay stale.
func (r *Registry) Clear() {
	for _, s := range r.storages {
		s.Clear()
	}
	r.free = r.free[:0]
	for i := len(r.alive) - 1; i >= 0; i-- {
		r.alive[i] = false
		r.free = append(r.free, uint32(i))
	}
	r.count = 0
}
