package models

// Table is a sparse-set component store keyed by EntityID.
// Values are packed densely; iteration order is insertion order until a removal
// swaps the last element into the hole.
//
// Structural changes (Set of a new entity, Remove) must not happen inside Each on
// the same table. Systems queue them on Commands instead.
type Table[T any] struct {
	sparse []int32
	dense  []T
	ids    []EntityID
}

var _ Storage = (*Table[struct{}])(nil)

// NewTable creates a table and registers it with r so destroyed entities lose the component.
func NewTable[T any](r *Registry) *Table[T] {
	t := &Table[T]{}
	if r != nil {
		r.Register(t)
	}
	return t
}

func (t *Table[T]) slot(id EntityID) (int, bool) {
	if int(id.Index) >= len(t.sparse) {
		return 0, false
	}
	pos := t.sparse[id.Index]
	if pos < 0 || t.ids[pos] != id {
		return 0, false
	}
	return int(pos), true
}

// Set attaches or replaces the component for id.
func (t *Table[T]) Set(id EntityID, value T) {
	if pos, ok := t.slot(id); ok {
		t.dense[pos] = value
		return
	}

	for int(id.Index) >= len(t.sparse) {
		t.sparse = append(t.sparse, -1)
	}
	if pos := t.sparse[id.Index]; pos >= 0 {
		// slot held by an older generation that was never removed
		t.removeAt(int(pos))
	}

	t.sparse[id.Index] = int32(len(t.dense))
	t.dense = append(t.dense, value)
	t.ids = append(t.ids, id)
}

// Get returns a pointer to the component. The pointer is valid until the next
// structural change to the table.
func (t *Table[T]) Get(id EntityID) (*T, bool) {
	pos, ok := t.slot(id)
	if !ok {
		return nil, false
	}
	return &t.dense[pos], true
}

func (t *Table[T]) Has(id EntityID) bool {
	_, ok := t.slot(id)
	return ok
}

// Remove detaches the component. Returns false if id had none.
func (t *Table[T]) Remove(id EntityID) bool {
	pos, ok := t.slot(id)
	if !ok {
		return false
	}
	t.removeAt(pos)
	return true
}

func (t *Table[T]) removeAt(pos int) {
	last := len(t.dense) - 1
	removed := t.ids[pos]

	if pos != last {
		t.dense[pos] = t.dense[last]
		t.ids[pos] = t.ids[last]
		t.sparse[t.ids[pos].Index] = int32(pos)
	}

	var zero T
	t.dense[last] = zero
	t.dense = t.dense[:last]
	t.ids = t.ids[:last]
	t.sparse[removed.Index] = -1
}

func (t *Table[T]) Len() int { return len(t.dense) }

// Each visits every component in dense order.
func (t *Table[T]) Each(fn func(id EntityID, value *T)) {
	for i := 0; i < len(t.dense); i++ {
		fn(t.ids[i], &t.dense[i])
	}
}

// EachWhile visits components in dense order until fn returns false.
func (t *Table[T]) EachWhile(fn func(id EntityID, value *T) bool) {
	for i := 0; i < len(t.dense); i++ {
		if !fn(t.ids[i], &t.dense[i]) {
			return
		}
	}
}

// IDs returns a copy of the entity handles holding this component.
func (t *Table[T]) IDs() []EntityID {
	out := make([]EntityID, len(t.ids))
	copy(out, t.ids)
	return out
}

// First returns the first entity holding the component.
func (t *Table[T]) First() (EntityID, *T, bool) {
	if len(t.dense) == 0 {
		return NoEntity, nil, false
	}
	return t.ids[0], &t.dense[0], true
}

func (t *Table[T]) Clear() {
	for i := range t.sparse {
		t.sparse[i] = -1
	}
	clear(t.dense)
	t.dense = t.dense[:0]
	t.ids = t.ids[:0]
}
