package models

// SpawnFunc populates the components of a freshly created entity.
type SpawnFunc func(id EntityID)

// Commands is a deferred command buffer. Systems record despawns and spawns
// while traversing tables; Apply executes them at the tick boundary so no
// traversal observes a half-removed entity.
type Commands struct {
	registry *Registry
	despawns []EntityID
	queued   map[EntityID]struct{}
	spawns   []SpawnFunc
}

func NewCommands(r *Registry) *Commands {
	return &Commands{
		registry: r,
		queued:   make(map[EntityID]struct{}),
	}
}

// Despawn queues id for removal. Despawning a dead entity or one already queued
// is a no-op and returns false.
func (c *Commands) Despawn(id EntityID) bool {
	if !c.registry.Alive(id) {
		return false
	}
	if _, ok := c.queued[id]; ok {
		return false
	}
	c.queued[id] = struct{}{}
	c.despawns = append(c.despawns, id)
	return true
}

// Queued reports whether id is waiting to be despawned.
func (c *Commands) Queued(id EntityID) bool {
	_, ok := c.queued[id]
	return ok
}

// Spawn queues the creation of an entity.
func (c *Commands) Spawn(fn SpawnFunc) {
	c.spawns = append(c.spawns, fn)
}

// Apply runs despawns first, then spawns, and resets the buffer.
func (c *Commands) Apply() (despawned, spawned int) {
	for _, id := range c.despawns {
		if c.registry.Destroy(id) {
			despawned++
		}
	}

	// spawn funcs may queue further spawns; they run on the next Apply
	spawns := c.spawns
	c.spawns = nil
	for _, fn := range spawns {
		fn(c.registry.Create())
		spawned++
	}

	c.despawns = c.despawns[:0]
	clear(c.queued)

	return despawned, spawned
}

// Reset drops everything queued without applying it.
func (c *Commands) Reset() {
	c.despawns = c.despawns[:0]
	c.spawns = nil
	clear(c.queued)
}
