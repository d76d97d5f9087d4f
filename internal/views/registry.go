package views

import (
	"sync"
	"time"
)

// Closer is anything a Registry can evict.
type Closer interface {
	Close()
}

type registryEntry[V Closer] struct {
	view     V
	lastSeen time.Time
}

// Registry keeps live views by id and evicts the ones nobody has touched
// for longer than the idle TTL.
type Registry[V Closer] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*registryEntry[V]
}

func NewRegistry[V Closer](ttl time.Duration) *Registry[V] {
	return &Registry[V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*registryEntry[V]),
	}
}

// Put stores v under id, closing any view it replaces.
func (r *Registry[V]) Put(id string, v V) {
	r.mu.Lock()
	old, had := r.items[id]
	r.items[id] = &registryEntry[V]{view: v, lastSeen: r.now()}
	r.mu.Unlock()

	if had {
		old.view.Close()
	}
}

// Get returns the view for id and marks it as seen.
func (r *Registry[V]) Get(id string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		var zero V
		return zero, false
	}
	e.lastSeen = r.now()
	return e.view, true
}

// Delete closes and forgets the view for id.
func (r *Registry[V]) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if ok {
		e.view.Close()
	}
	return ok
}

// Sweep closes views idle for longer than the TTL and returns how many.
func (r *Registry[V]) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []V
	for id, e := range r.items {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.view)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, v := range idle {
		v.Close()
	}
	return len(idle)
}

func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// CloseAll empties the registry.
func (r *Registry[V]) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*registryEntry[V])
	r.mu.Unlock()

	for _, e := range items {
		e.view.Close()
	}
}
