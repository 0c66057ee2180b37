package order

import (
	"errors"
	"sync"
)

// ErrDraftNotFound is returned when a draft id is unknown to the registry.
var ErrDraftNotFound = errors.New("draft not found")

// Registry holds the drafts currently being composed, keyed by draft id.
// Drafts live only as long as the process; persisting a submitted order is
// the job of a downstream collaborator, not this service.
type Registry struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewRegistry() *Registry {
	return &Registry{drafts: make(map[string]*Draft)}
}

// Create registers a new empty draft and returns it.
func (r *Registry) Create() *Draft {
	d := NewDraft()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = d

	return d
}

// Get returns the draft with the given id.
func (r *Registry) Get(id string) (*Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}

	return d, nil
}

// Delete removes a draft from the registry.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(r.drafts, id)

	return nil
}
