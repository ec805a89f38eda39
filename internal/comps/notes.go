package comps

import "sync"

// Notebook holds analyst notes keyed by comp id.
type Notebook struct {
	mu    sync.RWMutex
	notes map[string]string
}

// NewNotebook creates an empty Notebook.
func NewNotebook() *Notebook {
	return &Notebook{notes: make(map[string]string)}
}

// Get returns the note for id, or "" when none was written.
func (n *Notebook) Get(id string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.notes[id]
}

// Set replaces the note for id. An empty note removes it.
func (n *Notebook) Set(id, note string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if note == "" {
		delete(n.notes, id)
		return
	}
	n.notes[id] = note
}
