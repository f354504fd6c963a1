package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Preview is a revocable handle to image bytes held for display.
type Preview struct {
	ID          string
	ContentType string
	Data        []byte
}

// PreviewStore creates and releases preview handles.
type PreviewStore interface {
	Create(data []byte, contentType string) (string, error)
	Open(id string) (Preview, bool)
	Revoke(id string)
}

// Previews is the in-memory PreviewStore shared by all forms of a server.
type Previews struct {
	mu    sync.RWMutex
	items map[string]Preview
}

// NewPreviews returns an empty store.
func NewPreviews() *Previews {
	return &Previews{items: make(map[string]Preview)}
}

// Create registers data and returns its handle.
func (p *Previews) Create(data []byte, contentType string) (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generate preview id: %w", err)
	}
	id := hex.EncodeToString(raw[:])

	p.mu.Lock()
	p.items[id] = Preview{ID: id, ContentType: contentType, Data: data}
	p.mu.Unlock()
	return id, nil
}

// Open looks up a live handle.
func (p *Previews) Open(id string) (Preview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pv, ok := p.items[id]
	return pv, ok
}

// Revoke releases a handle. Unknown or already revoked ids are ignored.
func (p *Previews) Revoke(id string) {
	p.mu.Lock()
	delete(p.items, id)
	p.mu.Unlock()
}

// Len is the number of live handles.
func (p *Previews) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}
