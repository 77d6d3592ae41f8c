package preview

import "sync"

// TextBodyCache maps corpus paths to loaded text. Entries are never evicted;
// concurrent writers to one key resolve last-writer-wins.
type TextBodyCache struct {
	mu     sync.RWMutex
	bodies map[string]string
}

// NewTextBodyCache creates an empty cache
func NewTextBodyCache() *TextBodyCache {
	return &TextBodyCache{bodies: make(map[string]string)}
}

func (c *TextBodyCache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.bodies[path]
	return body, ok
}

func (c *TextBodyCache) Set(path string, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies[path] = body
}

func (c *TextBodyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bodies)
}
