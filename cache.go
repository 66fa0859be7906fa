package poetbook

import (
	"sync"
	"time"

	"github.com/eringen/poetbook/collection"
)

// CardCache keeps rendered share cards so crawlers fetching the same image
// do not re-rasterize it. An entry is reused while the poem's visible text is
// unchanged and it is younger than the TTL.
type CardCache struct {
	mu      sync.RWMutex
	entries map[string]cardEntry
	ttl     time.Duration
	now     func() time.Time
	render  func(collection.Poem, string) ([]byte, error)
}

type cardEntry struct {
	key     string
	png     []byte
	fetched time.Time
}

// NewCardCache creates a CardCache whose entries expire after ttl.
func NewCardCache(ttl time.Duration) *CardCache {
	return &CardCache{
		entries: make(map[string]cardEntry),
		ttl:     ttl,
		now:     time.Now,
		render:  renderCard,
	}
}

func cardKey(p collection.Poem, siteName string) string {
	return p.Title + "\x00" + p.Subtitle + "\x00" + p.Excerpt + "\x00" + siteName
}

func (c *CardCache) valid(e cardEntry, key string) bool {
	return e.png != nil && e.key == key && c.now().Sub(e.fetched) < c.ttl
}

// Card returns the PNG share card for p, rendering it on a miss.
func (c *CardCache) Card(p collection.Poem, siteName string) ([]byte, error) {
	key := cardKey(p, siteName)

	c.mu.RLock()
	e, ok := c.entries[p.ID]
	c.mu.RUnlock()
	if ok && c.valid(e, key) {
		return e.png, nil
	}

	b, err := c.render(p, siteName)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[p.ID] = cardEntry{key: key, png: b, fetched: c.now()}
	c.mu.Unlock()
	return b, nil
}

// Forget drops the card cached for id.
func (c *CardCache) Forget(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Len reports how many cards are cached.
func (c *CardCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate clears the cache so the next read renders afresh.
func (c *CardCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cardEntry)
	c.mu.Unlock()
}
