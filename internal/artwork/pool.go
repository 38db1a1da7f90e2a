package artwork

import (
	"container/list"
	"strings"
	"sync"
)

// PoolStats holds occupancy and churn figures for one capacity pool
type PoolStats struct {
	ItemCount int
	Bytes     int64
	MaxItems  int
	MaxBytes  int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// pool is a cost-aware LRU capacity pool. Each entry carries the
// decoded image's byte cost; inserts evict least-recently-used entries
// until both the item-count limit and the byte budget hold.
type pool struct {
	mu sync.Mutex

	maxItems int
	maxBytes int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	hits      int64
	misses    int64
	evictions int64
}

type poolEntry struct {
	key string
	img *Image
}

func newPool(maxItems int, maxBytes int64) *pool {
	return &pool{
		maxItems: maxItems,
		maxBytes: maxBytes,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (p *pool) get(key string) (*Image, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elem, ok := p.items[key]
	if !ok {
		p.misses++
		return nil, false
	}
	p.eviction.MoveToFront(elem)
	p.hits++
	return elem.Value.(*poolEntry).img, true
}

func (p *pool) put(key string, img *Image) {
	if img == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if elem, ok := p.items[key]; ok {
		entry := elem.Value.(*poolEntry)
		p.size += img.Cost - entry.img.Cost
		entry.img = img
		p.eviction.MoveToFront(elem)
		p.enforceLimits()
		return
	}

	entry := &poolEntry{key: key, img: img}
	elem := p.eviction.PushFront(entry)
	p.items[key] = elem
	p.size += img.Cost
	p.enforceLimits()
}

func (p *pool) delete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if elem, ok := p.items[key]; ok {
		p.removeElement(elem)
	}
}

// deletePrefix removes every entry whose key starts with prefix and
// returns how many were removed. Used to sweep all cached sizes of one
// entity out of the pool.
func (p *pool) deletePrefix(prefix string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for key, elem := range p.items {
		if strings.HasPrefix(key, prefix) {
			p.removeElement(elem)
			removed++
		}
	}
	return removed
}

func (p *pool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = make(map[string]*list.Element)
	p.eviction.Init()
	p.size = 0
}

func (p *pool) resize(maxItems int, maxBytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.maxItems = maxItems
	p.maxBytes = maxBytes
	p.enforceLimits()
}

func (p *pool) stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		ItemCount: len(p.items),
		Bytes:     p.size,
		MaxItems:  p.maxItems,
		MaxBytes:  p.maxBytes,
		Hits:      p.hits,
		Misses:    p.misses,
		Evictions: p.evictions,
	}
}

// enforceLimits evicts from the LRU end until both limits hold.
// Must be called with the lock held.
func (p *pool) enforceLimits() {
	for (p.size > p.maxBytes || len(p.items) > p.maxItems) && p.eviction.Len() > 0 {
		elem := p.eviction.Back()
		if elem == nil {
			return
		}
		p.removeElement(elem)
		p.evictions++
	}
}

// removeElement unlinks an entry. Must be called with the lock held.
func (p *pool) removeElement(elem *list.Element) {
	p.eviction.Remove(elem)
	entry := elem.Value.(*poolEntry)
	delete(p.items, entry.key)
	p.size -= entry.img.Cost
}
