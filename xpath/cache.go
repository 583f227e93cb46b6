package xpath

import (
	"sync"
)

// Cache keeps compiled executables keyed by expression text and the
// fingerprint of the static context they were compiled under. Entries
// are evicted oldest first once the limit is reached. Safe for
// concurrent use.
type Cache struct {
	mu    sync.Mutex
	limit int
	known map[cacheKey]*Executable
	order []cacheKey
}

type cacheKey struct {
	query string
	env   uint64
}

// NewCache returns a cache bounded to limit entries. A limit of zero or
// less means unbounded.
func NewCache(limit int) *Cache {
	return &Cache{
		limit: limit,
		known: make(map[cacheKey]*Executable),
	}
}

// Get returns the executable for query under env, compiling and storing
// it on a miss. A nil env means the default static context.
func (c *Cache) Get(query string, env *StaticContext) (*Executable, error) {
	if env == nil {
		env = NewStaticContext()
	}
	key := cacheKey{
		query: query,
		env:   env.fingerprint(query),
	}
	c.mu.Lock()
	exec, ok := c.known[key]
	c.mu.Unlock()
	if ok {
		return exec, nil
	}
	expr, err := ParseString(query)
	if err != nil {
		return nil, err
	}
	exec, err = Compile(expr, env)
	if err != nil {
		return nil, err
	}
	c.put(key, exec)
	return exec, nil
}

// Len returns the number of cached executables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.known)
}

func (c *Cache) put(key cacheKey, exec *Executable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.known[key]; ok {
		return
	}
	c.known[key] = exec
	c.order = append(c.order, key)
	for c.limit > 0 && len(c.known) > c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.known, oldest)
	}
}
