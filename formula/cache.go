package formula

import (
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// CacheStats reports the state of a [Cache]. ParseCount and HitCount are
// cumulative and survive [Cache.Clear].
type CacheStats struct {
	Entries    int64 `json:"entries"`
	ParseCount int64 `json:"parseCount"`
	HitCount   int64 `json:"hitCount"`
}

// Cache memoizes compiled programs by normalized expression.
//
// Entries live in a generation that is replaced wholesale by [Cache.Clear],
// so readers observe either the old or the new generation and never a
// partially cleared one.
type Cache struct {
	hash   func(string) uint64
	gen    atomic.Pointer[generation]
	parses atomic.Int64
	hits   atomic.Int64
}

type generation struct {
	programs sync.Map // uint64 -> cached
	entries  atomic.Int64
}

type cached struct {
	expr string
	prog Program
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{hash: xxh3.HashString}
	c.gen.Store(&generation{})

	return c
}

func (c *Cache) current() *generation {
	if g := c.gen.Load(); g != nil {
		return g
	}

	c.gen.CompareAndSwap(nil, &generation{})

	return c.gen.Load()
}

func (c *Cache) key(expr string) uint64 {
	if c.hash == nil {
		return xxh3.HashString(expr)
	}

	return c.hash(expr)
}

// Lookup returns the program cached for expr. The stored expression is
// compared, so an expression whose hash collides with a cached one misses.
func (c *Cache) Lookup(expr string) (Program, bool) {
	v, ok := c.current().programs.Load(c.key(expr))
	if !ok || v.(cached).expr != expr {
		return nil, false
	}

	c.hits.Add(1)

	return v.(cached).prog, true
}

// Insert stores prog for expr unless an entry already exists. On a hash
// collision with a different expression the first entry is kept.
func (c *Cache) Insert(expr string, prog Program) {
	g := c.current()
	if _, loaded := g.programs.LoadOrStore(c.key(expr), cached{expr: expr, prog: prog}); !loaded {
		g.entries.Add(1)
	}
}

// Program returns the cached program for expr, compiling and inserting it
// on a miss. Compilation failures are not cached. An expression that lost
// its hash slot to another is compiled, and counted as a parse, every call.
func (c *Cache) Program(expr string, compile func(string) (Program, error)) (Program, bool, error) {
	if prog, ok := c.Lookup(expr); ok {
		return prog, true, nil
	}

	prog, err := compile(expr)
	if err != nil {
		return nil, false, err
	}

	c.parses.Add(1)
	c.Insert(expr, prog)

	return prog, false, nil
}

// Clear drops every entry with a single pointer swap.
func (c *Cache) Clear() { c.gen.Store(&generation{}) }

// Stats returns the current statistics.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:    c.current().entries.Load(),
		ParseCount: c.parses.Load(),
		HitCount:   c.hits.Load(),
	}
}
