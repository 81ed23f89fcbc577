// Package rescache keeps recently decompressed resources, keyed by the
// content of the compressed input. Game data tends to ship the same
// resource under several names.
package rescache

import (
	"bytes"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/premtools/unpack/prem"
)

type entry struct {
	compressed []byte
	out        []byte
}

// Cache is safe for concurrent use.
type Cache struct {
	lru    *lru.Cache[uint64, entry]
	hits   atomic.Int64
	misses atomic.Int64
}

// New returns a cache holding at most size resources; size must be positive.
func New(size int) (*Cache, error) {
	l, err := lru.New[uint64, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Decompress returns the decompressed form of data, decoding it only if an
// identical input has not been seen recently. The returned slice is shared
// between callers and must not be modified.
func (c *Cache) Decompress(data []byte) (out []byte, hit bool, err error) {
	key := xxhash.Sum64(data)
	if e, ok := c.lru.Get(key); ok && bytes.Equal(e.compressed, data) {
		c.hits.Add(1)
		return e.out, true, nil
	}
	c.misses.Add(1)

	out, err = prem.DecompressBytes(data)
	if err != nil {
		return nil, false, err
	}
	c.lru.Add(key, entry{compressed: bytes.Clone(data), out: out})
	return out, false, nil
}

// Len is the number of resources currently held.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Stats returns the hit and miss counts so far.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
