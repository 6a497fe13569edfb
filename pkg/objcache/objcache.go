// Package objcache implements the digest-keyed typed object cache: a
// purpose-built hash table (not Go's native map) so its bucketing,
// load-factor, and rehash behavior match the source design exactly and
// can be tested directly.
package objcache

import (
	"math"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// maxLoadFactor bounds occupancy before a rehash doubles capacity.
const maxLoadFactor = 0.65

// initialCapacity is the bucket count a freshly constructed cache starts
// with.
const initialCapacity = 32

type node[V any] struct {
	id    digest.Digest
	value V
	next  *node[V]
}

// Cache maps digests to values of type V, guaranteeing at most one live
// binding per digest. Bucket index is the digest's first 32 bits modulo
// the current capacity; collisions chain within a bucket and are
// resolved by full digest comparison.
type Cache[V any] struct {
	buckets []*node[V]
	count   int
}

// New constructs an empty cache at the initial capacity.
func New[V any]() *Cache[V] {
	return &Cache[V]{buckets: make([]*node[V], initialCapacity)}
}

// Len returns the number of live bindings.
func (c *Cache[V]) Len() int { return c.count }

func (c *Cache[V]) bucketIndex(id digest.Digest) int {
	return int(id.Bucket() % uint32(len(c.buckets)))
}

func (c *Cache[V]) threshold() int {
	return int(math.Ceil(float64(len(c.buckets)) * maxLoadFactor))
}

// Get returns the value bound to id, if any.
func (c *Cache[V]) Get(id digest.Digest) (V, bool) {
	for n := c.buckets[c.bucketIndex(id)]; n != nil; n = n.next {
		if n.id == id {
			return n.value, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether id has a live binding.
func (c *Cache[V]) Has(id digest.Digest) bool {
	_, ok := c.Get(id)
	return ok
}

// Insert binds id to value, overwriting any pre-existing binding for id.
// A rehash to double capacity is triggered if occupancy would exceed the
// load-factor bound.
func (c *Cache[V]) Insert(id digest.Digest, value V) {
	idx := c.bucketIndex(id)
	for n := c.buckets[idx]; n != nil; n = n.next {
		if n.id == id {
			n.value = value
			return
		}
	}

	c.buckets[idx] = &node[V]{id: id, value: value, next: c.buckets[idx]}
	c.count++

	if c.count >= c.threshold() {
		c.rehash()
	}
}

// Remove unbinds id, reporting whether a binding existed.
func (c *Cache[V]) Remove(id digest.Digest) bool {
	idx := c.bucketIndex(id)
	var prev *node[V]
	for n := c.buckets[idx]; n != nil; n = n.next {
		if n.id == id {
			if prev == nil {
				c.buckets[idx] = n.next
			} else {
				prev.next = n.next
			}
			c.count--
			return true
		}
		prev = n
	}
	return false
}

// ForEach enumerates every live binding exactly once, in unspecified
// order. Iteration stops early if fn returns false.
func (c *Cache[V]) ForEach(fn func(id digest.Digest, value V) bool) {
	for _, head := range c.buckets {
		for n := head; n != nil; n = n.next {
			if !fn(n.id, n.value) {
				return
			}
		}
	}
}

func (c *Cache[V]) rehash() {
	newBuckets := make([]*node[V], len(c.buckets)*2)
	for _, head := range c.buckets {
		for n := head; n != nil; {
			next := n.next
			idx := int(n.id.Bucket() % uint32(len(newBuckets)))
			n.next = newBuckets[idx]
			newBuckets[idx] = n
			n = next
		}
	}
	c.buckets = newBuckets
}
