// Package hashring provides a consistent-hash ring used to shard the type
// registry's per-type object index by fully-qualified name, bounding
// per-type lock contention without a dependency-tracked partition scheme.
package hashring

import (
	"fmt"
	"hash/crc32"
	"sort"
	"sync"
)

// Ring maps keys onto a fixed set of buckets using consistent hashing with
// virtual nodes, so the bucket assignment for a key is stable as the bucket
// count changes only at construction, not at lookup time.
type Ring struct {
	mu           sync.RWMutex
	ring         map[uint32]int
	sortedHashes []uint32
	virtualNodes int
	buckets      int
}

// New builds a ring with the given number of buckets, each replicated
// virtualNodes times around the ring for even key distribution.
func New(buckets, virtualNodes int) *Ring {
	if buckets <= 0 {
		buckets = 1
	}
	if virtualNodes <= 0 {
		virtualNodes = 64
	}

	r := &Ring{
		ring:         make(map[uint32]int),
		sortedHashes: make([]uint32, 0, buckets*virtualNodes),
		virtualNodes: virtualNodes,
		buckets:      buckets,
	}

	for b := 0; b < buckets; b++ {
		for v := 0; v < virtualNodes; v++ {
			h := hashKey(virtualKey(b, v))
			r.ring[h] = b
			r.sortedHashes = append(r.sortedHashes, h)
		}
	}
	sort.Slice(r.sortedHashes, func(i, j int) bool { return r.sortedHashes[i] < r.sortedHashes[j] })

	return r
}

// Bucket returns the shard index a key is assigned to.
func (r *Ring) Bucket(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := hashKey(key)
	idx := sort.Search(len(r.sortedHashes), func(i int) bool {
		return r.sortedHashes[i] >= h
	})
	if idx == len(r.sortedHashes) {
		idx = 0
	}
	return r.ring[r.sortedHashes[idx]]
}

// Buckets returns the number of shard buckets in the ring.
func (r *Ring) Buckets() int {
	return r.buckets
}

func virtualKey(bucket, replica int) string {
	return fmt.Sprintf("%d#%d", bucket, replica)
}

func hashKey(key string) uint32 {
	return crc32.ChecksumIEEE([]byte(key))
}
