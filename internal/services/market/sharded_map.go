package market

import (
	"hash/fnv"
	"sync"

	"github.com/hxuan190/stableswap-engine/internal/domain"
)

const numShards = 16

// ShardedPoolMap is a sharded map for pools to reduce lock contention
type ShardedPoolMap struct {
	shards [numShards]poolShard
}

type poolShard struct {
	mu    sync.RWMutex
	pools map[string]*domain.Pool
}

func NewShardedPoolMap() *ShardedPoolMap {
	m := &ShardedPoolMap{}
	for i := 0; i < numShards; i++ {
		m.shards[i].pools = make(map[string]*domain.Pool)
	}
	return m
}

func (m *ShardedPoolMap) getShard(id string) *poolShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &m.shards[h.Sum32()%numShards]
}

func (m *ShardedPoolMap) Get(id string) (*domain.Pool, bool) {
	shard := m.getShard(id)
	shard.mu.RLock()
	pool, ok := shard.pools[id]
	shard.mu.RUnlock()
	return pool, ok
}

// Set stores pool and reports whether it replaced an existing entry.
func (m *ShardedPoolMap) Set(id string, pool *domain.Pool) bool {
	shard := m.getShard(id)
	shard.mu.Lock()
	_, existed := shard.pools[id]
	shard.pools[id] = pool
	shard.mu.Unlock()
	return existed
}

func (m *ShardedPoolMap) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].pools)
		m.shards[i].mu.RUnlock()
	}
	return total
}

// Range iterates over all pools (acquires locks per shard)
func (m *ShardedPoolMap) Range(f func(id string, pool *domain.Pool) bool) {
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for k, v := range m.shards[i].pools {
			if !f(k, v) {
				m.shards[i].mu.RUnlock()
				return
			}
		}
		m.shards[i].mu.RUnlock()
	}
}

func (m *ShardedPoolMap) GetAll() []*domain.Pool {
	result := make([]*domain.Pool, 0, m.Len())
	m.Range(func(_ string, pool *domain.Pool) bool {
		result = append(result, pool)
		return true
	})
	return result
}
