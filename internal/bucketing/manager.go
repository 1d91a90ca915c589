package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"ueba-service/internal/config"
)

// Manager maps identifiers onto stable buckets with murmur3. The same
// hashing drives two things: the Scylla partition buckets the collection
// agents write events into, and the worker partitioning used for parallel
// per-user feature extraction. Both must stay deterministic across runs.
type Manager struct {
	userBuckets  int
	eventBuckets int
	workers      int
	hasherPool   sync.Pool
}

func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		userBuckets:  cfg.Bucketing.UserBuckets,
		eventBuckets: cfg.Bucketing.EventBuckets,
		workers:      cfg.Bucketing.Workers,
	}

	// Pool of hash functions to avoid allocation overhead
	m.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return m
}

// UserBucket returns the consistent bucket for a user (0 to userBuckets-1).
func (m *Manager) UserBucket(userID string) int {
	return m.bucket(userID, m.userBuckets)
}

// EventBucket returns the consistent bucket for an event partition key.
func (m *Manager) EventBucket(key string) int {
	return m.bucket(key, m.eventBuckets)
}

// DateBucket returns the UTC date partition for a timestamp.
func (m *Manager) DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// UserBuckets returns the number of user partition buckets.
func (m *Manager) UserBuckets() int {
	if m.userBuckets < 1 {
		return 1
	}
	return m.userBuckets
}

// EventBuckets returns the number of event partition buckets.
func (m *Manager) EventBuckets() int {
	if m.eventBuckets < 1 {
		return 1
	}
	return m.eventBuckets
}

// Workers returns the configured extraction parallelism.
func (m *Manager) Workers() int {
	if m.workers < 1 {
		return 1
	}
	return m.workers
}

// PartitionUsers splits users into Workers() deterministic shards by user
// hash. Every user lands in exactly one shard regardless of input order, so
// parallel extraction never races on a user and output stays reproducible.
func (m *Manager) PartitionUsers(users []string) [][]string {
	shards := make([][]string, m.Workers())
	for _, u := range users {
		i := m.bucket(u, m.Workers())
		shards[i] = append(shards[i], u)
	}
	return shards
}

func (m *Manager) bucket(id string, buckets int) int {
	if buckets <= 0 {
		return 0
	}

	hasher := m.hasherPool.Get().(hash.Hash64)
	defer m.hasherPool.Put(hasher)

	hasher.Reset()
	_, _ = hasher.Write([]byte(id))

	return int(hasher.Sum64() % uint64(buckets))
}
