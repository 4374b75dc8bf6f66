package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of KeyValueStore.
// Leases are bounded by poolSize, like a real connection pool.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	sets   map[string]map[string]struct{}
	leases chan struct{}
}

// DefaultMemoryPoolSize is used when NewMemoryStore gets a non-positive size.
const DefaultMemoryPoolSize = 10

// NewMemoryStore creates a new in-memory store allowing poolSize concurrent leases.
func NewMemoryStore(poolSize int) *MemoryStore {
	if poolSize <= 0 {
		poolSize = DefaultMemoryPoolSize
	}

	return &MemoryStore{
		values: make(map[string]string),
		sets:   make(map[string]map[string]struct{}),
		leases: make(chan struct{}, poolSize),
	}
}

func (m *MemoryStore) WithConn(ctx context.Context, fn func(Conn) error) error {
	select {
	case m.leases <- struct{}{}:
	case <-ctx.Done():
		return errors.Join(ErrUnavailable, ctx.Err())
	}

	defer func() { <-m.leases }()

	return fn(memoryConn{store: m})
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Members returns the sorted members of a set. It is not part of Conn.
func (m *MemoryStore) Members(setKey string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := make([]string, 0, len(m.sets[setKey]))
	for member := range m.sets[setKey] {
		members = append(members, member)
	}

	sort.Strings(members)

	return members
}

type memoryConn struct {
	store *MemoryStore
}

func (c memoryConn) Get(_ context.Context, key string) (string, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	value, ok := c.store.values[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (c memoryConn) Set(_ context.Context, key, value string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.store.values[key] = value

	return nil
}

func (c memoryConn) AddToSet(_ context.Context, setKey, member string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	set, ok := c.store.sets[setKey]
	if !ok {
		set = make(map[string]struct{})
		c.store.sets[setKey] = set
	}

	set[member] = struct{}{}

	return nil
}

// Compile-time check.
var _ KeyValueStore = (*MemoryStore)(nil)
