package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"teo-dashboard/internal/metrics"
)

// MaxTTL верхняя граница времени жизни записи в памяти
const MaxTTL = 10 * time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore ограниченный по числу записей кэш в памяти процесса.
// Каждая запись истекает по своему TTL; вытеснение по LRU.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryStore создает кэш на size записей
func NewMemoryStore(size int) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, MaxTTL),
		now: time.Now,
	}
}

// Get возвращает значение, если оно не истекло
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, time.Duration, bool) {
	e, ok := m.lru.Get(key)
	if !ok {
		metrics.ObserveCache("memory", false)
		return nil, 0, false
	}

	remaining := e.expiresAt.Sub(m.now())
	if remaining <= 0 {
		m.lru.Remove(key)
		metrics.ObserveCache("memory", false)
		return nil, 0, false
	}

	metrics.ObserveCache("memory", true)
	return e.value, remaining, true
}

// Set сохраняет копию значения
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	m.lru.Add(key, memoryEntry{value: buf, expiresAt: m.now().Add(ttl)})
}

// Len количество записей, включая еще не вычищенные истекшие
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
