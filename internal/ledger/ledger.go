// Package ledger remembers which reminder slots have already produced a
// notification so that repeated ticks inside one slot stay silent.
package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Key is the storage key the ledger lives under.
const Key = "nestcue.sent-slots"

// Retention is how long a slot is remembered.
const Retention = 5 * 24 * time.Hour

// Storage is a minimal key/value store. Get returns nil, nil for a missing key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Ledger is the persisted set of sent slot keys.
type Ledger struct {
	mu    sync.Mutex
	store Storage
}

func New(store Storage) *Ledger {
	return &Ledger{store: store}
}

// HasSent reports whether slotKey is present after pruning.
func (l *Ledger) HasSent(slotKey string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(now)
	if err != nil {
		return false, err
	}
	_, ok := entries[slotKey]
	return ok, nil
}

// MarkSent records slotKey at now and persists the pruned map.
func (l *Ledger) MarkSent(slotKey string, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(now)
	if err != nil {
		return err
	}
	entries[slotKey] = now.UnixMilli()
	return l.save(entries)
}

// Entries returns a pruned copy of the ledger.
func (l *Ledger) Entries(now time.Time) (map[string]time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(now)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(entries))
	for k, ms := range entries {
		out[k] = time.UnixMilli(ms)
	}
	return out, nil
}

// load reads and prunes the map. Corrupt or missing data reads as empty.
func (l *Ledger) load(now time.Time) (map[string]int64, error) {
	raw, err := l.store.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	entries := make(map[string]int64)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entries); err != nil {
			entries = make(map[string]int64)
		}
	}

	cutoff := now.Add(-Retention).UnixMilli()
	for k, ms := range entries {
		if ms < cutoff {
			delete(entries, k)
		}
	}
	return entries, nil
}

func (l *Ledger) save(entries map[string]int64) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := l.store.Set(Key, raw); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
