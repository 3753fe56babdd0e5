package store

import (
	"strconv"
	"sync"
)

// MemoryLedger is a Ledger that lives for the duration of the process
type MemoryLedger struct {
	sessionKey string
	entries    map[string]string
	closed     bool
	mu         sync.RWMutex
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger(sessionKey string) *MemoryLedger {
	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}
	return &MemoryLedger{
		sessionKey: sessionKey,
		entries:    make(map[string]string),
	}
}

func (m *MemoryLedger) SessionKey() string {
	return m.sessionKey
}

func (m *MemoryLedger) Persistent() bool {
	return false
}

func (m *MemoryLedger) Put(index int, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.entries[blockKey(m.sessionKey, index)] = content
	return nil
}

func (m *MemoryLedger) Get(index int) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	content, ok := m.entries[blockKey(m.sessionKey, index)]
	return content, ok, nil
}

func (m *MemoryLedger) SetTotal(total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.entries[totalKey(m.sessionKey)] = strconv.Itoa(total)
	return nil
}

func (m *MemoryLedger) Total() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrClosed
	}
	raw, ok := m.entries[totalKey(m.sessionKey)]
	if !ok {
		return 0, nil
	}
	return parseTotal(raw)
}

func (m *MemoryLedger) Indices() ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	indices := make([]int, 0, len(m.entries))
	for key := range m.entries {
		if index, ok := parseIndex(m.sessionKey, key); ok {
			indices = append(indices, index)
		}
	}
	return sortedIndices(indices), nil
}

// Reset deletes the entries of the session, leaving any other keys in place
func (m *MemoryLedger) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for key := range m.entries {
		if _, ok := parseIndex(m.sessionKey, key); ok || key == totalKey(m.sessionKey) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Close drops all entries; the ledger cannot be used afterwards
func (m *MemoryLedger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	m.closed = true
	return nil
}
