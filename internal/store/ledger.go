// Package store keeps the blocks of a receive session keyed by
// "<sessionKey>-<index>", with the adopted total under "<sessionKey>-total".
package store

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultSessionKey is the key prefix used when none is configured
const DefaultSessionKey = "qr-scan-data"

const totalSuffix = "total"

var ErrClosed = errors.New("ledger store is closed")

// Ledger is the storage behind a reception ledger. Only the reassembler
// writes to it.
type Ledger interface {
	// Put stores the content of a block, replacing any previous content
	Put(index int, content string) error
	// Get returns the content of a block and whether it is present
	Get(index int) (string, bool, error)
	// SetTotal records the block total adopted by the session
	SetTotal(total int) error
	// Total returns the recorded block total, or 0 if none
	Total() (int, error)
	// Indices returns the stored block indices in ascending order
	Indices() ([]int, error)
	// Reset removes every entry of the session
	Reset() error
	Close() error
	SessionKey() string
	// Persistent reports whether entries outlive the process
	Persistent() bool
}

func blockKey(sessionKey string, index int) string {
	return sessionKey + "-" + strconv.Itoa(index)
}

func totalKey(sessionKey string) string {
	return sessionKey + "-" + totalSuffix
}

func keyPrefix(sessionKey string) string {
	return sessionKey + "-"
}

// parseIndex extracts the block index from a session key, skipping the total entry
func parseIndex(sessionKey, key string) (int, bool) {
	suffix, ok := strings.CutPrefix(key, keyPrefix(sessionKey))
	if !ok || suffix == totalSuffix {
		return 0, false
	}
	index, err := strconv.Atoi(suffix)
	if err != nil || index <= 0 || strconv.Itoa(index) != suffix {
		return 0, false
	}
	return index, true
}

func parseTotal(raw string) (int, error) {
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid stored total %q: %w", raw, err)
	}
	return total, nil
}

func sortedIndices(indices []int) []int {
	sort.Ints(indices)
	return indices
}
