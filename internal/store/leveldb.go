package store

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelLedger is a Ledger persisted in a LevelDB directory, so that an
// interrupted receive session survives a restart of the receiver.
type LevelLedger struct {
	sessionKey string
	path       string
	db         *leveldb.DB

	quitLock sync.RWMutex // Guards db against a concurrent Close
}

// OpenLevelLedger opens (or creates) the database at path
func OpenLevelLedger(path, sessionKey string) (*LevelLedger, error) {
	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}

	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: 1 * opt.MiB,
		WriteBuffer:        1 * opt.MiB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database %s: %w", path, err)
	}

	return &LevelLedger{
		sessionKey: sessionKey,
		path:       path,
		db:         db,
	}, nil
}

func (l *LevelLedger) SessionKey() string {
	return l.sessionKey
}

func (l *LevelLedger) Persistent() bool {
	return true
}

// Path returns the database directory
func (l *LevelLedger) Path() string {
	return l.path
}

func (l *LevelLedger) Put(index int, content string) error {
	l.quitLock.RLock()
	defer l.quitLock.RUnlock()

	if l.db == nil {
		return ErrClosed
	}
	if err := l.db.Put([]byte(blockKey(l.sessionKey, index)), []byte(content), nil); err != nil {
		return fmt.Errorf("failed to store block %d: %w", index, err)
	}
	return nil
}

func (l *LevelLedger) Get(index int) (string, bool, error) {
	l.quitLock.RLock()
	defer l.quitLock.RUnlock()

	if l.db == nil {
		return "", false, ErrClosed
	}
	value, err := l.db.Get([]byte(blockKey(l.sessionKey, index)), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read block %d: %w", index, err)
	}
	return string(value), true, nil
}

func (l *LevelLedger) SetTotal(total int) error {
	l.quitLock.RLock()
	defer l.quitLock.RUnlock()

	if l.db == nil {
		return ErrClosed
	}
	if err := l.db.Put([]byte(totalKey(l.sessionKey)), []byte(strconv.Itoa(total)), nil); err != nil {
		return fmt.Errorf("failed to store total: %w", err)
	}
	return nil
}

func (l *LevelLedger) Total() (int, error) {
	l.quitLock.RLock()
	defer l.quitLock.RUnlock()

	if l.db == nil {
		return 0, ErrClosed
	}
	value, err := l.db.Get([]byte(totalKey(l.sessionKey)), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read total: %w", err)
	}
	return parseTotal(string(value))
}

func (l *LevelLedger) Indices() ([]int, error) {
	l.quitLock.RLock()
	defer l.quitLock.RUnlock()

	if l.db == nil {
		return nil, ErrClosed
	}

	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefix(l.sessionKey))), nil)
	defer iter.Release()

	var indices []int
	for iter.Next() {
		if index, ok := parseIndex(l.sessionKey, string(iter.Key())); ok {
			indices = append(indices, index)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger: %w", err)
	}
	return sortedIndices(indices), nil
}

// Reset deletes every key of the session in one batch. Keys of other
// sessions sharing the prefix are left alone.
func (l *LevelLedger) Reset() error {
	l.quitLock.RLock()
	defer l.quitLock.RUnlock()

	if l.db == nil {
		return ErrClosed
	}

	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefix(l.sessionKey))), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		key := string(iter.Key())
		if _, ok := parseIndex(l.sessionKey, key); ok || key == totalKey(l.sessionKey) {
			batch.Delete([]byte(key))
		}
	}
	err := iter.Error()
	iter.Release()
	if err != nil {
		return fmt.Errorf("failed to iterate ledger: %w", err)
	}

	if err := l.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	return nil
}

// Close flushes and closes the database. Entries are kept on disk.
func (l *LevelLedger) Close() error {
	l.quitLock.Lock()
	defer l.quitLock.Unlock()

	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
