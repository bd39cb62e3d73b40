// Package journal keeps an append-only audit log of one simulator session.
// Entries are never read back into a simulator.
package journal

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/papertrader/internal/domain"
)

const (
	DefaultDir   = "./wal/sessions"
	segmentLimit = 1000
	maxSegments  = 100

	tradeKeyPrefix = "trade_"
	resetKeyPrefix = "reset_"
)

// ErrInvalidEntry marks an entry that can never be written.
var ErrInvalidEntry = errors.New("invalid journal entry")

// EntryType distinguishes journal entries.
type EntryType string

const (
	EntryTrade EntryType = "trade"
	EntryReset EntryType = "reset"
)

// Entry is one journal record.
type Entry struct {
	Index       uint64              `json:"index"`
	Type        EntryType           `json:"type"`
	Time        time.Time           `json:"ts"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Snapshot    domain.Snapshot     `json:"snapshot"`
}

// WALStore persists journal entries of a single session in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
	dir string
}

// NewWALStore opens a WAL under dir/sessionID.
func NewWALStore(dir, sessionID string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	sessionDir := filepath.Join(dir, sessionID)
	cfg := gowal.Config{
		Dir:              sessionDir,
		Prefix:           "journal_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init session journal WAL")
	}

	return &WALStore{wal: wal, dir: sessionDir}, nil
}

// Dir returns the directory holding this session's segments.
func (s *WALStore) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// SaveTrade appends an executed transaction.
func (s *WALStore) SaveTrade(tx domain.Transaction, snapshot domain.Snapshot) (uint64, error) {
	if tx.ID == "" {
		return 0, errors.Wrap(ErrInvalidEntry, "transaction id is required")
	}
	return s.write(tradeKeyPrefix+tx.ID, Entry{Type: EntryTrade, Time: tx.Time, Transaction: &tx, Snapshot: snapshot})
}

// SaveReset appends a reset marker.
func (s *WALStore) SaveReset(at time.Time, snapshot domain.Snapshot) (uint64, error) {
	return s.write(fmt.Sprintf("%s%d", resetKeyPrefix, at.UnixNano()), Entry{Type: EntryReset, Time: at, Snapshot: snapshot})
}

func (s *WALStore) write(key string, entry Entry) (uint64, error) {
	if s == nil || s.wal == nil {
		return 0, errors.New("session journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Index = s.wal.CurrentIndex() + 1
	payload, err := json.Marshal(entry)
	if err != nil {
		return 0, errors.Wrap(err, "marshal journal entry")
	}

	if err := s.wal.Write(entry.Index, key, payload); err != nil {
		return 0, errors.Wrap(err, "write journal entry")
	}
	return entry.Index, nil
}

// EntriesAfter returns all entries written after the provided WAL index, in index order.
func (s *WALStore) EntriesAfter(index uint64) ([]Entry, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("session journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.wal.CurrentIndex() <= index {
		return nil, nil
	}

	var entries []Entry
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, tradeKeyPrefix) && !strings.HasPrefix(msg.Key, resetKeyPrefix) {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(msg.Value, &entry); err != nil {
			return nil, errors.Wrap(err, "decode journal entry")
		}
		if entry.Index > index {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })

	return entries, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("session journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
