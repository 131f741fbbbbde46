// Package state implements the persistence gateway for the simulator: named
// state buckets with whole-bucket read-modify-write semantics, backed by a
// write-ahead log so the latest value per bucket survives restarts.
package state

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

// Bucket names. Wallet, positions and trade history are separate buckets so
// unrelated writes cannot clobber each other; writes to the same bucket are
// last-writer-wins.
const (
	BucketWallet       = "wallet"
	BucketPositions    = "positions"
	BucketTradeHistory = "trade_history"
	BucketUISettings   = "ui_settings"
)

const (
	defaultStateDir = "./wal/papersim"
	segmentLimit    = 1000
	maxSegments     = 100
)

// WALStore persists state buckets in a WAL. Replay on open reconstructs the
// latest payload per bucket; a bucket value is durable once Write returns.
type WALStore struct {
	wal    *gowal.Wal
	mu     sync.RWMutex
	latest map[string][]byte
}

// NewWALStore opens (or creates) the bucket store under dir and replays the
// log to recover the latest value of every bucket.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultStateDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "state_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init state WAL")
	}

	latest := make(map[string][]byte)
	for msg := range wal.Iterator() {
		latest[msg.Key] = msg.Value
	}

	return &WALStore{wal: wal, latest: latest}, nil
}

// Read returns the current value of each requested bucket. Buckets that were
// never written are absent from the result; callers treat absence as
// default-initialized state.
func (s *WALStore) Read(keys ...string) (map[string][]byte, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("state store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, ok := s.latest[key]
		if !ok {
			continue
		}
		buf := make([]byte, len(value))
		copy(buf, value)
		result[key] = buf
	}
	return result, nil
}

// Write appends every bucket payload to the WAL and only then publishes it
// to readers. A failed append leaves previously read values intact.
func (s *WALStore) Write(buckets map[string][]byte) error {
	if s == nil || s.wal == nil {
		return errors.New("state store is not initialized")
	}
	if len(buckets) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range buckets {
		nextIndex := s.wal.CurrentIndex() + 1
		if err := s.wal.Write(nextIndex, key, value); err != nil {
			return errors.Wrapf(err, "write bucket %s", key)
		}
		s.latest[key] = value
	}
	return nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("state store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
