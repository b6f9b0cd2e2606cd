package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrVersionConflict is returned by Put when the stored version moved on
var ErrVersionConflict = errors.New("bucket version conflict")

// KVStore persists opaque payloads under string keys with optimistic versioning.
//
// Versions start at 1 for a freshly created key. A missing key reports
// version 0, and Put with expectedVersion 0 only succeeds if the key is still absent.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, int64, error)
	Put(ctx context.Context, key string, payload []byte, expectedVersion int64) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// SQLStore keeps buckets in the ledger_buckets table
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore creates a SQLStore for a database opened with OpenDB
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// rebind rewrites ? placeholders into $n for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Get returns the payload and version stored under key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var payload string
	var version int64
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT payload, version FROM ledger_buckets WHERE bucket_key = ?"),
		key,
	).Scan(&payload, &version)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to get bucket: %w", err)
	}

	return []byte(payload), version, nil
}

// Put writes payload if the stored version still equals expectedVersion
func (s *SQLStore) Put(ctx context.Context, key string, payload []byte, expectedVersion int64) error {
	now := time.Now().UnixMilli()

	var result sql.Result
	var err error
	if expectedVersion == 0 {
		result, err = s.db.ExecContext(ctx,
			s.rebind(`INSERT INTO ledger_buckets (bucket_key, payload, version, updated_at)
			 VALUES (?, ?, 1, ?)
			 ON CONFLICT (bucket_key) DO NOTHING`),
			key, string(payload), now,
		)
	} else {
		result, err = s.db.ExecContext(ctx,
			s.rebind(`UPDATE ledger_buckets SET payload = ?, version = version + 1, updated_at = ?
			 WHERE bucket_key = ? AND version = ?`),
			string(payload), now, key, expectedVersion,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to put bucket: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check bucket write: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Keys lists every key starting with prefix, sorted
func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT bucket_key FROM ledger_buckets WHERE bucket_key LIKE ? ORDER BY bucket_key"),
		prefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan bucket key: %w", err)
		}
		// LIKE treats _ as a wildcard
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	return keys, nil
}

type memoryBucket struct {
	payload []byte
	version int64
}

// MemoryStore is a process-local KVStore
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]memoryBucket
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]memoryBucket)}
}

// Get returns a copy of the payload stored under key
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.buckets[key]
	if !ok {
		return nil, 0, nil
	}
	return append([]byte(nil), bucket.payload...), bucket.version, nil
}

// Put stores a copy of payload if the version matches
func (m *MemoryStore) Put(_ context.Context, key string, payload []byte, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.buckets[key]
	if current.version != expectedVersion {
		return ErrVersionConflict
	}

	m.buckets[key] = memoryBucket{
		payload: append([]byte(nil), payload...),
		version: current.version + 1,
	}
	return nil
}

// Keys lists every key starting with prefix, sorted
func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.buckets {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
