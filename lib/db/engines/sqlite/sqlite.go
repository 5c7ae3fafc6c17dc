package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/delving/itemnav/lib/db"
	_ "modernc.org/sqlite"
)

const (
	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"

	supportedFeatures = db.FeatureSet | db.FeatureSetE | db.FeatureGet | db.FeatureDelete |
		db.FeatureHas | db.FeatureDeletePrefix | db.FeatureDurable

	schema = `CREATE TABLE IF NOT EXISTS kv (
	key       TEXT PRIMARY KEY,
	value     BLOB NOT NULL,
	expire_at INTEGER NOT NULL DEFAULT 0
)`
)

type sqliteImpl struct {
	sqlDB *sql.DB
	path  string
	now   func() time.Time
}

// DBOptions configures the sqlite engine
type DBOptions struct {
	Now func() time.Time // Clock used for expiration (nil = time.Now)
}

// OpenSQLiteDB opens (or creates) the database at path and applies the schema.
// Expired rows are purged on open.
func OpenSQLiteDB(path string, opts *DBOptions) (db.KVDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	now := time.Now
	if opts != nil && opts.Now != nil {
		now = opts.Now
	}

	dsn := MemoryPath
	if path != MemoryPath {
		path = filepath.Clean(path)
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &sqliteImpl{sqlDB: sqlDB, path: path, now: now}
	if _, err := s.purge(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db.KVDB)
// --------------------------------------------------------------------------

func (s *sqliteImpl) Set(key string, value []byte) error {
	return s.SetE(key, value, 0)
}

func (s *sqliteImpl) SetE(key string, value []byte, expireIn time.Duration) error {
	var expireAt int64
	if expireIn > 0 {
		expireAt = s.now().Add(expireIn).UnixNano()
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.sqlDB.Exec(
		`INSERT INTO kv (key, value, expire_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expire_at = excluded.expire_at`,
		key, value, expireAt,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *sqliteImpl) Delete(key string) error {
	if _, err := s.sqlDB.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *sqliteImpl) DeletePrefix(prefix string) (int, error) {
	res, err := s.sqlDB.Exec(`DELETE FROM kv WHERE substr(key, 1, length(?)) = ?`, prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("delete prefix %q: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *sqliteImpl) Get(key string) ([]byte, bool, error) {
	var (
		value    []byte
		expireAt int64
	)
	err := s.sqlDB.QueryRow(`SELECT value, expire_at FROM kv WHERE key = ?`, key).Scan(&value, &expireAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}

	// expired rows are removed lazily
	if expireAt != 0 && expireAt <= s.now().UnixNano() {
		_, _ = s.sqlDB.Exec(`DELETE FROM kv WHERE key = ? AND expire_at = ?`, key, expireAt)
		return nil, false, nil
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *sqliteImpl) Has(key string) (bool, error) {
	var found int
	err := s.sqlDB.QueryRow(
		`SELECT 1 FROM kv WHERE key = ? AND (expire_at = 0 OR expire_at > ?)`,
		key, s.now().UnixNano(),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has %q: %w", key, err)
	}
	return true, nil
}

func (s *sqliteImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

func (s *sqliteImpl) GetInfo() db.DatabaseInfo {
	var keys int
	_ = s.sqlDB.QueryRow(
		`SELECT COUNT(*) FROM kv WHERE expire_at = 0 OR expire_at > ?`, s.now().UnixNano(),
	).Scan(&keys)

	return db.DatabaseInfo{
		Keys:              keys,
		DbType:            db.ImplSQLite,
		SupportedFeatures: db.FeatureList(supportedFeatures),
		Metadata: map[string]interface{}{
			"path": s.path,
		},
	}
}

func (s *sqliteImpl) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// purge deletes all rows that are expired now
func (s *sqliteImpl) purge() (int64, error) {
	res, err := s.sqlDB.Exec(`DELETE FROM kv WHERE expire_at != 0 AND expire_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge expired rows: %w", err)
	}
	return res.RowsAffected()
}
