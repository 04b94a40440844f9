package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/petrodata/brentdash/errors"
)

type sqlCacher struct {
	db        *sql.DB
	namespace string
	driver    string
}

// Raw payloads ([]byte, string) are stored untouched so Get hands back
// exactly the bytes that went in; everything else is kept as json. The
// encoding column records which, so Get can decode symmetrically.
const (
	encodingBytes  = "bytes"
	encodingString = "string"
	encodingJSON   = "json"
)

// NewSqlCacher returns a Cacher persisted in a relational table, so cached
// responses survive restarts. driver must be "sqlite3" or "mysql"; the caller
// imports the matching database/sql driver.
func NewSqlCacher(ctx context.Context, db *sql.DB, driver string, cacheNamespace string) (Cacher, error) {
	var createTable string
	switch driver {
	case "mysql":
		createTable = "CREATE TABLE IF NOT EXISTS sqlcacher_store (" +
			"id INT AUTO_INCREMENT PRIMARY KEY," +
			"namespace VARCHAR(255) NOT NULL," +
			"`key` VARCHAR(255) NOT NULL," +
			"`value` TEXT NOT NULL," +
			"encoding VARCHAR(16) NOT NULL," +
			"expires_at DATETIME," +
			"UNIQUE INDEX idx_namespace_key (namespace, `key`)" +
			");"

	case "sqlite3":
		createTable = "CREATE TABLE IF NOT EXISTS sqlcacher_store (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT," +
			"namespace TEXT NOT NULL," +
			"`key` TEXT NOT NULL," +
			"`value` TEXT NOT NULL," +
			"encoding TEXT NOT NULL," +
			"expires_at DATETIME," +
			"UNIQUE(namespace, `key`)" +
			");"

	default:
		return nil, errors.Newf("error in creating sql cacher, unsupported database driver: %s", driver)
	}

	_, err := db.ExecContext(ctx, createTable)
	if err != nil {
		return nil, errors.Wrap(err, "error in creating table sqlcacher_store")
	}

	return &sqlCacher{
		db:        db,
		namespace: cacheNamespace,
		driver:    driver,
	}, nil
}

func (s *sqlCacher) Remember(ctx context.Context, key string, value any, ttl time.Duration) error {
	var encoding string
	var bs []byte
	switch v := value.(type) {
	case []byte:
		encoding, bs = encodingBytes, v
	case string:
		encoding, bs = encodingString, []byte(v)
	default:
		marshaled, err := json.Marshal(value)
		if err != nil {
			return errors.Wrap(err, "error in marshaling value into json string")
		}
		encoding, bs = encodingJSON, marshaled
	}

	var upsert string
	switch s.driver {
	case "mysql":
		upsert = "INSERT INTO sqlcacher_store (namespace, `key`, `value`, encoding, expires_at) VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE `value` = VALUES(`value`), encoding = VALUES(encoding), expires_at = VALUES(expires_at);"
	case "sqlite3":
		upsert = "INSERT INTO sqlcacher_store (namespace, `key`, `value`, encoding, expires_at) VALUES (?,?,?,?,?) ON CONFLICT(namespace, `key`) DO UPDATE SET `value` = excluded.`value`, encoding = excluded.encoding, expires_at = excluded.expires_at;"
	default:
		return errors.Newf("unsupported driver '%s'", s.driver)
	}

	_, err := s.db.ExecContext(ctx, upsert, s.namespace, key, bs, encoding, time.Now().Add(ttl))
	if err != nil {
		return errors.Wrap(err, "error in inserting new cache entry")
	}

	return nil
}

func (s *sqlCacher) Get(ctx context.Context, key string) (any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, `value`, encoding, expires_at FROM sqlcacher_store WHERE namespace = ? AND `key` = ?", s.namespace, key)
	if err != nil {
		return nil, errors.Wrap(err, "error in querying for sqlcacher get")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNoEntry
	}

	var id int64
	var value string
	var encoding string
	var expiresAt time.Time

	err = rows.Scan(&id, &value, &encoding, &expiresAt)
	if err != nil {
		return nil, errors.Wrap(err, "cannot scan values returned by database in sql cacher get")
	}

	if time.Now().After(expiresAt) {
		rows.Close()
		s.db.ExecContext(ctx, "DELETE FROM sqlcacher_store WHERE id = ?", id)
		return nil, ErrEntryExpired
	}

	switch encoding {
	case encodingBytes:
		return []byte(value), nil
	case encodingString:
		return value, nil
	case encodingJSON:
		var out any
		if err := json.Unmarshal([]byte(value), &out); err != nil {
			return nil, errors.Wrap(err, "cannot unmarshal json cache entry")
		}
		return out, nil
	default:
		return nil, errors.Newf("unknown cache entry encoding '%s'", encoding)
	}
}

func (s *sqlCacher) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sqlcacher_store WHERE namespace = ?", s.namespace)
	return errors.Wrap(err, "error in sql cacher clear")
}
