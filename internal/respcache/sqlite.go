package respcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"moviematch/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache database was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLite is an on-disk Fetcher backed by a single SQLite table.
type SQLite struct {
	db   *sql.DB
	path string
	opts options
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("open response cache: path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLite{db: db, path: path, opts: buildOptions(opts)}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild it)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLite) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// GetOrFetch implements Fetcher. Storage failures are logged and treated as
// misses so a broken cache never hides a good upstream response.
func (s *SQLite) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (Result, error) {
	if ttl > 0 {
		result, ok, err := s.lookup(ctx, key)
		if err != nil {
			logging.WarnWithContext(s.opts.logger, "cache read failed", "respcache_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on "+s.path),
				logging.String(logging.FieldImpact, "response fetched from upstream"))
		}
		if ok {
			return result, nil
		}
	}

	body, err := fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	if ttl <= 0 {
		return Result{Body: body}, nil
	}

	storedAt := s.opts.now()
	if err := s.store(ctx, key, labelFromContext(ctx), body, storedAt, storedAt.Add(ttl)); err != nil {
		logging.WarnWithContext(s.opts.logger, "cache write failed", "respcache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on "+s.path),
			logging.String(logging.FieldImpact, "next lookup will call upstream again"))
		return Result{Body: body}, nil
	}
	return Result{Body: body, StoredAt: storedAt}, nil
}

func (s *SQLite) lookup(ctx context.Context, key string) (Result, bool, error) {
	var (
		body      []byte
		storedAt  int64
		expiresAt int64
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT body, stored_at, expires_at FROM responses WHERE key = ?", key,
		).Scan(&body, &storedAt, &expiresAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	if !s.opts.now().Before(time.Unix(0, expiresAt)) {
		return Result{}, false, nil
	}
	return Result{Body: body, Hit: true, StoredAt: time.Unix(0, storedAt)}, true, nil
}

func (s *SQLite) store(ctx context.Context, key, label string, body []byte, storedAt, expiresAt time.Time) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO responses (key, label, body, stored_at, expires_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET label = excluded.label, body = excluded.body,
				stored_at = excluded.stored_at, expires_at = excluded.expires_at`,
			key, label, body, storedAt.UnixNano(), expiresAt.UnixNano())
		return err
	})
}

// Stats implements Maintainer.
func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: "sqlite", Path: s.path}
	var (
		bytes          sql.NullInt64
		oldest, newest sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(expires_at <= ?), 0), SUM(LENGTH(body)), MIN(stored_at), MAX(stored_at) FROM responses`,
		s.opts.now().UnixNano(),
	).Scan(&stats.Entries, &stats.Expired, &bytes, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("read cache stats: %w", err)
	}
	stats.Bytes = bytes.Int64
	if oldest.Valid {
		stats.Oldest = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		stats.Newest = time.Unix(0, newest.Int64)
	}
	return stats, nil
}

// List implements Maintainer, newest entries first.
func (s *SQLite) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT key, label, LENGTH(body), stored_at, expires_at FROM responses ORDER BY stored_at DESC, key ASC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry               Entry
			storedAt, expiresAt int64
		)
		if err := rows.Scan(&entry.Key, &entry.Label, &entry.Size, &storedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entry.StoredAt = time.Unix(0, storedAt)
		entry.ExpiresAt = time.Unix(0, expiresAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune implements Maintainer.
func (s *SQLite) Prune(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, "DELETE FROM responses WHERE expires_at <= ?", s.opts.now().UnixNano())
}

// Clear implements Maintainer.
func (s *SQLite) Clear(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, "DELETE FROM responses")
}

func (s *SQLite) deleteWhere(ctx context.Context, query string, args ...any) (int, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("delete cache entries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted entries: %w", err)
	}
	return int(affected), nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
