package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS request_journal (
	id TEXT PRIMARY KEY,
	ts INTEGER NOT NULL,
	request_id TEXT NOT NULL,
	client_key TEXT NOT NULL,
	route_name TEXT NOT NULL,
	method TEXT NOT NULL,
	upstream_url TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_ts ON request_journal(ts);
CREATE INDEX IF NOT EXISTS idx_journal_client_key ON request_journal(client_key);
`

// SQLiteConfig configures the SQLite journal backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// SQLiteStore implements Storage using SQLite. It runs in WAL mode with a
// single-writer connection pool and periodic passive checkpoints.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	done      chan struct{}
	mu        sync.RWMutex
	closeOnce sync.Once
	logger    *slog.Logger

	saveStmt   *sql.Stmt
	countStmt  *sql.Stmt
	deleteStmt *sql.Stmt
	recentStmt *sql.Stmt

	checkpointInterval time.Duration
}

// NewSQLiteStore opens (or creates) a journal database at path with default
// settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens a journal database with custom settings.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.Path,
		done:               make(chan struct{}),
		logger:             slog.Default().With("component", "journal.sqlite"),
		checkpointInterval: cfg.CheckpointInterval,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare journal statements: %w", err)
	}

	go s.checkpointLoop()

	s.logger.Info("journal storage opened", "path", cfg.Path)

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(journalSchema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO request_journal (id, ts, request_id, client_key, route_name, method, upstream_url, status_code, outcome, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.countStmt, err = s.db.Prepare(`SELECT COUNT(*) FROM request_journal`)
	if err != nil {
		return fmt.Errorf("failed to prepare count statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM request_journal WHERE ts < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, ts, request_id, client_key, route_name, method, upstream_url, status_code, outcome, duration_ms
		FROM request_journal
		ORDER BY ts DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	return nil
}

// Save persists a single journal record.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.saveStmt.ExecContext(ctx,
		rec.ID,
		rec.Timestamp.UnixMilli(),
		rec.RequestID,
		rec.ClientKey,
		rec.RouteName,
		rec.Method,
		rec.UpstreamURL,
		rec.StatusCode,
		rec.Outcome,
		rec.DurationMillis,
	)
	if err != nil {
		return fmt.Errorf("failed to save journal record: %w", err)
	}

	return nil
}

// Count returns the number of stored journal records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.countStmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count journal records: %w", err)
	}

	return count, nil
}

// DeleteOlderThan removes records with a timestamp before cutoff and returns
// the number deleted.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.deleteStmt.ExecContext(ctx, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete journal records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var ts int64
		if err := rows.Scan(
			&rec.ID,
			&ts,
			&rec.RequestID,
			&rec.ClientKey,
			&rec.RouteName,
			&rec.Method,
			&rec.UpstreamURL,
			&rec.StatusCode,
			&rec.Outcome,
			&rec.DurationMillis,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	return records, nil
}

// Close releases resources held by the store. Close is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()

		for _, stmt := range []*sql.Stmt{s.saveStmt, s.countStmt, s.deleteStmt, s.recentStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic passive WAL checkpoints.
func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
